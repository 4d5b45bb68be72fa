package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/emzola/athenaeum/clients"
	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type titles interface {
	CreateTitle(requestBody dto.CreateTitleRequestBody) (*data.Title, error)
	GetTitle(titleID int64) (*data.Title, error)
	UpdateTitle(titleID int64, requestBody dto.UpdateTitleRequestBody) (*data.Title, error)
	UpdateTitleCover(titleID int64, r *http.Request) (*data.Title, error)
	DeleteTitle(titleID int64) error
	ListTitles(qs dto.QsListTitles) ([]*data.Title, data.Metadata, error)
}

// CreateTitle service creates a new bibliographic title. When a name is not
// supplied but an ISBN is, the remaining bibliographic fields are hydrated
// from the Open Library API.
func (s *service) CreateTitle(requestBody dto.CreateTitleRequestBody) (*data.Title, error) {
	title := &data.Title{
		Name:        requestBody.Name,
		Author:      requestBody.Author,
		Publisher:   requestBody.Publisher,
		Language:    requestBody.Language,
		Year:        requestBody.Year,
		Isbn10:      requestBody.Isbn10,
		Isbn13:      requestBody.Isbn13,
		Description: requestBody.Description,
	}
	if title.Name == "" && (title.Isbn13 != "" || title.Isbn10 != "") {
		isbn := title.Isbn13
		if isbn == "" {
			isbn = title.Isbn10
		}
		err := s.hydrateTitleFromOpenLibrary(title, isbn)
		if err != nil {
			return nil, err
		}
	}
	v := validator.New()
	if data.ValidateTitle(v, title); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err := s.repo.CreateTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("isbn", "a title with this ISBN already exists")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return title, nil
}

// hydrateTitleFromOpenLibrary fills in a title's bibliographic fields by
// fetching the ISBN's JSON record from the Open Library API.
func (s *service) hydrateTitleFromOpenLibrary(title *data.Title, isbn string) error {
	openLibAPI := &dto.OpenLibAPIRequestBody{}
	url := "https://openlibrary.org/isbn/" + isbn + ".json"
	client := clients.NewHTTPClient()
	bytes, err := s.fetchRemoteResource(client, url)
	if err != nil {
		return err
	}
	err = json.Unmarshal(bytes, &openLibAPI)
	if err != nil {
		return ErrBadRequest
	}
	title.Name = openLibAPI.Title
	if len(openLibAPI.Publisher) > 0 {
		title.Publisher = openLibAPI.Publisher[0]
	}
	if len(openLibAPI.Isbn10) > 0 && title.Isbn10 == "" {
		title.Isbn10 = openLibAPI.Isbn10[0]
	}
	if len(openLibAPI.Isbn13) > 0 && title.Isbn13 == "" {
		title.Isbn13 = openLibAPI.Isbn13[0]
	}
	// Publish dates come in several shapes, e.g. "2002" or "May 21, 2002".
	parts := strings.Split(openLibAPI.Date, ",")
	year, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err == nil {
		title.Year = int32(year)
	}
	return nil
}

// GetTitle service retrieves the details of a title.
func (s *service) GetTitle(titleID int64) (*data.Title, error) {
	title, err := s.repo.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return title, nil
}

// UpdateTitle service updates the details of a specific title.
func (s *service) UpdateTitle(titleID int64, requestBody dto.UpdateTitleRequestBody) (*data.Title, error) {
	title, err := s.repo.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if requestBody.Name != nil {
		title.Name = *requestBody.Name
	}
	if requestBody.Author != nil {
		title.Author = requestBody.Author
	}
	if requestBody.Publisher != nil {
		title.Publisher = *requestBody.Publisher
	}
	if requestBody.Language != nil {
		title.Language = *requestBody.Language
	}
	if requestBody.Year != nil {
		title.Year = *requestBody.Year
	}
	if requestBody.Isbn10 != nil {
		title.Isbn10 = *requestBody.Isbn10
	}
	if requestBody.Isbn13 != nil {
		title.Isbn13 = *requestBody.Isbn13
	}
	if requestBody.Description != nil {
		title.Description = *requestBody.Description
	}
	v := validator.New()
	if data.ValidateTitle(v, title); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.UpdateTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return title, nil
}

// UpdateTitleCover service uploads a cover image for a title.
func (s *service) UpdateTitleCover(titleID int64, r *http.Request) (*data.Title, error) {
	title, err := s.repo.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	err = r.ParseMultipartForm(5000)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, ErrContentTooLarge
		default:
			return nil, ErrBadRequest
		}
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		return nil, ErrBadRequest
	}
	defer file.Close()
	// Detect image Mime type
	buffer, mtype, err := s.detectMimeType(file, fileHeader)
	if err != nil {
		return nil, err
	}
	// Check whether Mime type is supported
	supportedMediaType := []string{
		"image/jpeg",
		"image/png",
	}
	if v := validator.Mime(mtype, supportedMediaType...); !v {
		return nil, ErrUnsupportedMediaType
	}
	// Upload image to S3 object storage
	s3Client, err := clients.NewS3Client(s.config)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.uploadCoverToS3(s3Client, buffer, mtype, fileHeader)
	if err != nil {
		return nil, err
	}
	title.CoverURL = coverURL
	err = s.repo.UpdateTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return title, nil
}

// DeleteTitle service deletes a title. Deletion is refused while any copy of
// the title is out on loan.
func (s *service) DeleteTitle(titleID int64) error {
	err := s.repo.DeleteTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		case errors.Is(err, repository.ErrEditConflict):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// ListTitles service retrieves a paginated list of titles. Records can be
// filtered and sorted.
func (s *service) ListTitles(qs dto.QsListTitles) ([]*data.Title, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	titles, metadata, err := s.repo.GetAllTitles(qs.Search, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return titles, metadata, nil
}
