package service

import (
	"errors"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type libraries interface {
	CreateLibrary(requestBody dto.CreateLibraryRequestBody) (*data.Library, error)
	GetLibrary(libraryID int64) (*data.Library, error)
	UpdateLibrary(libraryID int64, requestBody dto.UpdateLibraryRequestBody) (*data.Library, error)
	DeleteLibrary(libraryID int64) error
	ListLibraries(qs dto.QsListLibraries) ([]*data.Library, data.Metadata, error)
}

// CreateLibrary service creates a new library branch.
func (s *service) CreateLibrary(requestBody dto.CreateLibraryRequestBody) (*data.Library, error) {
	library := &data.Library{
		Code:         requestBody.Code,
		Name:         requestBody.Name,
		Address:      requestBody.Address,
		ContactEmail: requestBody.ContactEmail,
		ContactPhone: requestBody.ContactPhone,
	}
	v := validator.New()
	if data.ValidateLibrary(v, library); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err := s.repo.CreateLibrary(library)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("code", "a library with this code already exists")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return library, nil
}

// GetLibrary service retrieves the details of a library branch.
func (s *service) GetLibrary(libraryID int64) (*data.Library, error) {
	library, err := s.repo.GetLibrary(libraryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return library, nil
}

// UpdateLibrary service updates the details of a library branch. The branch
// code is immutable because it is embedded in copy barcodes.
func (s *service) UpdateLibrary(libraryID int64, requestBody dto.UpdateLibraryRequestBody) (*data.Library, error) {
	library, err := s.repo.GetLibrary(libraryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if requestBody.Name != nil {
		library.Name = *requestBody.Name
	}
	if requestBody.Address != nil {
		library.Address = *requestBody.Address
	}
	if requestBody.ContactEmail != nil {
		library.ContactEmail = *requestBody.ContactEmail
	}
	if requestBody.ContactPhone != nil {
		library.ContactPhone = *requestBody.ContactPhone
	}
	v := validator.New()
	if data.ValidateLibrary(v, library); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.UpdateLibrary(library)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return library, nil
}

// DeleteLibrary service deletes a library branch. Deletion is refused while
// the branch still holds inventories.
func (s *service) DeleteLibrary(libraryID int64) error {
	err := s.repo.DeleteLibrary(libraryID)
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

// ListLibraries service retrieves a paginated list of library branches.
// Records can be filtered and sorted.
func (s *service) ListLibraries(qs dto.QsListLibraries) ([]*data.Library, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	libraries, metadata, err := s.repo.GetAllLibraries(qs.Search, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return libraries, metadata, nil
}
