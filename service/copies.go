package service

import (
	"errors"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type copies interface {
	CreateCopy(caller *data.User, requestBody dto.CreateCopyRequestBody) (*data.Copy, error)
	GetCopy(copyID int64) (*data.Copy, error)
	GetCopyByBarcode(libraryID int64, barcode string) (*data.Copy, error)
	UpdateCopy(copyID int64, caller *data.User, requestBody dto.UpdateCopyRequestBody) (*data.Copy, error)
	DeleteCopy(copyID int64, caller *data.User) error
	ListCopies(qs dto.QsListCopies) ([]*data.Copy, data.Metadata, error)
}

// CreateCopy service registers a new physical copy at a library. The owning
// inventory is created on first use, and a barcode is generated when none is
// supplied. The caller must hold staff scope for the library.
func (s *service) CreateCopy(caller *data.User, requestBody dto.CreateCopyRequestBody) (*data.Copy, error) {
	if !caller.HasLibraryScope(requestBody.LibraryID) {
		return nil, ErrNotPermitted
	}
	library, err := s.repo.GetLibrary(requestBody.LibraryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	copy := &data.Copy{
		LibraryID:     requestBody.LibraryID,
		TitleID:       requestBody.TitleID,
		Barcode:       requestBody.Barcode,
		Status:        data.CopyStatusAvailable,
		Condition:     requestBody.Condition,
		ShelfLocation: requestBody.ShelfLocation,
		AcquiredAt:    time.Now(),
	}
	if copy.Condition == "" {
		copy.Condition = data.CopyConditionGood
	}
	v := validator.New()
	if data.ValidateCopy(v, copy); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.CreateCopy(copy, library.Code)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("barcode", "a copy with this barcode already exists at this library")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return copy, nil
}

// GetCopy service retrieves a copy record.
func (s *service) GetCopy(copyID int64) (*data.Copy, error) {
	copy, err := s.repo.GetCopy(copyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return copy, nil
}

// GetCopyByBarcode service retrieves a copy by its barcode within a library.
func (s *service) GetCopyByBarcode(libraryID int64, barcode string) (*data.Copy, error) {
	v := validator.New()
	v.Check(barcode != "", "barcode", "must be provided")
	if !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	copy, err := s.repo.GetCopyByBarcode(barcode, libraryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return copy, nil
}

// UpdateCopy service updates a copy's status, condition or shelf location.
// Moving a copy into or out of borrowed status is reserved for the borrow
// workflow; manual status edits cover the remaining states. The caller must
// hold staff scope for the copy's library.
func (s *service) UpdateCopy(copyID int64, caller *data.User, requestBody dto.UpdateCopyRequestBody) (*data.Copy, error) {
	copy, err := s.repo.GetCopy(copyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(copy.LibraryID) {
		return nil, ErrNotPermitted
	}
	v := validator.New()
	if requestBody.Status != nil {
		if copy.Status == data.CopyStatusBorrowed || *requestBody.Status == data.CopyStatusBorrowed {
			v.AddError("status", "borrowed status is managed by the loan workflow")
		}
		copy.Status = *requestBody.Status
	}
	if requestBody.Condition != nil {
		copy.Condition = *requestBody.Condition
	}
	if requestBody.ShelfLocation != nil {
		copy.ShelfLocation = *requestBody.ShelfLocation
	}
	if data.ValidateCopy(v, copy); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	_, err = s.repo.UpdateCopy(copy)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return copy, nil
}

// DeleteCopy service removes a copy from circulation. Deletion is refused
// while the copy is out on loan. The caller must hold staff scope for the
// copy's library.
func (s *service) DeleteCopy(copyID int64, caller *data.User) error {
	copy, err := s.repo.GetCopy(copyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	if !caller.HasLibraryScope(copy.LibraryID) {
		return ErrNotPermitted
	}
	_, err = s.repo.DeleteCopy(copyID)
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

// ListCopies service retrieves a paginated list of copies, optionally scoped
// to a library, title and/or status.
func (s *service) ListCopies(qs dto.QsListCopies) ([]*data.Copy, data.Metadata, error) {
	v := validator.New()
	if qs.Status != "" {
		v.Check(validator.In(qs.Status, data.CopyStatuses...), "status", "invalid copy status")
	}
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	copies, metadata, err := s.repo.GetAllCopies(qs.LibraryID, qs.TitleID, qs.Status, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return copies, metadata, nil
}
