package service

import (
	"errors"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type inventories interface {
	CreateInventory(caller *data.User, requestBody dto.CreateInventoryRequestBody) (*data.Inventory, error)
	GetInventory(inventoryID int64) (*data.Inventory, error)
	UpdateInventory(inventoryID int64, caller *data.User, requestBody dto.UpdateInventoryRequestBody) (*data.Inventory, error)
	ReconcileInventory(inventoryID int64, caller *data.User) (*data.Inventory, error)
	ListInventories(qs dto.QsListInventories) ([]*data.Inventory, data.Metadata, error)
}

// CreateInventory service creates an empty inventory for a title at a library.
// The caller must hold staff scope for the library.
func (s *service) CreateInventory(caller *data.User, requestBody dto.CreateInventoryRequestBody) (*data.Inventory, error) {
	if !caller.HasLibraryScope(requestBody.LibraryID) {
		return nil, ErrNotPermitted
	}
	inventory := &data.Inventory{
		LibraryID: requestBody.LibraryID,
		TitleID:   requestBody.TitleID,
	}
	v := validator.New()
	if data.ValidateInventory(v, inventory); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err := s.repo.CreateInventory(inventory)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("title_id", "an inventory for this title already exists at this library")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return inventory, nil
}

// GetInventory service retrieves an inventory record.
func (s *service) GetInventory(inventoryID int64) (*data.Inventory, error) {
	inventory, err := s.repo.GetInventory(inventoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return inventory, nil
}

// UpdateInventory service applies a manual count adjustment to an inventory.
// The available count is clamped to [0, total] before being persisted, so an
// adjustment can never push the aggregate outside its bounds.
func (s *service) UpdateInventory(inventoryID int64, caller *data.User, requestBody dto.UpdateInventoryRequestBody) (*data.Inventory, error) {
	inventory, err := s.repo.GetInventory(inventoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(inventory.LibraryID) {
		return nil, ErrNotPermitted
	}
	if requestBody.TotalCopies != nil {
		inventory.TotalCopies = *requestBody.TotalCopies
	}
	if requestBody.AvailableCopies != nil {
		inventory.AvailableCopies = *requestBody.AvailableCopies
	}
	if inventory.TotalCopies < 0 {
		inventory.TotalCopies = 0
	}
	inventory.Clamp()
	v := validator.New()
	if data.ValidateInventory(v, inventory); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.UpdateInventory(inventory)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return inventory, nil
}

// ReconcileInventory service recomputes an inventory's counts from its copies.
// A manual adjustment drifts the moment copy state changes; reconciliation
// restores the authoritative counts.
func (s *service) ReconcileInventory(inventoryID int64, caller *data.User) (*data.Inventory, error) {
	inventory, err := s.repo.GetInventory(inventoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(inventory.LibraryID) {
		return nil, ErrNotPermitted
	}
	inventory, err = s.repo.RecomputeInventory(inventoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return inventory, nil
}

// ListInventories service retrieves a paginated list of inventories,
// optionally scoped to a library or title, or to those with availability.
func (s *service) ListInventories(qs dto.QsListInventories) ([]*data.Inventory, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	inventories, metadata, err := s.repo.GetAllInventories(qs.LibraryID, qs.TitleID, qs.AvailableOnly, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return inventories, metadata, nil
}
