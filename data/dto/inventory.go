package dto

import "github.com/emzola/athenaeum/data"

// CreateInventoryRequestBody defines a request body for CreateInventory service.
type CreateInventoryRequestBody struct {
	LibraryID int64 `json:"library_id"`
	TitleID   int64 `json:"title_id"`
}

// UpdateInventoryRequestBody defines a request body for UpdateInventory service.
type UpdateInventoryRequestBody struct {
	TotalCopies     *int32 `json:"total_copies"`
	AvailableCopies *int32 `json:"available_copies"`
}

// QsListInventories defines query strings for ListInventories service.
type QsListInventories struct {
	LibraryID     int64
	TitleID       int64
	AvailableOnly bool
	Filters       data.Filters
}
