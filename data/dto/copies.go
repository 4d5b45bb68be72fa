package dto

import "github.com/emzola/athenaeum/data"

// CreateCopyRequestBody defines a request body for CreateCopy service. Barcode
// is optional; when absent one is generated from the library code, the current
// year and a per-library sequence.
type CreateCopyRequestBody struct {
	LibraryID     int64  `json:"library_id"`
	TitleID       int64  `json:"title_id"`
	Barcode       string `json:"barcode"`
	Condition     string `json:"condition"`
	ShelfLocation string `json:"shelf_location"`
}

// UpdateCopyRequestBody defines a request body for UpdateCopy service.
type UpdateCopyRequestBody struct {
	Status        *string `json:"status"`
	Condition     *string `json:"condition"`
	ShelfLocation *string `json:"shelf_location"`
}

// QsListCopies defines query strings for ListCopies service.
type QsListCopies struct {
	LibraryID int64
	TitleID   int64
	Status    string
	Filters   data.Filters
}
