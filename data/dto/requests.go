package dto

import "github.com/emzola/athenaeum/data"

// CreateBorrowRequestRequestBody defines a request body for CreateBorrowRequest service.
type CreateBorrowRequestRequestBody struct {
	LibraryID int64  `json:"library_id"`
	TitleID   int64  `json:"title_id"`
	Notes     string `json:"notes"`
}

// DecideBorrowRequestRequestBody defines a request body for DecideBorrowRequest service.
type DecideBorrowRequestRequestBody struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// QsListBorrowRequests defines query strings for ListBorrowRequests service.
type QsListBorrowRequests struct {
	LibraryID int64
	Status    string
	Filters   data.Filters
}
