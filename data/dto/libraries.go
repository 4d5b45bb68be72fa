package dto

import "github.com/emzola/athenaeum/data"

// CreateLibraryRequestBody defines a request body for CreateLibrary service.
type CreateLibraryRequestBody struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// UpdateLibraryRequestBody defines a request body for UpdateLibrary service.
type UpdateLibraryRequestBody struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

// QsListLibraries defines query strings for ListLibraries service.
type QsListLibraries struct {
	Search  string
	Filters data.Filters
}
