package dto

import "github.com/emzola/athenaeum/data"

// CreateTitleRequestBody defines a request body for CreateTitle service. When
// only an ISBN is supplied, the remaining bibliographic fields are hydrated
// from the Open Library API.
type CreateTitleRequestBody struct {
	Name        string   `json:"name"`
	Author      []string `json:"author"`
	Publisher   string   `json:"publisher"`
	Language    string   `json:"language"`
	Year        int32    `json:"year"`
	Isbn10      string   `json:"isbn_10"`
	Isbn13      string   `json:"isbn_13"`
	Description string   `json:"description"`
}

// UpdateTitleRequestBody defines a request body for UpdateTitle service.
type UpdateTitleRequestBody struct {
	Name        *string  `json:"name"`
	Author      []string `json:"author"`
	Publisher   *string  `json:"publisher"`
	Language    *string  `json:"language"`
	Year        *int32   `json:"year"`
	Isbn10      *string  `json:"isbn_10"`
	Isbn13      *string  `json:"isbn_13"`
	Description *string  `json:"description"`
}

// The OpenLibAPIRequestBody struct contains the expected JSON data that has
// been decoded into a Go type from the Open Library API.
type OpenLibAPIRequestBody struct {
	Title     string   `json:"title"`
	Publisher []string `json:"publishers"`
	Isbn10    []string `json:"isbn_10"`
	Isbn13    []string `json:"isbn_13"`
	Date      string   `json:"publish_date"`
}

// QsListTitles defines query strings for ListTitles service.
type QsListTitles struct {
	Search  string
	Filters data.Filters
}
