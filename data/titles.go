package data

import (
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// Title defines the bibliographic record for a book. It is not tied to any
// physical item; inventories and copies reference it.
type Title struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `json:"name"`
	Author      []string  `json:"author,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Language    string    `json:"language,omitempty"`
	Year        int32     `json:"year,omitempty"`
	Isbn10      string    `json:"isbn_10,omitempty"`
	Isbn13      string    `json:"isbn_13,omitempty"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Version     int32     `json:"-"`
}

func ValidateTitle(v *validator.Validator, title *Title) {
	v.Check(title.Name != "", "name", "must be provided")
	v.Check(len(title.Name) <= 500, "name", "must not be more than 500 bytes long")
	v.Check(len(title.Description) <= 2000, "description", "must not be more than 2000 bytes long")
	v.Check(len(title.Author) <= 5, "author", "must not contain more than 5 authors")
	v.Check(validator.Unique(title.Author), "author", "must not contain duplicate values")
	if title.Year != 0 {
		v.Check(title.Year >= 1450, "year", "must be greater than 1450")
		v.Check(title.Year <= int32(time.Now().Year()), "year", "must not be in the future")
	}
	v.Check(len(title.Isbn10) <= 13, "isbn_10", "must not be more than 13 characters")
	v.Check(len(title.Isbn13) <= 17, "isbn_13", "must not be more than 17 characters")
}
