package data

import (
	"regexp"
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// LibraryCodeRX matches short branch codes such as "CEN" or "WST-2". The code
// is embedded in copy barcodes, so it is kept to uppercase letters, digits and
// hyphens.
var LibraryCodeRX = regexp.MustCompile(`^[A-Z0-9]{2,6}(-[A-Z0-9]{1,4})?$`)

// Library defines a branch of the library system.
type Library struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Version      int32     `json:"-"`
}

func ValidateLibrary(v *validator.Validator, library *Library) {
	v.Check(library.Code != "", "code", "must be provided")
	v.Check(validator.Matches(library.Code, LibraryCodeRX), "code", "must be 2-6 uppercase letters or digits, with an optional hyphenated suffix")
	v.Check(library.Name != "", "name", "must be provided")
	v.Check(len(library.Name) <= 500, "name", "must not be more than 500 bytes long")
	if library.ContactEmail != "" {
		v.Check(validator.Matches(library.ContactEmail, validator.EmailRX), "contact_email", "must be a valid email address")
	}
}
