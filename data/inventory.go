package data

import (
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// Inventory defines the aggregate holding of a title at a library: how many
// physical copies exist there, and how many are currently available. There is
// exactly one inventory per (library, title) pair.
//
// AvailableCopies always equals the count of the inventory's copies whose
// status is "available". The counts are recomputed from the copies table inside
// every transaction that mutates copy state rather than adjusted incrementally,
// so concurrent mutations can't leave them drifted.
type Inventory struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	LibraryID       int64     `json:"library_id"`
	TitleID         int64     `json:"title_id"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	Version         int32     `json:"-"`
}

func ValidateInventory(v *validator.Validator, inventory *Inventory) {
	v.Check(inventory.LibraryID > 0, "library_id", "must be provided")
	v.Check(inventory.TitleID > 0, "title_id", "must be provided")
	v.Check(inventory.TotalCopies >= 0, "total_copies", "must not be negative")
	v.Check(inventory.AvailableCopies >= 0, "available_copies", "must not be negative")
	v.Check(inventory.AvailableCopies <= inventory.TotalCopies, "available_copies", "must not exceed total copies")
}

// Clamp bounds AvailableCopies to [0, TotalCopies]. Manual count adjustments go
// through this before being persisted.
func (i *Inventory) Clamp() {
	if i.AvailableCopies > i.TotalCopies {
		i.AvailableCopies = i.TotalCopies
	}
	if i.AvailableCopies < 0 {
		i.AvailableCopies = 0
	}
}
