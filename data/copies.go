package data

import (
	"fmt"
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// Copy statuses. Transition legality between them is enforced by the borrow
// workflow and loan ledger, not by the copy itself.
const (
	CopyStatusAvailable   = "available"
	CopyStatusBorrowed    = "borrowed"
	CopyStatusReserved    = "reserved"
	CopyStatusLost        = "lost"
	CopyStatusMaintenance = "maintenance"
)

// Copy conditions.
const (
	CopyConditionNew     = "new"
	CopyConditionGood    = "good"
	CopyConditionUsed    = "used"
	CopyConditionWorn    = "worn"
	CopyConditionDamaged = "damaged"
)

// CopyStatuses lists all valid copy statuses.
var CopyStatuses = []string{
	CopyStatusAvailable,
	CopyStatusBorrowed,
	CopyStatusReserved,
	CopyStatusLost,
	CopyStatusMaintenance,
}

// CopyConditions lists all valid copy conditions.
var CopyConditions = []string{
	CopyConditionNew,
	CopyConditionGood,
	CopyConditionUsed,
	CopyConditionWorn,
	CopyConditionDamaged,
}

// Copy defines one physical, trackable instance of a title at a library.
// Library and title IDs are denormalized from the owning inventory for query
// convenience.
type Copy struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	InventoryID   int64     `json:"inventory_id"`
	LibraryID     int64     `json:"library_id"`
	TitleID       int64     `json:"title_id"`
	Barcode       string    `json:"barcode"`
	Status        string    `json:"status"`
	Condition     string    `json:"condition"`
	ShelfLocation string    `json:"shelf_location,omitempty"`
	AcquiredAt    time.Time `json:"acquired_at,omitempty"`
	Version       int32     `json:"-"`
}

// FormatBarcode builds an auto-generated barcode from the owning library's
// code, a year and a sequence number, e.g. "CEN-2026-0042". Sequence numbers
// are zero-padded to four digits.
func FormatBarcode(libraryCode string, year int, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", libraryCode, year, sequence)
}

// BarcodePrefix returns the prefix shared by all auto-generated barcodes for a
// library and year, used to derive the next sequence number.
func BarcodePrefix(libraryCode string, year int) string {
	return fmt.Sprintf("%s-%d-", libraryCode, year)
}

func ValidateCopy(v *validator.Validator, copy *Copy) {
	v.Check(copy.LibraryID > 0, "library_id", "must be provided")
	v.Check(copy.TitleID > 0, "title_id", "must be provided")
	v.Check(validator.In(copy.Status, CopyStatuses...), "status", "invalid copy status")
	v.Check(validator.In(copy.Condition, CopyConditions...), "condition", "invalid copy condition")
	v.Check(len(copy.Barcode) <= 50, "barcode", "must not be more than 50 bytes long")
	v.Check(len(copy.ShelfLocation) <= 100, "shelf_location", "must not be more than 100 bytes long")
}
