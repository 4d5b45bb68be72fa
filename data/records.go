package data

import (
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// Borrow record statuses. A record is created as borrowed; overdue is a
// derived correction applied when the due date passes unreturned; returned and
// lost are terminal.
const (
	RecordStatusBorrowed = "borrowed"
	RecordStatusReturned = "returned"
	RecordStatusOverdue  = "overdue"
	RecordStatusLost     = "lost"
)

// RecordStatuses lists all valid borrow record statuses.
var RecordStatuses = []string{
	RecordStatusBorrowed,
	RecordStatusReturned,
	RecordStatusOverdue,
	RecordStatusLost,
}

// DefaultCurrency is used for fee fields when no currency is supplied.
const DefaultCurrency = "USD"

// Fees holds the explicit fee accumulators on a loan. There is no automatic
// late-fee engine; staff apply fees at return or loss time.
type Fees struct {
	LateFee   float64 `json:"late_fee"`
	DamageFee float64 `json:"damage_fee"`
	Currency  string  `json:"currency"`
}

// Total returns the sum of both fee accumulators.
func (f Fees) Total() float64 {
	return f.LateFee + f.DamageFee
}

// BorrowRecord defines the loan of an allocated copy to a user, with due and
// return tracking. At most one record with status borrowed may exist per copy
// at any time; the invariant is backed by a partial unique index.
type BorrowRecord struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	LibraryID   int64      `json:"library_id"`
	TitleID     int64      `json:"title_id"`
	InventoryID int64      `json:"inventory_id"`
	CopyID      int64      `json:"copy_id"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Status      string     `json:"status"`
	ApprovedBy  int64      `json:"approved_by"`
	Fees        Fees       `json:"fees"`
	Version     int32      `json:"-"`
}

// IsClosed reports whether the record has reached a terminal status.
func (r *BorrowRecord) IsClosed() bool {
	return r.Status == RecordStatusReturned || r.Status == RecordStatusLost
}

// IsOverdue reports whether the record should be treated as overdue at the
// given instant. Read paths use this to apply the derived overdue status.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.Status == RecordStatusBorrowed && r.DueDate.Before(now)
}

func ValidateFees(v *validator.Validator, fees Fees) {
	v.Check(fees.LateFee >= 0, "late_fee", "must not be negative")
	v.Check(fees.DamageFee >= 0, "damage_fee", "must not be negative")
	v.Check(len(fees.Currency) == 3 || fees.Currency == "", "currency", "must be a 3-letter currency code")
}
