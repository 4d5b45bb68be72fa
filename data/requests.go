package data

import (
	"time"

	"github.com/emzola/athenaeum/internal/validator"
)

// Borrow request statuses. A request starts out pending; approved, rejected
// and cancelled are terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
)

// RequestStatuses lists all valid borrow request statuses.
var RequestStatuses = []string{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusCancelled,
}

// BorrowRequest defines a user's ask to borrow a title at a library, prior to
// copy allocation. A user may hold at most one pending request per
// (library, title) pair; the duplicate is rejected by a partial unique index.
type BorrowRequest struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	LibraryID   int64      `json:"library_id"`
	TitleID     int64      `json:"title_id"`
	InventoryID int64      `json:"inventory_id"`
	CopyID      *int64     `json:"copy_id,omitempty"`
	RecordID    *int64     `json:"record_id,omitempty"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	DecidedBy   *int64     `json:"decided_by,omitempty"`
	Version     int32      `json:"-"`
}

// IsTerminal reports whether the request has reached a terminal status.
func (r *BorrowRequest) IsTerminal() bool {
	return r.Status != RequestStatusPending
}

func ValidateBorrowRequest(v *validator.Validator, request *BorrowRequest) {
	v.Check(request.UserID > 0, "user_id", "must be provided")
	v.Check(request.LibraryID > 0, "library_id", "must be provided")
	v.Check(request.TitleID > 0, "title_id", "must be provided")
	v.Check(len(request.Notes) <= 1000, "notes", "must not be more than 1000 bytes long")
}

// ValidateRequestDecision checks that a decision status is one of the two
// allowed terminal decisions.
func ValidateRequestDecision(v *validator.Validator, status string) {
	v.Check(status != "", "status", "must be provided")
	v.Check(validator.In(status, RequestStatusApproved, RequestStatusRejected), "status", "must be either approved or rejected")
}
