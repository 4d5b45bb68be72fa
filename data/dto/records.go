package dto

import "github.com/emzola/athenaeum/data"

// ReturnBorrowRecordRequestBody defines a request body for ReturnBorrowRecord
// service. Fee fields are optional; a supplied value replaces the one stored
// on the record, an omitted field leaves the stored value alone.
type ReturnBorrowRecordRequestBody struct {
	LateFee   *float64 `json:"late_fee"`
	DamageFee *float64 `json:"damage_fee"`
	Currency  *string  `json:"currency"`
}

// QsListBorrowRecords defines query strings for ListBorrowRecords service.
type QsListBorrowRecords struct {
	UserID      int64
	LibraryID   int64
	Statuses    []string
	OverdueOnly bool
	Filters     data.Filters
}
