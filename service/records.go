package service

import (
	"errors"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type records interface {
	GetBorrowRecord(recordID int64, caller *data.User) (*data.BorrowRecord, error)
	ReturnBorrowRecord(recordID int64, caller *data.User, requestBody dto.ReturnBorrowRecordRequestBody) (*data.BorrowRecord, error)
	MarkBorrowRecordLost(recordID int64, caller *data.User, requestBody dto.ReturnBorrowRecordRequestBody) (*data.BorrowRecord, error)
	ListBorrowRecords(caller *data.User, qs dto.QsListBorrowRecords) ([]*data.BorrowRecord, data.Metadata, error)
}

// GetBorrowRecord service retrieves a borrow record. An open loan that has
// passed its due date is corrected to overdue before being returned, so a
// single read never reports a stale borrowed status. Members may only view
// their own loans; staff may view any loan in a branch they are scoped to.
func (s *service) GetBorrowRecord(recordID int64, caller *data.User) (*data.BorrowRecord, error) {
	record, err := s.repo.GetBorrowRecord(recordID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if record.UserID != caller.ID && !caller.HasLibraryScope(record.LibraryID) {
		return nil, ErrNotPermitted
	}
	if record.IsOverdue(time.Now()) {
		record.Status = data.RecordStatusOverdue
		err = s.repo.MarkBorrowRecordOverdue(record)
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}

// ReturnBorrowRecord service closes a loan and releases its copy back into
// circulation. A loan that is already returned or lost conflicts rather than
// being silently re-closed, so double-scanned receipts surface to staff. A fee
// supplied in the request body replaces the value stored on the record.
// The caller must hold staff scope for the loan's branch.
func (s *service) ReturnBorrowRecord(recordID int64, caller *data.User, requestBody dto.ReturnBorrowRecordRequestBody) (*data.BorrowRecord, error) {
	record, err := s.repo.GetBorrowRecord(recordID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(record.LibraryID) {
		return nil, ErrNotPermitted
	}
	if record.IsClosed() {
		return nil, ErrEditConflict
	}
	v := validator.New()
	mergeFees(record, requestBody)
	if data.ValidateFees(v, record.Fees); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	now := time.Now()
	record.Status = data.RecordStatusReturned
	record.ReturnDate = &now
	_, err = s.repo.ReturnBorrowRecord(record)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	s.notifyLoanClosed(record, "loan_returned.tmpl")
	return record, nil
}

// MarkBorrowRecordLost service closes a loan as lost and takes its copy out
// of circulation. A fee supplied in the request body replaces the value stored
// on the record. The caller must hold staff scope for the loan's branch.
func (s *service) MarkBorrowRecordLost(recordID int64, caller *data.User, requestBody dto.ReturnBorrowRecordRequestBody) (*data.BorrowRecord, error) {
	record, err := s.repo.GetBorrowRecord(recordID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(record.LibraryID) {
		return nil, ErrNotPermitted
	}
	if record.IsClosed() {
		return nil, ErrEditConflict
	}
	v := validator.New()
	mergeFees(record, requestBody)
	if data.ValidateFees(v, record.Fees); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	record.Status = data.RecordStatusLost
	_, err = s.repo.MarkBorrowRecordLost(record)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return record, nil
}

// mergeFees applies optional fee adjustments from a request body onto a
// record's fees. A supplied value replaces the stored one rather than adding
// to it; omitted fields leave the stored value alone.
func mergeFees(record *data.BorrowRecord, requestBody dto.ReturnBorrowRecordRequestBody) {
	if requestBody.LateFee != nil {
		record.Fees.LateFee = *requestBody.LateFee
	}
	if requestBody.DamageFee != nil {
		record.Fees.DamageFee = *requestBody.DamageFee
	}
	if requestBody.Currency != nil {
		record.Fees.Currency = *requestBody.Currency
	}
	if record.Fees.Currency == "" {
		record.Fees.Currency = data.DefaultCurrency
	}
}

// ListBorrowRecords service retrieves a paginated list of borrow records for
// a library branch. Open loans past their due date are swept to overdue
// before the page is read, so listings never show a stale borrowed status.
// Users newly marked overdue are notified by email. The caller must hold
// staff scope for the branch.
func (s *service) ListBorrowRecords(caller *data.User, qs dto.QsListBorrowRecords) ([]*data.BorrowRecord, data.Metadata, error) {
	if !caller.HasLibraryScope(qs.LibraryID) {
		return nil, data.Metadata{}, ErrNotPermitted
	}
	v := validator.New()
	for _, status := range qs.Statuses {
		v.Check(validator.In(status, data.RecordStatuses...), "status", "invalid record status")
	}
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	swept, err := s.repo.SweepOverdueBorrowRecords(qs.LibraryID)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	for _, record := range swept {
		s.notifyLoanClosed(record, "loan_overdue.tmpl")
	}
	records, metadata, err := s.repo.GetAllBorrowRecords(qs.UserID, qs.LibraryID, qs.Statuses, qs.OverdueOnly, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return records, metadata, nil
}

// notifyLoanClosed emails the borrowing user about a change to their loan.
// Lookups run in the background goroutine so the calling request doesn't wait
// on them.
func (s *service) notifyLoanClosed(record *data.BorrowRecord, templateFile string) {
	s.background(func() {
		user, err := s.repo.GetUserByID(record.UserID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		title, err := s.repo.GetTitle(record.TitleID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		library, err := s.repo.GetLibrary(record.LibraryID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		emailData := map[string]string{
			"userName":    user.Name,
			"titleName":   title.Name,
			"libraryName": library.Name,
			"dueDate":     record.DueDate.Format("2 January 2006"),
		}
		err = s.newMailer().Send(user.Email, templateFile, emailData)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
}
