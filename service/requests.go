package service

import (
	"errors"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

// defaultLoanPeriodDays is used when no loan period is configured.
const defaultLoanPeriodDays = 14

type requests interface {
	CreateBorrowRequest(userID int64, requestBody dto.CreateBorrowRequestRequestBody) (*data.BorrowRequest, error)
	GetBorrowRequest(requestID int64, caller *data.User) (*data.BorrowRequest, error)
	DecideBorrowRequest(requestID int64, caller *data.User, requestBody dto.DecideBorrowRequestRequestBody) (*data.BorrowRequest, error)
	CancelBorrowRequest(requestID int64, caller *data.User) (*data.BorrowRequest, error)
	ListBorrowRequests(caller *data.User, qs dto.QsListBorrowRequests) ([]*data.BorrowRequest, data.Metadata, error)
}

// CreateBorrowRequest service files a pending borrow request for a title at a
// library. The branch must have at least one available copy at filing time;
// availability is checked again at approval, since it can be exhausted in
// between. A user may hold at most one pending request per title per library.
func (s *service) CreateBorrowRequest(userID int64, requestBody dto.CreateBorrowRequestRequestBody) (*data.BorrowRequest, error) {
	inventory, err := s.repo.GetInventoryForLibraryTitle(requestBody.LibraryID, requestBody.TitleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if inventory.AvailableCopies < 1 {
		return nil, ErrInsufficientAvailability
	}
	request := &data.BorrowRequest{
		UserID:      userID,
		LibraryID:   requestBody.LibraryID,
		TitleID:     requestBody.TitleID,
		InventoryID: inventory.ID,
		Status:      data.RequestStatusPending,
		Notes:       requestBody.Notes,
	}
	v := validator.New()
	if data.ValidateBorrowRequest(v, request); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.CreateBorrowRequest(request)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("title_id", "a pending request for this title already exists at this library")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return request, nil
}

// GetBorrowRequest service retrieves a borrow request. Members may only view
// their own requests; staff may view any request in a branch they are scoped
// to.
func (s *service) GetBorrowRequest(requestID int64, caller *data.User) (*data.BorrowRequest, error) {
	request, err := s.repo.GetBorrowRequest(requestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if request.UserID != caller.ID && !caller.HasLibraryScope(request.LibraryID) {
		return nil, ErrNotPermitted
	}
	return request, nil
}

// DecideBorrowRequest service applies a staff decision to a pending borrow
// request. Approval allocates an available copy and opens a loan in the same
// transaction; when every copy is taken the request stays pending and the
// caller gets an availability error. Rejection simply closes the request.
// Either way the requester is notified by email.
func (s *service) DecideBorrowRequest(requestID int64, caller *data.User, requestBody dto.DecideBorrowRequestRequestBody) (*data.BorrowRequest, error) {
	v := validator.New()
	if data.ValidateRequestDecision(v, requestBody.Status); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	request, err := s.repo.GetBorrowRequest(requestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !caller.HasLibraryScope(request.LibraryID) {
		return nil, ErrNotPermitted
	}
	if request.IsTerminal() {
		return nil, ErrEditConflict
	}
	if requestBody.Notes != "" {
		request.Notes = requestBody.Notes
	}
	switch requestBody.Status {
	case data.RequestStatusApproved:
		return s.approveBorrowRequest(request, caller)
	default:
		return s.rejectBorrowRequest(request, caller)
	}
}

// approveBorrowRequest allocates a copy and opens the loan for a pending
// request. The repository performs the allocation atomically; this method
// decides the due date and sends the notification.
func (s *service) approveBorrowRequest(request *data.BorrowRequest, caller *data.User) (*data.BorrowRequest, error) {
	periodDays := s.config.Loan.PeriodDays
	if periodDays <= 0 {
		periodDays = defaultLoanPeriodDays
	}
	now := time.Now()
	record := &data.BorrowRecord{
		UserID:      request.UserID,
		LibraryID:   request.LibraryID,
		TitleID:     request.TitleID,
		InventoryID: request.InventoryID,
		BorrowDate:  now,
		DueDate:     now.AddDate(0, 0, periodDays),
		Status:      data.RecordStatusBorrowed,
		ApprovedBy:  caller.ID,
		Fees:        data.Fees{Currency: data.DefaultCurrency},
	}
	err := s.repo.ApproveBorrowRequest(request, record)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientAvailability):
			return nil, ErrInsufficientAvailability
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	s.notifyRequestDecision(request, record, "request_approved.tmpl")
	return request, nil
}

// rejectBorrowRequest closes a pending request without allocating a copy.
func (s *service) rejectBorrowRequest(request *data.BorrowRequest, caller *data.User) (*data.BorrowRequest, error) {
	now := time.Now()
	request.Status = data.RequestStatusRejected
	request.DecidedAt = &now
	request.DecidedBy = &caller.ID
	err := s.repo.UpdateBorrowRequest(request)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	s.notifyRequestDecision(request, nil, "request_rejected.tmpl")
	return request, nil
}

// notifyRequestDecision emails the requesting user about a decision on their
// borrow request. Lookups run in the background goroutine so the request
// response doesn't wait on them.
func (s *service) notifyRequestDecision(request *data.BorrowRequest, record *data.BorrowRecord, templateFile string) {
	s.background(func() {
		user, err := s.repo.GetUserByID(request.UserID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		title, err := s.repo.GetTitle(request.TitleID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		library, err := s.repo.GetLibrary(request.LibraryID)
		if err != nil {
			s.logger.PrintError(err, nil)
			return
		}
		emailData := map[string]string{
			"userName":    user.Name,
			"titleName":   title.Name,
			"libraryName": library.Name,
		}
		if record != nil {
			emailData["dueDate"] = record.DueDate.Format("2 January 2006")
		}
		mailer := s.newMailer()
		err = mailer.Send(user.Email, templateFile, emailData)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
}

// CancelBorrowRequest service withdraws a pending request. Only the request's
// owner may cancel it.
func (s *service) CancelBorrowRequest(requestID int64, caller *data.User) (*data.BorrowRequest, error) {
	request, err := s.repo.GetBorrowRequest(requestID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if request.UserID != caller.ID {
		return nil, ErrNotPermitted
	}
	if request.IsTerminal() {
		return nil, ErrEditConflict
	}
	now := time.Now()
	request.Status = data.RequestStatusCancelled
	request.DecidedAt = &now
	request.DecidedBy = &caller.ID
	err = s.repo.UpdateBorrowRequest(request)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return request, nil
}

// ListBorrowRequests service retrieves a paginated list of borrow requests
// for a library branch. The caller must hold staff scope for the branch.
func (s *service) ListBorrowRequests(caller *data.User, qs dto.QsListBorrowRequests) ([]*data.BorrowRequest, data.Metadata, error) {
	if !caller.HasLibraryScope(qs.LibraryID) {
		return nil, data.Metadata{}, ErrNotPermitted
	}
	v := validator.New()
	if qs.Status != "" {
		v.Check(validator.In(qs.Status, data.RequestStatuses...), "status", "invalid request status")
	}
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	requests, metadata, err := s.repo.GetAllBorrowRequests(qs.LibraryID, qs.Status, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return requests, metadata, nil
}
