package service

import (
	"errors"
	"strings"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/repository"
)

type users interface {
	RegisterUser(requestBody dto.RegisterUserRequestBody) (*data.User, error)
	ActivateUser(token string) (*data.User, error)
	ShowUser(userID int64) (*data.User, error)
	UpdateUserRole(userID int64, requestBody dto.UpdateUserRoleRequestBody) (*data.User, error)
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
	ListUserBorrowRequests(userID int64, qs dto.QsListUserBorrowRequests) ([]*data.BorrowRequest, data.Metadata, error)
	ListUserBorrowRecords(userID int64, qs dto.QsListUserBorrowRecords) ([]*data.BorrowRecord, data.Metadata, error)
}

// RegisterUser service registers a new user with the member role.
func (s *service) RegisterUser(requestBody dto.RegisterUserRequestBody) (*data.User, error) {
	user := &data.User{
		Name:      requestBody.Name,
		Email:     requestBody.Email,
		Activated: false,
		Role:      data.RoleMember,
	}
	err := user.Password.Set(requestBody.Password)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.RegisterUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("email", "a user with this email address already exists")
			ErrDuplicateRecord = s.failedValidation(v.Errors)
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	// Generate a new activation token for user
	token, err := s.repo.CreateNewToken(user.ID, 3*24*time.Hour, data.ScopeActivation)
	if err != nil {
		return nil, err
	}
	// Send welcome email in a background goroutine to speed up response time
	s.sendEmail(user.Email, "user_welcome.tmpl", map[string]string{
		"userName":        strings.Split(user.Name, " ")[0],
		"activationToken": token.Plaintext,
	})
	return user, nil
}

// ActivateUser service activates a newly registered user.
func (s *service) ActivateUser(token string) (*data.User, error) {
	v := validator.New()
	if data.ValidateTokenPlaintext(v, token); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	// Retrieve user associated with the activation token. If the user record
	// isn't found, it means the token is invalid
	user, err := s.repo.GetUserForToken(data.ScopeActivation, token)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("token", "invalid or expired activation token")
			ErrFailedValidation = s.failedValidation(v.Errors)
			return nil, ErrFailedValidation
		default:
			return nil, err
		}
	}
	// Activate user
	user.Activated = true
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	// Delete all activation tokens for user
	err = s.repo.DeleteAllTokensForUser(data.ScopeActivation, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ShowUser service shows the details of a specific user.
func (s *service) ShowUser(userID int64) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// UpdateUserRole service changes a user's role and branch assignments.
// Library assignments only apply to librarians; they are cleared for other
// roles.
func (s *service) UpdateUserRole(userID int64, requestBody dto.UpdateUserRoleRequestBody) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	user.Role = requestBody.Role
	user.LibraryIDs = requestBody.LibraryIDs
	if user.Role != data.RoleLibrarian {
		user.LibraryIDs = nil
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUserForToken service retrieves the user associated with a token.
func (s *service) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	v := validator.New()
	if data.ValidateTokenPlaintext(v, tokenPlaintext); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, ErrFailedValidation
	}
	user, err := s.repo.GetUserForToken(tokenScope, tokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// ListUserBorrowRequests service retrieves a user's own borrow requests.
func (s *service) ListUserBorrowRequests(userID int64, qs dto.QsListUserBorrowRequests) ([]*data.BorrowRequest, data.Metadata, error) {
	v := validator.New()
	if qs.Status != "" {
		v.Check(validator.In(qs.Status, data.RequestStatuses...), "status", "invalid request status")
	}
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	requests, metadata, err := s.repo.GetAllBorrowRequestsForUser(userID, qs.Status, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return requests, metadata, nil
}

// ListUserBorrowRecords service retrieves a user's own loan history, most
// recent first.
func (s *service) ListUserBorrowRecords(userID int64, qs dto.QsListUserBorrowRecords) ([]*data.BorrowRecord, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, qs.Filters); !v.Valid() {
		ErrFailedValidation = s.failedValidation(v.Errors)
		return nil, data.Metadata{}, ErrFailedValidation
	}
	records, metadata, err := s.repo.GetAllBorrowRecordsForUser(userID, qs.Filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return records, metadata, nil
}
