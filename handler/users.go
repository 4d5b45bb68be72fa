package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// RegisterUser godoc
// @Summary Register a new user
// @Description This endpoint registers a new user with the member role and emails an activation token
// @Tags users
// @Accept  json
// @Produce json
// @Param body body dto.RegisterUserRequestBody true "JSON payload required to register a user"
// @Success 201 {object} data.User
// @Failure 400
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/users [post]
func (h *Handler) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.RegisterUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.RegisterUser(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/users/%d", user.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"user": user}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ActivateUser godoc
// @Summary Activate a user
// @Description This endpoint activates a newly registered user with an activation token
// @Tags users
// @Accept  json
// @Produce json
// @Param body body dto.ActivateUserRequestBody true "JSON payload containing the activation token"
// @Success 200 {object} data.User
// @Failure 400
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/users/activated [put]
func (h *Handler) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.ActivateUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.ActivateUser(requestBody.TokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowUserProfile godoc
// @Summary Show the authenticated user's profile
// @Description This endpoint shows the profile of the authenticated user
// @Tags users
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Success 200 {object} data.User
// @Failure 404
// @Failure 500
// @Router /v1/users/profile [get]
func (h *Handler) showUserHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	profile, err := h.service.ShowUser(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": profile}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateUserRole godoc
// @Summary Update a user's role
// @Description This endpoint changes a user's role and branch assignments. Admin only
// @Tags users
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param userId path int true "ID of user to update"
// @Param body body dto.UpdateUserRoleRequestBody true "JSON payload with the new role and branch assignments"
// @Success 200 {object} data.User
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/users/role/{userId} [put]
func (h *Handler) updateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := h.readIDParam(r, "userId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateUserRoleRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.UpdateUserRole(userID, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListUserBorrowRequests godoc
// @Summary List the authenticated user's borrow requests
// @Description This endpoint lists the authenticated user's borrow requests
// @Tags users
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param status query string false "Query string param for request status (options: pending, approved, rejected, cancelled)"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, requested_at. Desc: -id, -requested_at"
// @Success 200 {array} data.BorrowRequest
// @Failure 422
// @Failure 500
// @Router /v1/users/requests [get]
func (h *Handler) listUserBorrowRequestsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListUserBorrowRequests
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Status = h.readString(qs, "status", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "-requested_at")
	qsInput.Filters.SortSafeList = []string{"id", "requested_at", "-id", "-requested_at"}
	user := h.contextGetUser(r)
	requests, metadata, err := h.service.ListUserBorrowRequests(user.ID, qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"requests": requests, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListUserBorrowRecords godoc
// @Summary List the authenticated user's loans
// @Description This endpoint lists the authenticated user's loan history, most recent first
// @Tags users
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Success 200 {array} data.BorrowRecord
// @Failure 422
// @Failure 500
// @Router /v1/users/records [get]
func (h *Handler) listUserBorrowRecordsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListUserBorrowRecords
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "-borrow_date")
	qsInput.Filters.SortSafeList = []string{"id", "borrow_date", "-id", "-borrow_date"}
	user := h.contextGetUser(r)
	records, metadata, err := h.service.ListUserBorrowRecords(user.ID, qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"records": records, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
