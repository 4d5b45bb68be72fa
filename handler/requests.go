package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// CreateBorrowRequest godoc
// @Summary Create a new borrow request
// @Description This endpoint files a pending borrow request for a title at a library. The branch must have an available copy
// @Tags requests
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param body body dto.CreateBorrowRequestRequestBody true "JSON payload required to create a borrow request"
// @Success 201 {object} data.BorrowRequest
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/requests [post]
func (h *Handler) createBorrowRequestHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateBorrowRequestRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	request, err := h.service.CreateBorrowRequest(user.ID, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r, err)
		case errors.Is(err, service.ErrInsufficientAvailability):
			h.insufficientAvailabilityResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/requests/%d", request.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"request": request}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowBorrowRequest godoc
// @Summary Show details of a borrow request
// @Description This endpoint shows the details of a specific borrow request. Members may only view their own requests
// @Tags requests
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param requestId path int true "ID of request to show"
// @Success 200 {object} data.BorrowRequest
// @Failure 403
// @Failure 404
// @Failure 500
// @Router /v1/requests/{requestId} [get]
func (h *Handler) showBorrowRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.readIDParam(r, "requestId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	request, err := h.service.GetBorrowRequest(requestID, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"request": request}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListBorrowRequests godoc
// @Summary List borrow requests for a library
// @Description This endpoint lists borrow requests for a library branch. The caller must be staff of the branch
// @Tags requests
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param library_id query int true "Query string param to scope results to a library"
// @Param status query string false "Query string param for request status (options: pending, approved, rejected, cancelled)"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, requested_at. Desc: -id, -requested_at"
// @Success 200 {array} data.BorrowRequest
// @Failure 403
// @Failure 422
// @Failure 500
// @Router /v1/requests [get]
func (h *Handler) listBorrowRequestsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBorrowRequests
	v := validator.New()
	qs := r.URL.Query()
	qsInput.LibraryID = h.readInt64(qs, "library_id", 0, v)
	qsInput.Status = h.readString(qs, "status", "pending")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "requested_at")
	qsInput.Filters.SortSafeList = []string{"id", "requested_at", "-id", "-requested_at"}
	user := h.contextGetUser(r)
	requests, metadata, err := h.service.ListBorrowRequests(user, qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
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

// DecideBorrowRequest godoc
// @Summary Decide a borrow request
// @Description This endpoint approves or rejects a pending borrow request. Approval allocates an available copy and opens a loan atomically
// @Tags requests
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param requestId path int true "ID of request to decide"
// @Param body body dto.DecideBorrowRequestRequestBody true "JSON payload with the decision (approved or rejected)"
// @Success 200 {object} data.BorrowRequest
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/requests/{requestId}/decision [put]
func (h *Handler) decideBorrowRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.readIDParam(r, "requestId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.DecideBorrowRequestRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	request, err := h.service.DecideBorrowRequest(requestID, user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrInsufficientAvailability):
			h.insufficientAvailabilityResponse(w, r)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"request": request}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// CancelBorrowRequest godoc
// @Summary Cancel a borrow request
// @Description This endpoint withdraws a pending borrow request. Only the request's owner may cancel it
// @Tags requests
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param requestId path int true "ID of request to cancel"
// @Success 200 {object} data.BorrowRequest
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/requests/{requestId} [delete]
func (h *Handler) cancelBorrowRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.readIDParam(r, "requestId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	request, err := h.service.CancelBorrowRequest(requestID, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"request": request}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
