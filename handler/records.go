package handler

import (
	"errors"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// ShowBorrowRecord godoc
// @Summary Show details of a borrow record
// @Description This endpoint shows the details of a specific loan. An open loan past its due date is reported as overdue. Members may only view their own loans
// @Tags records
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param recordId path int true "ID of record to show"
// @Success 200 {object} data.BorrowRecord
// @Failure 403
// @Failure 404
// @Failure 500
// @Router /v1/records/{recordId} [get]
func (h *Handler) showBorrowRecordHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := h.readIDParam(r, "recordId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	record, err := h.service.GetBorrowRecord(recordID, user)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"record": record}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListBorrowRecords godoc
// @Summary List borrow records for a library
// @Description This endpoint lists loans for a library branch. Open loans past their due date are swept to overdue before the page is read. The caller must be staff of the branch
// @Tags records
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param library_id query int true "Query string param to scope results to a library"
// @Param user_id query int false "Query string param to scope results to a user"
// @Param status query string false "Comma-separated record statuses (options: borrowed, returned, overdue, lost)"
// @Param overdue query bool false "Query string param to list only loans past their due date"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, due_date, borrow_date. Desc: -id, -due_date, -borrow_date"
// @Success 200 {array} data.BorrowRecord
// @Failure 403
// @Failure 422
// @Failure 500
// @Router /v1/records [get]
func (h *Handler) listBorrowRecordsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBorrowRecords
	v := validator.New()
	qs := r.URL.Query()
	qsInput.LibraryID = h.readInt64(qs, "library_id", 0, v)
	qsInput.UserID = h.readInt64(qs, "user_id", 0, v)
	qsInput.Statuses = h.readCSV(qs, "status", []string{})
	qsInput.OverdueOnly = h.readBool(qs, "overdue", false, v)
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "due_date")
	qsInput.Filters.SortSafeList = []string{"id", "due_date", "borrow_date", "-id", "-due_date", "-borrow_date"}
	user := h.contextGetUser(r)
	records, metadata, err := h.service.ListBorrowRecords(user, qsInput)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"records": records, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ReturnBorrowRecord godoc
// @Summary Return a borrowed copy
// @Description This endpoint closes a loan and releases its copy back into circulation. Returning an already-closed loan conflicts. The caller must be staff of the branch
// @Tags records
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param recordId path int true "ID of record to return"
// @Param body body dto.ReturnBorrowRecordRequestBody false "Optional fee adjustments to merge into the loan"
// @Success 200 {object} data.BorrowRecord
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/records/{recordId}/return [put]
func (h *Handler) returnBorrowRecordHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := h.readIDParam(r, "recordId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.ReturnBorrowRecordRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	record, err := h.service.ReturnBorrowRecord(recordID, user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"record": record}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// MarkBorrowRecordLost godoc
// @Summary Mark a borrowed copy as lost
// @Description This endpoint closes a loan as lost and takes its copy out of circulation. The caller must be staff of the branch
// @Tags records
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param recordId path int true "ID of record to mark lost"
// @Param body body dto.ReturnBorrowRecordRequestBody false "Optional fee adjustments to merge into the loan"
// @Success 200 {object} data.BorrowRecord
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/records/{recordId}/lost [put]
func (h *Handler) markBorrowRecordLostHandler(w http.ResponseWriter, r *http.Request) {
	recordID, err := h.readIDParam(r, "recordId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.ReturnBorrowRecordRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	record, err := h.service.MarkBorrowRecordLost(recordID, user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"record": record}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
