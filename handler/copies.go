package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// CreateCopy godoc
// @Summary Register a new physical copy
// @Description This endpoint registers a new physical copy at a library. A barcode is generated when none is supplied
// @Tags copies
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param body body dto.CreateCopyRequestBody true "JSON payload required to create a copy"
// @Success 201 {object} data.Copy
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/copies [post]
func (h *Handler) createCopyHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateCopyRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	copy, err := h.service.CreateCopy(user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
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
	headers.Set("Location", fmt.Sprintf("/v1/copies/%d", copy.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"copy": copy}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowCopy godoc
// @Summary Show details of a copy
// @Description This endpoint shows the details of a specific copy
// @Tags copies
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param copyId path int true "ID of copy to show"
// @Success 200 {object} data.Copy
// @Failure 404
// @Failure 500
// @Router /v1/copies/{copyId} [get]
func (h *Handler) showCopyHandler(w http.ResponseWriter, r *http.Request) {
	copyID, err := h.readIDParam(r, "copyId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	copy, err := h.service.GetCopy(copyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"copy": copy}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListCopies godoc
// @Summary List copies
// @Description This endpoint lists copies, optionally scoped to a library, title and/or status. A barcode query string looks up a single copy instead
// @Tags copies
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param library_id query int false "Query string param to scope results to a library"
// @Param title_id query int false "Query string param to scope results to a title"
// @Param status query string false "Query string param for copy status (options: available, borrowed, reserved, lost, maintenance)"
// @Param barcode query string false "Query string param to look up a single copy by barcode (requires library_id)"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, barcode. Desc: -id, -barcode"
// @Success 200 {array} data.Copy
// @Failure 404
// @Failure 422
// @Failure 500
// @Router /v1/copies [get]
func (h *Handler) listCopiesHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListCopies
	v := validator.New()
	qs := r.URL.Query()
	qsInput.LibraryID = h.readInt64(qs, "library_id", 0, v)
	qsInput.TitleID = h.readInt64(qs, "title_id", 0, v)
	qsInput.Status = h.readString(qs, "status", "")
	barcode := h.readString(qs, "barcode", "")
	if barcode != "" {
		copy, err := h.service.GetCopyByBarcode(qsInput.LibraryID, barcode)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFailedValidation):
				h.failedValidationResponse(w, r, err)
			case errors.Is(err, service.ErrRecordNotFound):
				h.notFoundResponse(w, r)
			default:
				h.serverErrorResponse(w, r, err)
			}
			return
		}
		err = h.encodeJSON(w, http.StatusOK, envelope{"copy": copy}, nil)
		if err != nil {
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "barcode", "-id", "-barcode"}
	copies, metadata, err := h.service.ListCopies(qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"copies": copies, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateCopy godoc
// @Summary Update a copy
// @Description This endpoint updates a copy's status, condition or shelf location. Borrowed status is managed by the loan workflow
// @Tags copies
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param copyId path int true "ID of copy to update"
// @Param body body dto.UpdateCopyRequestBody true "JSON payload required to update a copy"
// @Success 200 {object} data.Copy
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/copies/{copyId} [patch]
func (h *Handler) updateCopyHandler(w http.ResponseWriter, r *http.Request) {
	copyID, err := h.readIDParam(r, "copyId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateCopyRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	copy, err := h.service.UpdateCopy(copyID, user, requestBody)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"copy": copy}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteCopy godoc
// @Summary Delete a copy
// @Description This endpoint removes a copy from circulation. Deletion is refused while the copy is out on loan
// @Tags copies
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param copyId path int true "ID of copy to delete"
// @Success 200
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/copies/{copyId} [delete]
func (h *Handler) deleteCopyHandler(w http.ResponseWriter, r *http.Request) {
	copyID, err := h.readIDParam(r, "copyId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	err = h.service.DeleteCopy(copyID, user)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "copy successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
