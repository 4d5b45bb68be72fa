package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// CreateLibrary godoc
// @Summary Create a new library branch
// @Description This endpoint creates a new library branch
// @Tags libraries
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param body body dto.CreateLibraryRequestBody true "JSON payload required to create a library"
// @Success 201 {object} data.Library
// @Failure 400
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/libraries [post]
func (h *Handler) createLibraryHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateLibraryRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	library, err := h.service.CreateLibrary(requestBody)
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
	headers.Set("Location", fmt.Sprintf("/v1/libraries/%d", library.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"library": library}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowLibrary godoc
// @Summary Show details of a library branch
// @Description This endpoint shows the details of a specific library branch
// @Tags libraries
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param libraryId path int true "ID of library to show"
// @Success 200 {object} data.Library
// @Failure 404
// @Failure 500
// @Router /v1/libraries/{libraryId} [get]
func (h *Handler) showLibraryHandler(w http.ResponseWriter, r *http.Request) {
	libraryID, err := h.readIDParam(r, "libraryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	library, err := h.service.GetLibrary(libraryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"library": library}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListLibraries godoc
// @Summary List all library branches
// @Description This endpoint lists all library branches
// @Tags libraries
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param search query string false "Query string param for search"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, code, name. Desc: -id, -code, -name"
// @Success 200 {array} data.Library
// @Failure 422
// @Failure 500
// @Router /v1/libraries [get]
func (h *Handler) listLibrariesHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListLibraries
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "code", "name", "-id", "-code", "-name"}
	libraries, metadata, err := h.service.ListLibraries(qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"libraries": libraries, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateLibrary godoc
// @Summary Update a library branch
// @Description This endpoint updates the details of a specific library branch
// @Tags libraries
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param libraryId path int true "ID of library to update"
// @Param body body dto.UpdateLibraryRequestBody true "JSON payload required to update a library"
// @Success 200 {object} data.Library
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/libraries/{libraryId} [patch]
func (h *Handler) updateLibraryHandler(w http.ResponseWriter, r *http.Request) {
	libraryID, err := h.readIDParam(r, "libraryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateLibraryRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	library, err := h.service.UpdateLibrary(libraryID, requestBody)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"library": library}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteLibrary godoc
// @Summary Delete a library branch
// @Description This endpoint deletes a library branch. Deletion is refused while the branch still holds inventories
// @Tags libraries
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param libraryId path int true "ID of library to delete"
// @Success 200
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/libraries/{libraryId} [delete]
func (h *Handler) deleteLibraryHandler(w http.ResponseWriter, r *http.Request) {
	libraryID, err := h.readIDParam(r, "libraryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteLibrary(libraryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "library successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
