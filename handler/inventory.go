package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/athenaeum/data/dto"
	"github.com/emzola/athenaeum/internal/validator"
	"github.com/emzola/athenaeum/service"
)

// CreateInventory godoc
// @Summary Create an inventory
// @Description This endpoint creates an empty inventory for a title at a library
// @Tags inventories
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param body body dto.CreateInventoryRequestBody true "JSON payload required to create an inventory"
// @Success 201 {object} data.Inventory
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/inventories [post]
func (h *Handler) createInventoryHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateInventoryRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	inventory, err := h.service.CreateInventory(user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/inventories/%d", inventory.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"inventory": inventory}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowInventory godoc
// @Summary Show details of an inventory
// @Description This endpoint shows the copy counts for a title at a library
// @Tags inventories
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param inventoryId path int true "ID of inventory to show"
// @Success 200 {object} data.Inventory
// @Failure 404
// @Failure 500
// @Router /v1/inventories/{inventoryId} [get]
func (h *Handler) showInventoryHandler(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := h.readIDParam(r, "inventoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	inventory, err := h.service.GetInventory(inventoryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"inventory": inventory}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListInventories godoc
// @Summary List inventories
// @Description This endpoint lists inventories, optionally scoped to a library or title, or to those with available copies
// @Tags inventories
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param library_id query int false "Query string param to scope results to a library"
// @Param title_id query int false "Query string param to scope results to a title"
// @Param available query bool false "Query string param to list only inventories with available copies"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, available_copies. Desc: -id, -available_copies"
// @Success 200 {array} data.Inventory
// @Failure 422
// @Failure 500
// @Router /v1/inventories [get]
func (h *Handler) listInventoriesHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListInventories
	v := validator.New()
	qs := r.URL.Query()
	qsInput.LibraryID = h.readInt64(qs, "library_id", 0, v)
	qsInput.TitleID = h.readInt64(qs, "title_id", 0, v)
	qsInput.AvailableOnly = h.readBool(qs, "available", false, v)
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "available_copies", "total_copies", "-id", "-available_copies", "-total_copies"}
	inventories, metadata, err := h.service.ListInventories(qsInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"inventories": inventories, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateInventory godoc
// @Summary Adjust an inventory's counts
// @Description This endpoint applies a manual count adjustment to an inventory. The available count is clamped to [0, total]
// @Tags inventories
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param inventoryId path int true "ID of inventory to update"
// @Param body body dto.UpdateInventoryRequestBody true "JSON payload required to adjust an inventory"
// @Success 200 {object} data.Inventory
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/inventories/{inventoryId} [patch]
func (h *Handler) updateInventoryHandler(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := h.readIDParam(r, "inventoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateInventoryRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	inventory, err := h.service.UpdateInventory(inventoryID, user, requestBody)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"inventory": inventory}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ReconcileInventory godoc
// @Summary Reconcile an inventory's counts
// @Description This endpoint recomputes an inventory's counts from its copies
// @Tags inventories
// @Accept  json
// @Produce json
// @Param token header string true "Bearer token"
// @Param inventoryId path int true "ID of inventory to reconcile"
// @Success 200 {object} data.Inventory
// @Failure 403
// @Failure 404
// @Failure 500
// @Router /v1/inventories/{inventoryId}/reconcile [post]
func (h *Handler) reconcileInventoryHandler(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := h.readIDParam(r, "inventoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	inventory, err := h.service.ReconcileInventory(inventoryID, user)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"inventory": inventory}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
