package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/libraries", h.requireActivatedUser(h.listLibrariesHandler))
	router.HandlerFunc(http.MethodPost, "/v1/libraries", h.requireAdmin(h.createLibraryHandler))
	router.HandlerFunc(http.MethodGet, "/v1/libraries/:libraryId", h.requireActivatedUser(h.showLibraryHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/libraries/:libraryId", h.requireAdmin(h.updateLibraryHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/libraries/:libraryId", h.requireAdmin(h.deleteLibraryHandler))

	router.HandlerFunc(http.MethodGet, "/v1/titles", h.requireActivatedUser(h.listTitlesHandler))
	router.HandlerFunc(http.MethodPost, "/v1/titles", h.requireStaff(h.createTitleHandler))
	router.HandlerFunc(http.MethodGet, "/v1/titles/:titleId", h.requireActivatedUser(h.showTitleHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/titles/:titleId", h.requireStaff(h.updateTitleHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/titles/:titleId", h.requireStaff(h.deleteTitleHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/titles/:titleId/cover", h.requireStaff(h.updateTitleCoverHandler))

	router.HandlerFunc(http.MethodGet, "/v1/inventories", h.requireActivatedUser(h.listInventoriesHandler))
	router.HandlerFunc(http.MethodPost, "/v1/inventories", h.requireStaff(h.createInventoryHandler))
	router.HandlerFunc(http.MethodGet, "/v1/inventories/:inventoryId", h.requireActivatedUser(h.showInventoryHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/inventories/:inventoryId", h.requireStaff(h.updateInventoryHandler))
	router.HandlerFunc(http.MethodPost, "/v1/inventories/:inventoryId/reconcile", h.requireStaff(h.reconcileInventoryHandler))

	router.HandlerFunc(http.MethodGet, "/v1/copies", h.requireStaff(h.listCopiesHandler))
	router.HandlerFunc(http.MethodPost, "/v1/copies", h.requireStaff(h.createCopyHandler))
	router.HandlerFunc(http.MethodGet, "/v1/copies/:copyId", h.requireStaff(h.showCopyHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/copies/:copyId", h.requireStaff(h.updateCopyHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/copies/:copyId", h.requireStaff(h.deleteCopyHandler))

	router.HandlerFunc(http.MethodGet, "/v1/requests", h.requireStaff(h.listBorrowRequestsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/requests", h.requireActivatedUser(h.createBorrowRequestHandler))
	router.HandlerFunc(http.MethodGet, "/v1/requests/:requestId", h.requireActivatedUser(h.showBorrowRequestHandler))
	router.HandlerFunc(http.MethodPut, "/v1/requests/:requestId/decision", h.requireStaff(h.decideBorrowRequestHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/requests/:requestId", h.requireActivatedUser(h.cancelBorrowRequestHandler))

	router.HandlerFunc(http.MethodGet, "/v1/records", h.requireStaff(h.listBorrowRecordsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/records/:recordId", h.requireActivatedUser(h.showBorrowRecordHandler))
	router.HandlerFunc(http.MethodPut, "/v1/records/:recordId/return", h.requireStaff(h.returnBorrowRecordHandler))
	router.HandlerFunc(http.MethodPut, "/v1/records/:recordId/lost", h.requireStaff(h.markBorrowRecordLostHandler))

	router.HandlerFunc(http.MethodPost, "/v1/users", h.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activated", h.activateUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/profile", h.requireActivatedUser(h.showUserHandler))
	router.HandlerFunc(http.MethodPut, "/v1/users/role/:userId", h.requireAdmin(h.updateUserRoleHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/requests", h.requireActivatedUser(h.listUserBorrowRequestsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/records", h.requireActivatedUser(h.listUserBorrowRecordsHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tokens/activation", h.createActivationTokenHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", h.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/tokens/authentication", h.requireAuthenticatedUser(h.deleteAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.metrics(h.recoverPanic(h.enableCORS(h.rateLimit(h.authenticate(router)))))
}
