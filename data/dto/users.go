package dto

import "github.com/emzola/athenaeum/data"

// RegisterUserRequestBody defines a request body for RegisterUser service.
type RegisterUserRequestBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActivateUserRequestBody defines a request body for ActivateUser service.
type ActivateUserRequestBody struct {
	TokenPlaintext string `json:"token"`
}

// UpdateUserRoleRequestBody defines a request body for UpdateUserRole service.
type UpdateUserRoleRequestBody struct {
	Role       string  `json:"role"`
	LibraryIDs []int64 `json:"library_ids"`
}

// QsListUserBorrowRequests defines query strings for ListUserBorrowRequests service.
type QsListUserBorrowRequests struct {
	Status  string
	Filters data.Filters
}

// QsListUserBorrowRecords defines query strings for ListUserBorrowRecords service.
type QsListUserBorrowRecords struct {
	Filters data.Filters
}
