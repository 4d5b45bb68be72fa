package repository

import "errors"

var (
	ErrRecordNotFound           = errors.New("record not found")
	ErrEditConflict             = errors.New("edit conflict")
	ErrDuplicateRecord          = errors.New("duplicate record")
	ErrInsufficientAvailability = errors.New("insufficient availability")
)
