package model

import "errors"

var (
	// account / item lookups
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation failed")

	// wraps any store failure that is not one of the above
	ErrPersistence   = errors.New("persistence failure")
	ErrConfiguration = errors.New("configuration error")
)
