package auth

import "errors"

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrPassportAlreadyExists = errors.New("passport number already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidDate           = errors.New("invalid date")
)
