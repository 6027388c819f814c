package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("application not found")
	ErrForbidden              = errors.New("not authorized to access this application")
	ErrInvalidState           = errors.New("invalid application state")
	ErrValidation             = errors.New("validation error")
	ErrUserNotFound           = errors.New("user not found")
	ErrBookingNumberExhausted = errors.New("could not allocate a unique booking number")

	ErrNotEditable      = fmt.Errorf("%w: cannot update submitted application", ErrInvalidState)
	ErrAlreadySubmitted = fmt.Errorf("%w: application already submitted", ErrInvalidState)
)
