package domain

import "errors"

var (
	ErrInvalidStatus      = errors.New("invalid application status")
	ErrInvalidApplication = errors.New("invalid application")
	ErrTimelineOutOfSync  = errors.New("application status changed without a timeline entry")
)
