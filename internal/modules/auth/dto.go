package auth

import "evisa/internal/domain"

const dateLayout = "2006-01-02"

type RegisterRequest struct {
	FullName       string `json:"full_name" validate:"required,min=2"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Phone          string `json:"phone" validate:"required"`
	Nationality    string `json:"nationality" validate:"required"`
	DateOfBirth    string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	PassportNumber string `json:"passport_number" validate:"required,min=5,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes contact details only. Email, passport number
// and role are fixed after registration.
type UpdateProfileRequest struct {
	FullName    string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Phone       string `json:"phone,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"` // seconds
	User      *domain.User `json:"user"`
}
