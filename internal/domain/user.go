package domain

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to the review team.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	FullName       string    `gorm:"not null" json:"full_name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"column:password_hash;not null" json:"-"`
	Phone          string    `gorm:"not null" json:"phone"`
	Nationality    string    `gorm:"not null" json:"nationality"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	PassportNumber string    `gorm:"uniqueIndex;not null" json:"passport_number"`
	Role           UserRole  `gorm:"type:varchar(20);not null;default:user" json:"role"`
	ProfilePhoto   string    `json:"profile_photo,omitempty"`
	IsVerified     bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID int64
	Role   UserRole
}

// Owns reports whether the caller is the given owner.
func (c Caller) Owns(ownerID int64) bool {
	return c.UserID != 0 && c.UserID == ownerID
}

// ApplicantSummary is the part of a User exposed next to an application.
type ApplicantSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (u *User) Summary() *ApplicantSummary {
	return &ApplicantSummary{ID: u.ID, FullName: u.FullName, Email: u.Email}
}
