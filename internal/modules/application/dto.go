package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"evisa/internal/domain"
	"evisa/internal/repository"
)

// Date accepts "2006-01-02" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// ApplicationInput is the writable part of an application. It is used for
// both create and update; empty fields are left untouched. Owner, booking
// number and status are deliberately absent.
type ApplicationInput struct {
	FullName           string `json:"full_name"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone"`
	DateOfBirth        *Date  `json:"date_of_birth"`
	Nationality        string `json:"nationality"`
	PassportNumber     string `json:"passport_number"`
	PassportIssueDate  *Date  `json:"passport_issue_date"`
	PassportExpiryDate *Date  `json:"passport_expiry_date"`

	VisaType            string `json:"visa_type" validate:"omitempty,visa_type"`
	EntryType           string `json:"entry_type" validate:"omitempty,entry_type"`
	Duration            string `json:"duration"`
	PurposeOfVisit      string `json:"purpose_of_visit"`
	IntendedArrivalDate *Date  `json:"intended_arrival_date"`

	ResidentialAddress *domain.Address         `json:"residential_address"`
	ThailandAddress    *domain.ThailandAddress `json:"thailand_address"`
	SubmittedTo        string                  `json:"submitted_to"`
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// apply merges the non-empty fields of in into a.
func (in ApplicationInput) apply(a *domain.Application) {
	setString(&a.FullName, in.FullName)
	setString(&a.Email, strings.ToLower(in.Email))
	setString(&a.Phone, in.Phone)
	setString(&a.Nationality, in.Nationality)
	setString(&a.PassportNumber, in.PassportNumber)
	setString(&a.Duration, in.Duration)
	setString(&a.PurposeOfVisit, in.PurposeOfVisit)
	setString(&a.SubmittedTo, in.SubmittedTo)

	if t := in.DateOfBirth.ptr(); t != nil {
		a.DateOfBirth = *t
	}
	if t := in.PassportIssueDate.ptr(); t != nil {
		a.PassportIssueDate = t
	}
	if t := in.PassportExpiryDate.ptr(); t != nil {
		a.PassportExpiryDate = t
	}
	if t := in.IntendedArrivalDate.ptr(); t != nil {
		a.IntendedArrivalDate = *t
	}
	if in.VisaType != "" {
		a.VisaType = domain.VisaType(in.VisaType)
	}
	if in.EntryType != "" {
		a.EntryType = domain.EntryType(in.EntryType)
	}
	if in.ResidentialAddress != nil {
		a.ResidentialAddress = *in.ResidentialAddress
	}
	if in.ThailandAddress != nil {
		a.ThailandAddress = *in.ThailandAddress
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

type ListQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

type ListResult struct {
	Items       []domain.Application
	Total       int64
	TotalPages  int
	CurrentPage int
}

type Stats struct {
	Total      int64                    `json:"total"`
	Pending    int64                    `json:"pending"`
	Processing int64                    `json:"processing"`
	Approved   int64                    `json:"approved"`
	Rejected   int64                    `json:"rejected"`
	Breakdown  []repository.StatusCount `json:"breakdown"`
}
