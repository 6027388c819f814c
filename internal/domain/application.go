package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusDraft             ApplicationStatus = "Draft"
	StatusSubmitted         ApplicationStatus = "Submitted"
	StatusUnderReview       ApplicationStatus = "Under Review"
	StatusDocumentsRequired ApplicationStatus = "Documents Required"
	StatusProcessing        ApplicationStatus = "Processing"
	StatusApproved          ApplicationStatus = "Approved"
	StatusRejected          ApplicationStatus = "Rejected"
	StatusCancelled         ApplicationStatus = "Cancelled"
)

var applicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusDocumentsRequired,
	StatusProcessing,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
}

// ApplicationStatuses returns every status in workflow order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

func (s ApplicationStatus) IsValid() bool {
	for _, v := range applicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type VisaType string

const (
	VisaTourist  VisaType = "Tourist Visa (TR)"
	VisaBusiness VisaType = "Business Visa (B)"
	VisaStudent  VisaType = "Student Visa (ED)"
	VisaMedical  VisaType = "Medical Visa (MT)"
	VisaTransit  VisaType = "Transit Visa"
)

func (v VisaType) IsValid() bool {
	switch v {
	case VisaTourist, VisaBusiness, VisaStudent, VisaMedical, VisaTransit:
		return true
	}
	return false
}

type EntryType string

const (
	EntrySingle   EntryType = "Single Entry"
	EntryMultiple EntryType = "Multiple Entry"
)

func (e EntryType) IsValid() bool {
	return e == EntrySingle || e == EntryMultiple
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// DefaultPaymentAmount is the visa fee charged when nothing else is agreed.
var DefaultPaymentAmount = decimal.NewFromInt(40)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

type ThailandAddress struct {
	Hotel   string `json:"hotel,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

type TimelineEntry struct {
	Status      ApplicationStatus `json:"status"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
}

type AdminNote struct {
	ID      string    `json:"id"`
	Note    string    `json:"note"`
	AddedBy int64     `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// Application is a visa application. Documents, timeline and admin notes are
// embedded and persisted together with the record.
type Application struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	BookingNumber string `gorm:"size:32;uniqueIndex;not null" json:"booking_number"`
	UserID        int64  `gorm:"index;not null" json:"user_id"`

	FullName           string     `gorm:"not null" json:"full_name"`
	Email              string     `gorm:"not null" json:"email"`
	Phone              string     `gorm:"not null" json:"phone"`
	DateOfBirth        time.Time  `json:"date_of_birth"`
	Nationality        string     `gorm:"not null" json:"nationality"`
	PassportNumber     string     `gorm:"index;not null" json:"passport_number"`
	PassportIssueDate  *time.Time `json:"passport_issue_date,omitempty"`
	PassportExpiryDate *time.Time `json:"passport_expiry_date,omitempty"`

	VisaType            VisaType  `gorm:"size:32;not null" json:"visa_type"`
	EntryType           EntryType `gorm:"size:32;not null" json:"entry_type"`
	Duration            string    `gorm:"not null" json:"duration"`
	PurposeOfVisit      string    `gorm:"not null" json:"purpose_of_visit"`
	IntendedArrivalDate time.Time `json:"intended_arrival_date"`

	ResidentialAddress Address         `gorm:"serializer:json;type:text" json:"residential_address"`
	ThailandAddress    ThailandAddress `gorm:"serializer:json;type:text" json:"thailand_address"`
	SubmittedTo        string          `gorm:"not null" json:"submitted_to"`

	Documents  []Document      `gorm:"serializer:json;type:text" json:"documents"`
	Timeline   []TimelineEntry `gorm:"serializer:json;type:text" json:"timeline"`
	AdminNotes []AdminNote     `gorm:"serializer:json;type:text" json:"admin_notes"`

	Status        ApplicationStatus `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"size:16;not null" json:"payment_status"`
	PaymentAmount decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"payment_amount"`
	PaymentID     string            `json:"payment_id,omitempty"`
	PaymentDate   *time.Time        `json:"payment_date,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Owner *ApplicantSummary `gorm:"-" json:"owner,omitempty"`
}

// NewApplication returns a Draft application owned by ownerID with its first
// timeline entry recorded.
func NewApplication(ownerID int64, at time.Time) *Application {
	a := &Application{
		UserID:        ownerID,
		PaymentStatus: PaymentPending,
		PaymentAmount: DefaultPaymentAmount,
		Documents:     []Document{},
		Timeline:      []TimelineEntry{},
		AdminNotes:    []AdminNote{},
	}
	_, _ = a.ChangeStatus(StatusDraft, at)
	return a
}

// ChangeStatus is the only way to move an application between statuses. It
// appends one timeline entry per actual change and reports whether the status
// changed. Timeline timestamps never go backwards.
func (a *Application) ChangeStatus(status ApplicationStatus, at time.Time) (bool, error) {
	if !status.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if a.Status == status && len(a.Timeline) > 0 {
		return false, nil
	}
	if n := len(a.Timeline); n > 0 && at.Before(a.Timeline[n-1].Timestamp) {
		at = a.Timeline[n-1].Timestamp
	}
	a.Status = status
	a.Timeline = append(a.Timeline, TimelineEntry{
		Status:      status,
		Description: fmt.Sprintf("Application status changed to %s", status),
		Timestamp:   at,
	})
	return true, nil
}

func (a *Application) AddAdminNote(note AdminNote) {
	a.AdminNotes = append(a.AdminNotes, note)
}

func (a *Application) AttachDocument(doc Document) {
	a.Documents = append(a.Documents, doc)
}

func (a *Application) FindDocument(id string) (*Document, bool) {
	for i := range a.Documents {
		if a.Documents[i].ID == id {
			return &a.Documents[i], true
		}
	}
	return nil, false
}

func (a *Application) RemoveDocument(id string) bool {
	for i := range a.Documents {
		if a.Documents[i].ID == id {
			a.Documents = append(a.Documents[:i], a.Documents[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks required fields and enumerations.
func (a *Application) Validate() error {
	var missing []string
	required := []struct {
		name  string
		empty bool
	}{
		{"full_name", strings.TrimSpace(a.FullName) == ""},
		{"email", strings.TrimSpace(a.Email) == ""},
		{"phone", strings.TrimSpace(a.Phone) == ""},
		{"date_of_birth", a.DateOfBirth.IsZero()},
		{"nationality", strings.TrimSpace(a.Nationality) == ""},
		{"passport_number", strings.TrimSpace(a.PassportNumber) == ""},
		{"visa_type", a.VisaType == ""},
		{"entry_type", a.EntryType == ""},
		{"duration", strings.TrimSpace(a.Duration) == ""},
		{"purpose_of_visit", strings.TrimSpace(a.PurposeOfVisit) == ""},
		{"intended_arrival_date", a.IntendedArrivalDate.IsZero()},
		{"submitted_to", strings.TrimSpace(a.SubmittedTo) == ""},
	}
	for _, f := range required {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidApplication, strings.Join(missing, ", "))
	}

	if !a.VisaType.IsValid() {
		return fmt.Errorf("%w: visa type %q is not allowed", ErrInvalidApplication, a.VisaType)
	}
	if !a.EntryType.IsValid() {
		return fmt.Errorf("%w: entry type %q is not allowed", ErrInvalidApplication, a.EntryType)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	if !a.PaymentStatus.IsValid() {
		return fmt.Errorf("%w: payment status %q is not allowed", ErrInvalidApplication, a.PaymentStatus)
	}
	for _, d := range a.Documents {
		if !d.DocumentType.IsValid() {
			return fmt.Errorf("%w: document type %q is not allowed", ErrInvalidApplication, d.DocumentType)
		}
	}
	if a.PassportIssueDate != nil && a.PassportExpiryDate != nil && a.PassportExpiryDate.Before(*a.PassportIssueDate) {
		return fmt.Errorf("%w: passport expiry date is before issue date", ErrInvalidApplication)
	}
	return nil
}

// BeforeSave refuses to persist an application whose status was changed
// without going through ChangeStatus.
func (a *Application) BeforeSave(_ *gorm.DB) error {
	n := len(a.Timeline)
	if n == 0 || a.Timeline[n-1].Status != a.Status {
		return ErrTimelineOutOfSync
	}
	return nil
}
