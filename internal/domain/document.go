package domain

import "time"

type DocumentType string

const (
	DocPassportPhoto    DocumentType = "Passport Photo"
	DocPassportCopy     DocumentType = "Passport Copy"
	DocFlightBooking    DocumentType = "Flight Booking"
	DocHotelReservation DocumentType = "Hotel Reservation"
	DocBankStatement    DocumentType = "Bank Statement"
	DocOther            DocumentType = "Other"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocPassportPhoto, DocPassportCopy, DocFlightBooking, DocHotelReservation, DocBankStatement, DocOther:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "Pending"
	DocumentUploaded DocumentStatus = "Uploaded"
	DocumentVerified DocumentStatus = "Verified"
	DocumentRejected DocumentStatus = "Rejected"
)

// Document is a file attached to an application. FilePath is the storage key,
// not a public URL.
type Document struct {
	ID           string         `json:"id"`
	DocumentType DocumentType   `json:"document_type"`
	FileName     string         `json:"file_name"`
	FilePath     string         `json:"file_path"`
	ContentType  string         `json:"content_type,omitempty"`
	Size         int64          `json:"size,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	Status       DocumentStatus `json:"status"`
}
