package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodDebitCard    PaymentMethod = "Debit Card"
	MethodPayPal       PaymentMethod = "PayPal"
	MethodStripe       PaymentMethod = "Stripe"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodStripe, MethodBankTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "Pending"
	TransactionProcessing TransactionStatus = "Processing"
	TransactionCompleted  TransactionStatus = "Completed"
	TransactionFailed     TransactionStatus = "Failed"
	TransactionRefunded   TransactionStatus = "Refunded"
)

type Payment struct {
	ID            int64             `gorm:"primaryKey" json:"id"`
	ApplicationID int64             `gorm:"index;not null" json:"application_id"`
	UserID        int64             `gorm:"index;not null" json:"user_id"`
	Amount        decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string            `gorm:"size:3;not null;default:USD" json:"currency"`
	Method        PaymentMethod     `gorm:"size:32;not null" json:"payment_method"`
	TransactionID string            `gorm:"size:64;uniqueIndex;not null" json:"transaction_id"`
	Status        TransactionStatus `gorm:"size:16;not null" json:"status"`
	CardLast4     string            `json:"card_last4,omitempty"`
	CardBrand     string            `json:"card_brand,omitempty"`
	PayerEmail    string            `json:"payer_email,omitempty"`
	ReceiptURL    string            `json:"receipt_url,omitempty"`
	RefundReason  string            `json:"refund_reason,omitempty"`
	RefundedAt    *time.Time        `json:"refunded_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
