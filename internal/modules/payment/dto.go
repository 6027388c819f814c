package payment

import "github.com/shopspring/decimal"

// RecordRequest is a payment confirmed by staff. Amount defaults to the
// application's fee.
type RecordRequest struct {
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	PaymentMethod string           `json:"payment_method" validate:"required,payment_method"`
	CardLast4     string           `json:"card_last4,omitempty" validate:"omitempty,len=4,numeric"`
	CardBrand     string           `json:"card_brand,omitempty"`
	PayerEmail    string           `json:"payer_email,omitempty" validate:"omitempty,email"`
	ReceiptURL    string           `json:"receipt_url,omitempty" validate:"omitempty,url"`
}
