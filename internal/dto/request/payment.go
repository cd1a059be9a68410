package request

import "github.com/shopspring/decimal"

type ManualPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Method        string          `json:"method" validate:"required,oneof=cash card bank_transfer online"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	PaymentDate   string          `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

// InitiateBillRequest is the customer partial-payment flow: hand an amount to
// the gateway, get a payment URL back. No payment row exists until the
// gateway confirms.
type InitiateBillRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	PayerName  string          `json:"payer_name" validate:"required,min=2,max=150"`
	PayerEmail string          `json:"payer_email" validate:"required,email"`
	PayerPhone string          `json:"payer_phone" validate:"required,min=7,max=20"`
}
