package response

import (
	"time"

	"wedding-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        entity.PaymentMethod `json:"method"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	PaymentDate   string               `json:"payment_date"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		BookingID:     payment.BookingID.String(),
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		PaymentDate:   payment.PaymentDate.Format("2006-01-02"),
		Notes:         payment.Notes,
		CreatedAt:     payment.CreatedAt,
	}
}

type BillResponse struct {
	BillCode   string          `json:"bill_code"`
	PaymentURL string          `json:"payment_url"`
	Amount     decimal.Decimal `json:"amount"`
}

// SyncResultResponse reports what a reconciliation run did. AlreadyRecorded
// means the gateway transaction was applied on an earlier run and this call
// was a no-op.
type SyncResultResponse struct {
	BillCode        string          `json:"bill_code"`
	TransactionID   string          `json:"transaction_id"`
	Amount          decimal.Decimal `json:"amount"`
	AlreadyRecorded bool            `json:"already_recorded"`
	PaymentID       string          `json:"payment_id,omitempty"`
}
