package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GatewayBill records a payment attempt handed to the gateway, keyed by the
// gateway's bill code. Reconciliation resolves callbacks through this row
// instead of session state, so a late callback still finds its booking.
type GatewayBill struct {
	BaseSimple
	BillCode        string          `db:"bill_code"`
	BookingID       uuid.UUID       `db:"booking_id"`
	RequestedAmount decimal.Decimal `db:"requested_amount"`
	PayerName       string          `db:"payer_name"`
	PayerEmail      string          `db:"payer_email"`
	PayerPhone      string          `db:"payer_phone"`
}
