package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
)

type Payment struct {
	Base
	BookingID     uuid.UUID       `db:"booking_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        PaymentMethod   `db:"method"`
	Status        PaymentStatus   `db:"status"`
	TransactionID *string         `db:"transaction_id"`
	PaymentDate   time.Time       `db:"payment_date"`
	Notes         string          `db:"notes"`
}
