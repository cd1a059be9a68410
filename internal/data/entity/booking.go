package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingPaymentStatus is derived from the completed payments of a booking.
// Only the ledger service writes it.
type BookingPaymentStatus string

const (
	BookingPaymentPending BookingPaymentStatus = "pending"
	BookingPaymentPartial BookingPaymentStatus = "partial"
	BookingPaymentPaid    BookingPaymentStatus = "paid"
)

type Booking struct {
	Base
	Reference     string               `db:"reference"`
	ClientName    string               `db:"client_name"`
	ClientEmail   string               `db:"client_email"`
	ClientPhone   string               `db:"client_phone"`
	EventDate     time.Time            `db:"event_date"`
	Venue         string               `db:"venue"`
	PackageName   string               `db:"package_name"`
	TotalAmount   decimal.Decimal      `db:"total_amount"`
	PaidAmount    decimal.Decimal      `db:"paid_amount"`
	PaymentStatus BookingPaymentStatus `db:"payment_status"`
	Status        BookingStatus        `db:"status"`
}

// RemainingAmount is the balance still owed. Can go negative after an admin
// lowers total_amount below what was already collected.
func (b *Booking) RemainingAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}
