package response

import (
	"time"

	"wedding-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID            string                      `json:"id"`
	Reference     string                      `json:"reference"`
	ClientName    string                      `json:"client_name"`
	ClientEmail   string                      `json:"client_email"`
	ClientPhone   string                      `json:"client_phone"`
	EventDate     string                      `json:"event_date"`
	Venue         string                      `json:"venue,omitempty"`
	PackageName   string                      `json:"package_name,omitempty"`
	TotalAmount   decimal.Decimal             `json:"total_amount"`
	PaidAmount    decimal.Decimal             `json:"paid_amount"`
	Remaining     decimal.Decimal             `json:"remaining_amount"`
	PaymentStatus entity.BookingPaymentStatus `json:"payment_status"`
	Status        entity.BookingStatus        `json:"status"`
	Payments      []PaymentResponse           `json:"payments,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            booking.ID.String(),
		Reference:     booking.Reference,
		ClientName:    booking.ClientName,
		ClientEmail:   booking.ClientEmail,
		ClientPhone:   booking.ClientPhone,
		EventDate:     booking.EventDate.Format("2006-01-02"),
		Venue:         booking.Venue,
		PackageName:   booking.PackageName,
		TotalAmount:   booking.TotalAmount,
		PaidAmount:    booking.PaidAmount,
		Remaining:     booking.RemainingAmount(),
		PaymentStatus: booking.PaymentStatus,
		Status:        booking.Status,
		CreatedAt:     booking.CreatedAt,
	}
}
