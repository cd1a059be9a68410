package usecase

import (
	"bytes"
	"context"
	"fmt"

	"wedding-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

// BuildReceipt renders a PDF receipt for a completed payment.
func (s *ledgerService) BuildReceipt(ctx context.Context, paymentID string) ([]byte, error) {
	paymentUUID, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format %s: %w", paymentID, err)
	}

	payment, err := s.repo.Payment.FindByID(ctx, paymentUUID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != entity.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment is %s", ErrReceiptUnavailable, payment.Status)
	}

	booking, err := s.repo.Booking.FindByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Payment Receipt")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	row("Receipt No.", payment.ID.String())
	row("Booking Reference", booking.Reference)
	row("Client", booking.ClientName)
	row("Event Date", booking.EventDate.Format("2 January 2006"))
	row("Payment Date", payment.PaymentDate.Format("2 January 2006"))
	row("Method", string(payment.Method))
	if payment.TransactionID != nil {
		row("Transaction ID", *payment.TransactionID)
	}
	pdf.Ln(4)

	row("Amount Paid", payment.Amount.StringFixed(2))
	row("Total Paid to Date", booking.PaidAmount.StringFixed(2))
	row("Booking Total", booking.TotalAmount.StringFixed(2))
	row("Balance", booking.RemainingAmount().StringFixed(2))

	if payment.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+payment.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt for payment %s: %w", paymentID, err)
	}
	return buf.Bytes(), nil
}
