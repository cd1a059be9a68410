package usecase

import (
	"context"
	"fmt"
	"time"

	"wedding-booking/internal/data/entity"
	"wedding-booking/internal/data/repository"
	"wedding-booking/internal/dto/request"
	"wedding-booking/internal/dto/response"
	"wedding-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService guards the financial invariants of a booking:
//   - paid_amount always equals the sum of its completed payments
//   - payment_status is derived from paid_amount vs total_amount
//   - no new payment pushes paid_amount past total_amount
//   - at most one completed payment per gateway transaction id
//
// Every mutation runs inside one database transaction with the booking row
// locked, so two requests against the same booking serialize.
type LedgerService interface {
	ApplyManualPayment(ctx context.Context, bookingID string, req *request.ManualPaymentRequest) (*response.PaymentResponse, error)
	SetPaymentStatus(ctx context.Context, paymentID string, req *request.UpdatePaymentStatusRequest) (*response.PaymentResponse, error)
	ListBookingPayments(ctx context.Context, bookingID string) ([]response.PaymentResponse, error)
	BuildReceipt(ctx context.Context, paymentID string) ([]byte, error)
}

type ledgerService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewLedgerService(repo *repository.Repository, log *zap.Logger) LedgerService {
	return &ledgerService{
		repo: repo,
		log:  log.With(zap.String("service", "ledger")),
	}
}

// allowed payment status transitions. Reopening a settled payment to pending
// is rejected; reversals go through refunded so the trail survives.
var allowedTransitions = map[entity.PaymentStatus][]entity.PaymentStatus{
	entity.PaymentStatusPending:   {entity.PaymentStatusCompleted},
	entity.PaymentStatusCompleted: {entity.PaymentStatusRefunded, entity.PaymentStatusFailed},
}

func transitionAllowed(from, to entity.PaymentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// derivePaymentStatus applies the three-way rule. paid above total is legal
// after an admin lowers total_amount; it still reports paid.
func derivePaymentStatus(paid, total decimal.Decimal) entity.BookingPaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return entity.BookingPaymentPending
	case paid.GreaterThanOrEqual(total):
		return entity.BookingPaymentPaid
	default:
		return entity.BookingPaymentPartial
	}
}

func (s *ledgerService) ApplyManualPayment(ctx context.Context, bookingID string, req *request.ManualPaymentRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Apply payment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("invalid payment date %s: %w", req.PaymentDate, err)
		}
	}

	var payment *entity.Payment
	err = s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		remaining := booking.RemainingAmount()
		if req.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: amount %s, remaining %s",
				ErrExceedsBalance, req.Amount.String(), remaining.String())
		}

		// Gateway retries may race two syncs of the same transaction into
		// this point; the check runs under the booking lock so only the
		// first one lands.
		if req.TransactionID != nil && *req.TransactionID != "" {
			existing, err := r.Payment.FindByTransactionID(ctx, *req.TransactionID)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s", ErrDuplicateTransaction, *req.TransactionID)
			}
		}

		now := time.Now()
		payment = &entity.Payment{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID:     booking.ID,
			Amount:        req.Amount,
			Method:        entity.PaymentMethod(req.Method),
			Status:        entity.PaymentStatusCompleted,
			TransactionID: req.TransactionID,
			PaymentDate:   paymentDate,
			Notes:         req.Notes,
		}

		if err := r.Payment.Create(ctx, payment); err != nil {
			return err
		}

		paid := booking.PaidAmount.Add(req.Amount)
		return r.Booking.UpdateFinancials(ctx, booking.ID, paid, derivePaymentStatus(paid, booking.TotalAmount))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", bookingID),
		zap.String("amount", req.Amount.String()),
		zap.String("method", req.Method),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *ledgerService) SetPaymentStatus(ctx context.Context, paymentID string, req *request.UpdatePaymentStatusRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Set payment status validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	paymentUUID, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format %s: %w", paymentID, err)
	}

	newStatus := entity.PaymentStatus(req.Status)

	var payment *entity.Payment
	err = s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		p, err := r.Payment.FindByID(ctx, paymentUUID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPaymentNotFound
		}

		booking, err := r.Booking.FindByIDForUpdate(ctx, p.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		// Re-read under the booking lock; a concurrent transition may have
		// landed between the first read and acquiring the lock.
		p, err = r.Payment.FindByID(ctx, paymentUUID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPaymentNotFound
		}

		if !transitionAllowed(p.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, newStatus)
		}

		if err := r.Payment.UpdateStatus(ctx, p.ID, newStatus); err != nil {
			return err
		}
		p.Status = newStatus
		payment = p

		// Full recompute from the completed payments, not an incremental
		// delta. Idempotent and self-healing against prior drift.
		paid, err := r.Payment.SumCompletedByBookingID(ctx, p.BookingID)
		if err != nil {
			return err
		}

		if paid.GreaterThan(booking.TotalAmount) {
			s.log.Warn("Paid amount exceeds booking total",
				zap.String("booking_id", booking.ID.String()),
				zap.String("paid_amount", paid.String()),
				zap.String("total_amount", booking.TotalAmount.String()),
			)
		}

		return r.Booking.UpdateFinancials(ctx, booking.ID, paid, derivePaymentStatus(paid, booking.TotalAmount))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Payment status changed",
		zap.String("payment_id", paymentID),
		zap.String("status", req.Status),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *ledgerService) ListBookingPayments(ctx context.Context, bookingID string) ([]response.PaymentResponse, error) {
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}

	responses := make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = response.PaymentToResponse(p)
	}
	return responses, nil
}
