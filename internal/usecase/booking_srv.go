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

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) error
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %s: %w", req.EventDate, err)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:     utils.GenerateBookingReference(),
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		EventDate:     eventDate,
		Venue:         req.Venue,
		PackageName:   req.PackageName,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    decimal.Zero,
		PaymentStatus: entity.BookingPaymentPending,
		Status:        entity.BookingStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("total_amount", booking.TotalAmount.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
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

	resp := response.BookingToResponse(booking)

	payments, err := s.repo.Payment.FindByBookingID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}
	resp.Payments = make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		resp.Payments[i] = response.PaymentToResponse(p)
	}

	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.List(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.Count(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		responses[i] = response.BookingToResponse(b)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

// UpdateBooking edits client details and total_amount. Lowering the total
// below paid_amount is allowed; payment_status then reports paid even though
// the sums disagree, which is a reporting artifact, not an error.
func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %s: %w", req.EventDate, err)
	}

	var updated *entity.Booking
	err = s.repo.WithinTx(ctx, func(r *repository.Repository) error {
		booking, err := r.Booking.FindByIDForUpdate(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		booking.ClientName = req.ClientName
		booking.ClientEmail = req.ClientEmail
		booking.ClientPhone = req.ClientPhone
		booking.EventDate = eventDate
		booking.Venue = req.Venue
		booking.PackageName = req.PackageName
		booking.TotalAmount = req.TotalAmount

		if err := r.Booking.Update(ctx, booking); err != nil {
			return err
		}

		// total_amount moved, so the derived status may move with it.
		status := derivePaymentStatus(booking.PaidAmount, booking.TotalAmount)
		if status != booking.PaymentStatus {
			if err := r.Booking.UpdateFinancials(ctx, booking.ID, booking.PaidAmount, status); err != nil {
				return err
			}
			booking.PaymentStatus = status
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking updated",
		zap.String("booking_id", bookingID),
		zap.String("total_amount", req.TotalAmount.String()),
	)

	resp := response.BookingToResponse(updated)
	return &resp, nil
}

// UpdateBookingStatus moves the booking lifecycle. Independent of the ledger:
// cancelling a booking does not reverse its payments.
func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID string, req *request.UpdateBookingStatusRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrBookingNotFound
	}

	if err := s.repo.Booking.UpdateStatus(ctx, bookingUUID, entity.BookingStatus(req.Status)); err != nil {
		return err
	}

	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("status", req.Status),
	)
	return nil
}
