package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"wedding-booking/internal/data/entity"
	"wedding-booking/internal/data/repository"
	"wedding-booking/internal/dto/request"
	"wedding-booking/internal/dto/response"
	"wedding-booking/internal/gateway"
	"wedding-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillGateway is the collaborator contract the reconciliation service needs
// from the payment gateway.
type BillGateway interface {
	CreateBill(ctx context.Context, req gateway.CreateBillRequest) (*gateway.Bill, error)
	FetchBillTransactions(ctx context.Context, billCode string) ([]gateway.Transaction, error)
	VerifyCallback(payload url.Values, signature string) bool
}

// ReconcileService matches gateway-reported transactions to internal payment
// records and applies each exactly once, regardless of how many times the
// gateway retries a callback or staff click sync.
type ReconcileService interface {
	InitiateBillPayment(ctx context.Context, bookingID string, req *request.InitiateBillRequest) (*response.BillResponse, error)
	SyncBillPayment(ctx context.Context, billCode string) (*response.SyncResultResponse, error)
	HandleCallback(ctx context.Context, payload url.Values) (*response.SyncResultResponse, error)
}

type reconcileService struct {
	repo    *repository.Repository
	ledger  LedgerService
	gateway BillGateway
	log     *zap.Logger
}

func NewReconcileService(repo *repository.Repository, ledger LedgerService, gw BillGateway, log *zap.Logger) ReconcileService {
	return &reconcileService{
		repo:    repo,
		ledger:  ledger,
		gateway: gw,
		log:     log.With(zap.String("service", "reconcile")),
	}
}

func (s *reconcileService) InitiateBillPayment(ctx context.Context, bookingID string, req *request.InitiateBillRequest) (*response.BillResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Initiate bill validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	remaining := booking.RemainingAmount()
	if req.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: amount %s, remaining %s",
			ErrExceedsBalance, req.Amount.String(), remaining.String())
	}

	// Gateway first; nothing is persisted if the call fails or times out.
	bill, err := s.gateway.CreateBill(ctx, gateway.CreateBillRequest{
		BookingID:   booking.ID,
		Amount:      req.Amount,
		Description: fmt.Sprintf("Payment for booking %s", booking.Reference),
		PayerName:   req.PayerName,
		PayerEmail:  req.PayerEmail,
		PayerPhone:  req.PayerPhone,
	})
	if err != nil {
		return nil, err
	}

	// Durable correlation record. A callback arriving days later still
	// resolves the booking through this row.
	record := &entity.GatewayBill{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BillCode:        bill.BillCode,
		BookingID:       booking.ID,
		RequestedAmount: req.Amount,
		PayerName:       req.PayerName,
		PayerEmail:      req.PayerEmail,
		PayerPhone:      req.PayerPhone,
	}
	if err := s.repo.GatewayBill.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("Gateway bill initiated",
		zap.String("bill_code", bill.BillCode),
		zap.String("booking_id", bookingID),
		zap.String("amount", req.Amount.String()),
	)

	return &response.BillResponse{
		BillCode:   bill.BillCode,
		PaymentURL: bill.PaymentURL,
		Amount:     req.Amount,
	}, nil
}

func (s *reconcileService) SyncBillPayment(ctx context.Context, billCode string) (*response.SyncResultResponse, error) {
	transactions, err := s.gateway.FetchBillTransactions(ctx, billCode)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTransactions, billCode)
	}

	var success *gateway.Transaction
	for i := range transactions {
		if transactions[i].Status == gateway.TransactionSuccess {
			success = &transactions[i]
			break
		}
	}
	if success == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuccessfulTransaction, billCode)
	}

	bookingID, err := s.resolveBooking(ctx, billCode, success.ExternalReference)
	if err != nil {
		return nil, err
	}

	// Fast idempotency path: the transaction was applied on a previous run.
	existing, err := s.repo.Payment.FindByTransactionID(ctx, success.TransactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("Gateway transaction already recorded",
			zap.String("bill_code", billCode),
			zap.String("transaction_id", success.TransactionID),
		)
		return &response.SyncResultResponse{
			BillCode:        billCode,
			TransactionID:   success.TransactionID,
			Amount:          success.Amount,
			AlreadyRecorded: true,
			PaymentID:       existing.ID.String(),
		}, nil
	}

	paymentDate := success.PaidAt
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment, err := s.ledger.ApplyManualPayment(ctx, bookingID.String(), &request.ManualPaymentRequest{
		Amount:        success.Amount,
		Method:        string(entity.PaymentMethodOnline),
		TransactionID: &success.TransactionID,
		PaymentDate:   paymentDate.Format("2006-01-02"),
		Notes:         fmt.Sprintf("Gateway bill %s", billCode),
	})
	if errors.Is(err, ErrDuplicateTransaction) {
		// Lost the race against a concurrent sync of the same transaction;
		// the payment exists, so this run is a no-op success.
		return &response.SyncResultResponse{
			BillCode:        billCode,
			TransactionID:   success.TransactionID,
			Amount:          success.Amount,
			AlreadyRecorded: true,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Gateway transaction reconciled",
		zap.String("bill_code", billCode),
		zap.String("transaction_id", success.TransactionID),
		zap.String("booking_id", bookingID.String()),
		zap.String("amount", success.Amount.String()),
	)

	return &response.SyncResultResponse{
		BillCode:      billCode,
		TransactionID: success.TransactionID,
		Amount:        success.Amount,
		PaymentID:     payment.ID,
	}, nil
}

func (s *reconcileService) HandleCallback(ctx context.Context, payload url.Values) (*response.SyncResultResponse, error) {
	signature := payload.Get("signature")
	if !s.gateway.VerifyCallback(payload, signature) {
		// Logged and dropped; no detail leaves the service.
		s.log.Warn("Callback rejected: bad signature",
			zap.String("bill_code", payload.Get("billcode")),
		)
		return nil, ErrInvalidSignature
	}

	billCode := payload.Get("billcode")
	if billCode == "" {
		return nil, fmt.Errorf("%w: missing bill code", ErrNoTransactions)
	}

	return s.SyncBillPayment(ctx, billCode)
}

// resolveBooking maps a gateway transaction back to its booking: the durable
// bill record first, then the external reference the gateway echoes back.
func (s *reconcileService) resolveBooking(ctx context.Context, billCode, externalRef string) (uuid.UUID, error) {
	bill, err := s.repo.GatewayBill.FindByBillCode(ctx, billCode)
	if err != nil {
		return uuid.Nil, err
	}

	bookingID := uuid.Nil
	if bill != nil {
		bookingID = bill.BookingID
	} else if parsed, err := uuid.Parse(externalRef); err == nil {
		bookingID = parsed
	}

	if bookingID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bill %s, reference %q", ErrBookingNotFound, billCode, externalRef)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return uuid.Nil, err
	}
	if booking == nil {
		return uuid.Nil, fmt.Errorf("%w: bill %s", ErrBookingNotFound, billCode)
	}

	return booking.ID, nil
}
