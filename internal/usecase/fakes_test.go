package usecase

import (
	"context"
	"net/url"
	"sync"
	"time"

	"wedding-booking/internal/data/entity"
	"wedding-booking/internal/data/repository"
	"wedding-booking/internal/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. Its
// WithinTx holds one mutex for the whole callback, which models the
// serialization the booking row lock provides in production.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
	payments map[uuid.UUID]*entity.Payment
	bills    map[string]*entity.GatewayBill
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[uuid.UUID]*entity.Booking),
		payments: make(map[uuid.UUID]*entity.Payment),
		bills:    make(map[string]*entity.GatewayBill),
	}
}

func (s *fakeStore) repository() *repository.Repository {
	r := &repository.Repository{
		Booking:     &fakeBookingRepo{s},
		Payment:     &fakePaymentRepo{s},
		GatewayBill: &fakeBillRepo{s},
	}
	r.WithinTx = func(ctx context.Context, fn func(r *repository.Repository) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(r)
	}
	return r
}

func (s *fakeStore) addBooking(total decimal.Decimal) *entity.Booking {
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Reference:     "WED-TEST-" + uuid.NewString()[:8],
		ClientName:    "Aina Rahman",
		ClientEmail:   "aina@example.com",
		ClientPhone:   "0123456789",
		EventDate:     time.Now().AddDate(0, 6, 0),
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		PaymentStatus: entity.BookingPaymentPending,
		Status:        entity.BookingStatusConfirmed,
	}
	s.bookings[booking.ID] = booking
	return booking
}

func (s *fakeStore) addPayment(bookingID uuid.UUID, amount decimal.Decimal, status entity.PaymentStatus, transactionID *string) *entity.Payment {
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		BookingID:     bookingID,
		Amount:        amount,
		Method:        entity.PaymentMethodCash,
		Status:        status,
		TransactionID: transactionID,
		PaymentDate:   time.Now(),
	}
	s.payments[payment.ID] = payment
	return payment
}

type fakeBookingRepo struct{ s *fakeStore }

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	cp := *booking
	r.s.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *booking
	return &cp, nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	for _, booking := range r.s.bookings {
		if booking.Reference == reference {
			cp := *booking
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) List(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for _, booking := range r.s.bookings {
		cp := *booking
		bookings = append(bookings, &cp)
	}
	return bookings, nil
}

func (r *fakeBookingRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.s.bookings)), nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	existing, ok := r.s.bookings[booking.ID]
	if !ok {
		return nil
	}
	existing.ClientName = booking.ClientName
	existing.ClientEmail = booking.ClientEmail
	existing.ClientPhone = booking.ClientPhone
	existing.EventDate = booking.EventDate
	existing.Venue = booking.Venue
	existing.PackageName = booking.PackageName
	existing.TotalAmount = booking.TotalAmount
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	if booking, ok := r.s.bookings[bookingID]; ok {
		booking.Status = status
	}
	return nil
}

func (r *fakeBookingRepo) UpdateFinancials(ctx context.Context, bookingID uuid.UUID, paidAmount decimal.Decimal, status entity.BookingPaymentStatus) error {
	if booking, ok := r.s.bookings[bookingID]; ok {
		booking.PaidAmount = paidAmount
		booking.PaymentStatus = status
	}
	return nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	cp := *payment
	r.s.payments[payment.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *payment
	return &cp, nil
}

func (r *fakePaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	var payments []*entity.Payment
	for _, payment := range r.s.payments {
		if payment.BookingID == bookingID {
			cp := *payment
			payments = append(payments, &cp)
		}
	}
	return payments, nil
}

func (r *fakePaymentRepo) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	for _, payment := range r.s.payments {
		if payment.TransactionID != nil && *payment.TransactionID == transactionID {
			cp := *payment
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status entity.PaymentStatus) error {
	if payment, ok := r.s.payments[paymentID]; ok {
		payment.Status = status
	}
	return nil
}

func (r *fakePaymentRepo) SumCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, payment := range r.s.payments {
		if payment.BookingID == bookingID && payment.Status == entity.PaymentStatusCompleted {
			sum = sum.Add(payment.Amount)
		}
	}
	return sum, nil
}

type fakeBillRepo struct{ s *fakeStore }

func (r *fakeBillRepo) Create(ctx context.Context, bill *entity.GatewayBill) error {
	cp := *bill
	r.s.bills[bill.BillCode] = &cp
	return nil
}

func (r *fakeBillRepo) FindByBillCode(ctx context.Context, billCode string) (*entity.GatewayBill, error) {
	bill, ok := r.s.bills[billCode]
	if !ok {
		return nil, nil
	}
	cp := *bill
	return &cp, nil
}

// fakeGateway scripts gateway responses per bill code.
type fakeGateway struct {
	transactions map[string][]gateway.Transaction
	fetchErr     error
	createErr    error
	verifyOK     bool

	createCalls int
	fetchCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		transactions: make(map[string][]gateway.Transaction),
		verifyOK:     true,
	}
}

func (g *fakeGateway) CreateBill(ctx context.Context, req gateway.CreateBillRequest) (*gateway.Bill, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	code := "bill-" + uuid.NewString()[:8]
	return &gateway.Bill{BillCode: code, PaymentURL: "https://gateway.test/" + code}, nil
}

func (g *fakeGateway) FetchBillTransactions(ctx context.Context, billCode string) ([]gateway.Transaction, error) {
	g.fetchCalls++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.transactions[billCode], nil
}

func (g *fakeGateway) VerifyCallback(payload url.Values, signature string) bool {
	return g.verifyOK
}
