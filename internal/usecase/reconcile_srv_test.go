package usecase

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"wedding-booking/internal/data/entity"
	"wedding-booking/internal/dto/request"
	"wedding-booking/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newReconcileFixture(store *fakeStore, gw *fakeGateway) ReconcileService {
	repo := store.repository()
	ledger := NewLedgerService(repo, zap.NewNop())
	return NewReconcileService(repo, ledger, gw, zap.NewNop())
}

func successTransaction(bookingID uuid.UUID, billCode, txnID, amount string) gateway.Transaction {
	return gateway.Transaction{
		BillCode:          billCode,
		ExternalReference: bookingID.String(),
		Status:            gateway.TransactionSuccess,
		Amount:            dec(amount),
		TransactionID:     txnID,
		PaidAt:            time.Now(),
	}
}

func TestSyncBillPaymentAppliesExactlyOnce(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	gw.transactions["BILL-1"] = []gateway.Transaction{
		successTransaction(booking.ID, "BILL-1", "TP-100", "3000.00"),
	}
	svc := newReconcileFixture(store, gw)

	first, err := svc.SyncBillPayment(context.Background(), "BILL-1")
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.AlreadyRecorded {
		t.Error("first sync reported already recorded")
	}
	if !store.bookings[booking.ID].PaidAmount.Equal(dec("3000.00")) {
		t.Errorf("paid_amount: got %s, want 3000.00", store.bookings[booking.ID].PaidAmount)
	}

	second, err := svc.SyncBillPayment(context.Background(), "BILL-1")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !second.AlreadyRecorded {
		t.Error("second sync did not report already recorded")
	}
	if len(store.payments) != 1 {
		t.Errorf("payment count: got %d, want 1", len(store.payments))
	}
	if !store.bookings[booking.ID].PaidAmount.Equal(dec("3000.00")) {
		t.Errorf("paid_amount after replay: got %s, want 3000.00", store.bookings[booking.ID].PaidAmount)
	}
	verifyLedgerInvariant(t, store, booking.ID)
}

func TestSyncBillPaymentRecordsOnlinePayment(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	gw.transactions["BILL-2"] = []gateway.Transaction{
		{BillCode: "BILL-2", ExternalReference: booking.ID.String(), Status: gateway.TransactionFailed, Amount: dec("3000.00"), TransactionID: "TP-200"},
		successTransaction(booking.ID, "BILL-2", "TP-201", "3000.00"),
	}
	svc := newReconcileFixture(store, gw)

	result, err := svc.SyncBillPayment(context.Background(), "BILL-2")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.TransactionID != "TP-201" {
		t.Errorf("transaction id: got %s, want TP-201 (the successful one)", result.TransactionID)
	}

	for _, p := range store.payments {
		if p.Method != entity.PaymentMethodOnline {
			t.Errorf("method: got %s, want online", p.Method)
		}
		if p.TransactionID == nil || *p.TransactionID != "TP-201" {
			t.Errorf("transaction id not stored on payment")
		}
	}
}

func TestSyncBillPaymentNoTransactions(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	svc := newReconcileFixture(store, gw)

	_, err := svc.SyncBillPayment(context.Background(), "BILL-EMPTY")
	if !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("got %v, want ErrNoTransactions", err)
	}
}

func TestSyncBillPaymentNoSuccessfulTransaction(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	gw.transactions["BILL-3"] = []gateway.Transaction{
		{BillCode: "BILL-3", ExternalReference: booking.ID.String(), Status: gateway.TransactionPending, Amount: dec("100.00"), TransactionID: "TP-300"},
	}
	svc := newReconcileFixture(store, gw)

	_, err := svc.SyncBillPayment(context.Background(), "BILL-3")
	if !errors.Is(err, ErrNoSuccessfulTransaction) {
		t.Fatalf("got %v, want ErrNoSuccessfulTransaction", err)
	}
	if len(store.payments) != 0 {
		t.Errorf("payment count: got %d, want 0", len(store.payments))
	}
}

func TestSyncBillPaymentBookingNotFound(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	gw.transactions["BILL-4"] = []gateway.Transaction{
		successTransaction(uuid.New(), "BILL-4", "TP-400", "100.00"),
	}
	svc := newReconcileFixture(store, gw)

	_, err := svc.SyncBillPayment(context.Background(), "BILL-4")
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("got %v, want ErrBookingNotFound", err)
	}
}

// Resolution prefers the durable bill record over the echoed reference.
func TestSyncBillPaymentResolvesViaBillRecord(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	store.bills["BILL-5"] = &entity.GatewayBill{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		BillCode:   "BILL-5",
		BookingID:  booking.ID,
	}
	gw := newFakeGateway()
	txn := successTransaction(booking.ID, "BILL-5", "TP-500", "1000.00")
	txn.ExternalReference = "not-a-uuid" // record wins even when the echo is garbage
	gw.transactions["BILL-5"] = []gateway.Transaction{txn}
	svc := newReconcileFixture(store, gw)

	if _, err := svc.SyncBillPayment(context.Background(), "BILL-5"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !store.bookings[booking.ID].PaidAmount.Equal(dec("1000.00")) {
		t.Errorf("paid_amount: got %s, want 1000.00", store.bookings[booking.ID].PaidAmount)
	}
}

func TestInitiateBillPaymentStoresDurableRecord(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	svc := newReconcileFixture(store, gw)

	bill, err := svc.InitiateBillPayment(context.Background(), booking.ID.String(), &request.InitiateBillRequest{
		Amount:     dec("1500.00"),
		PayerName:  "Aina Rahman",
		PayerEmail: "aina@example.com",
		PayerPhone: "0123456789",
	})
	if err != nil {
		t.Fatalf("InitiateBillPayment: %v", err)
	}
	if bill.PaymentURL == "" {
		t.Error("payment URL missing")
	}

	record := store.bills[bill.BillCode]
	if record == nil {
		t.Fatal("gateway bill record not stored")
	}
	if record.BookingID != booking.ID {
		t.Errorf("record booking: got %s, want %s", record.BookingID, booking.ID)
	}
	if len(store.payments) != 0 {
		t.Errorf("payment rows created before gateway confirmation: %d", len(store.payments))
	}
}

func TestInitiateBillPaymentRejectsOverBalance(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("1000.00"))
	gw := newFakeGateway()
	svc := newReconcileFixture(store, gw)

	_, err := svc.InitiateBillPayment(context.Background(), booking.ID.String(), &request.InitiateBillRequest{
		Amount:     dec("1500.00"),
		PayerName:  "Aina Rahman",
		PayerEmail: "aina@example.com",
		PayerPhone: "0123456789",
	})
	if !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("got %v, want ErrExceedsBalance", err)
	}
	if gw.createCalls != 0 {
		t.Errorf("gateway called %d times for a rejected amount", gw.createCalls)
	}
}

func TestInitiateBillPaymentGatewayErrorLeavesNothing(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("1000.00"))
	gw := newFakeGateway()
	gw.createErr = &gateway.Error{Kind: gateway.KindUnavailable, Retryable: true, Op: "create_bill"}
	svc := newReconcileFixture(store, gw)

	_, err := svc.InitiateBillPayment(context.Background(), booking.ID.String(), &request.InitiateBillRequest{
		Amount:     dec("500.00"),
		PayerName:  "Aina Rahman",
		PayerEmail: "aina@example.com",
		PayerPhone: "0123456789",
	})
	if !gateway.IsRetryable(err) {
		t.Fatalf("got %v, want retryable gateway error", err)
	}
	if len(store.bills) != 0 {
		t.Errorf("bill record persisted despite gateway failure")
	}
}

func TestHandleCallbackDropsBadSignature(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	gw.verifyOK = false
	gw.transactions["BILL-6"] = []gateway.Transaction{
		successTransaction(booking.ID, "BILL-6", "TP-600", "1000.00"),
	}
	svc := newReconcileFixture(store, gw)

	payload := url.Values{}
	payload.Set("billcode", "BILL-6")
	payload.Set("signature", "forged")

	_, err := svc.HandleCallback(context.Background(), payload)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
	if gw.fetchCalls != 0 {
		t.Errorf("gateway queried %d times for an unverified callback", gw.fetchCalls)
	}
	if len(store.payments) != 0 {
		t.Errorf("payment rows created from unverified callback: %d", len(store.payments))
	}
}

func TestHandleCallbackAppliesPayment(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	gw := newFakeGateway()
	gw.transactions["BILL-7"] = []gateway.Transaction{
		successTransaction(booking.ID, "BILL-7", "TP-700", "2500.00"),
	}
	svc := newReconcileFixture(store, gw)

	payload := url.Values{}
	payload.Set("billcode", "BILL-7")
	payload.Set("signature", "valid")

	result, err := svc.HandleCallback(context.Background(), payload)
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if result.AlreadyRecorded {
		t.Error("fresh callback reported already recorded")
	}
	if !store.bookings[booking.ID].PaidAmount.Equal(dec("2500.00")) {
		t.Errorf("paid_amount: got %s, want 2500.00", store.bookings[booking.ID].PaidAmount)
	}
	verifyLedgerInvariant(t, store, booking.ID)
}

// Full walkthrough: manual deposit, gateway settles the rest, replayed sync
// is a no-op.
func TestManualThenGatewayScenario(t *testing.T) {
	store := newFakeStore()
	booking := store.addBooking(dec("5000.00"))
	repo := store.repository()
	ledger := NewLedgerService(repo, zap.NewNop())
	gw := newFakeGateway()
	gw.transactions["BILL-99"] = []gateway.Transaction{
		successTransaction(booking.ID, "BILL-99", "TP-990", "3000.00"),
	}
	reconcile := NewReconcileService(repo, ledger, gw, zap.NewNop())

	if _, err := ledger.ApplyManualPayment(context.Background(), booking.ID.String(), &request.ManualPaymentRequest{
		Amount: dec("2000.00"),
		Method: "cash",
	}); err != nil {
		t.Fatalf("manual payment: %v", err)
	}

	got := store.bookings[booking.ID]
	if !got.PaidAmount.Equal(dec("2000.00")) || got.PaymentStatus != entity.BookingPaymentPartial {
		t.Fatalf("after manual payment: paid=%s status=%s, want 2000.00/partial", got.PaidAmount, got.PaymentStatus)
	}

	if _, err := reconcile.SyncBillPayment(context.Background(), "BILL-99"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	got = store.bookings[booking.ID]
	if !got.PaidAmount.Equal(dec("5000.00")) || got.PaymentStatus != entity.BookingPaymentPaid {
		t.Fatalf("after sync: paid=%s status=%s, want 5000.00/paid", got.PaidAmount, got.PaymentStatus)
	}

	// Replay changes nothing.
	result, err := reconcile.SyncBillPayment(context.Background(), "BILL-99")
	if err != nil {
		t.Fatalf("replayed sync: %v", err)
	}
	if !result.AlreadyRecorded {
		t.Error("replayed sync did not report already recorded")
	}
	got = store.bookings[booking.ID]
	if !got.PaidAmount.Equal(dec("5000.00")) || len(store.payments) != 2 {
		t.Fatalf("replay mutated state: paid=%s payments=%d", got.PaidAmount, len(store.payments))
	}
	verifyLedgerInvariant(t, store, booking.ID)
}
