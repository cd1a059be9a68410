package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"wedding-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	return NewClient(utils.GatewayConfig{
		BaseURL:      baseURL,
		SecretKey:    "test-secret",
		CategoryCode: "cat1",
		CallbackURL:  "https://app.test/api/gateway/callback",
		ReturnURL:    "https://app.test/payment/done",
		Timeout:      5 * time.Second,
	}, zap.NewNop())
}

func TestCreateBillSendsAmountInCents(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Write([]byte(`[{"BillCode":"abc123"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	bookingID := uuid.New()

	bill, err := client.CreateBill(context.Background(), CreateBillRequest{
		BookingID:  bookingID,
		Amount:     decimal.RequireFromString("300.00"),
		PayerName:  "Aina Rahman",
		PayerEmail: "aina@example.com",
		PayerPhone: "0123456789",
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	if bill.BillCode != "abc123" {
		t.Errorf("bill code: got %s, want abc123", bill.BillCode)
	}
	if !strings.HasSuffix(bill.PaymentURL, "/abc123") {
		t.Errorf("payment URL: got %s, want suffix /abc123", bill.PaymentURL)
	}
	if got := gotForm.Get("billAmount"); got != "30000" {
		t.Errorf("billAmount: got %s, want 30000 (cents)", got)
	}
	if got := gotForm.Get("billExternalReferenceNo"); got != bookingID.String() {
		t.Errorf("billExternalReferenceNo: got %s, want %s", got, bookingID)
	}
	if got := gotForm.Get("userSecretKey"); got != "test-secret" {
		t.Errorf("userSecretKey: got %s", got)
	}
}

func TestCreateBillRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad category", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateBill(context.Background(), CreateBillRequest{
		BookingID: uuid.New(),
		Amount:    decimal.RequireFromString("100.00"),
	})

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("got %T, want *gateway.Error", err)
	}
	if gerr.Kind != KindRejected {
		t.Errorf("kind: got %s, want %s", gerr.Kind, KindRejected)
	}
	if IsRetryable(err) {
		t.Error("rejected bill reported as retryable")
	}
}

func TestCreateBillUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestClient(server.URL).CreateBill(context.Background(), CreateBillRequest{
		BookingID: uuid.New(),
		Amount:    decimal.RequireFromString("100.00"),
	})

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("got %T, want *gateway.Error", err)
	}
	if gerr.Kind != KindUnavailable {
		t.Errorf("kind: got %s, want %s", gerr.Kind, KindUnavailable)
	}
	if !IsRetryable(err) {
		t.Error("unreachable gateway not reported as retryable")
	}
}

func TestCreateBillInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`KEY-DID-NOT-EXIST`)) // the gateway's plain-text error style
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateBill(context.Background(), CreateBillRequest{
		BookingID: uuid.New(),
		Amount:    decimal.RequireFromString("100.00"),
	})

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("got %T, want *gateway.Error", err)
	}
	if gerr.Kind != KindInvalidResponse {
		t.Errorf("kind: got %s, want %s", gerr.Kind, KindInvalidResponse)
	}
}

func TestFetchBillTransactionsMapsFields(t *testing.T) {
	ref := uuid.NewString()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("billCode"); got != "abc123" {
			t.Errorf("billCode: got %s, want abc123", got)
		}
		w.Write([]byte(`[
			{"billpaymentStatus":"1","billpaymentAmount":"3000.00","billpaymentInvoiceNo":"TP1755","billPaymentDate":"15-08-2026 14:30:05","billExternalReferenceNo":"` + ref + `"},
			{"billpaymentStatus":"2","billpaymentAmount":"100.00","billpaymentInvoiceNo":"TP1756","billPaymentDate":"","billExternalReferenceNo":"` + ref + `"},
			{"billpaymentStatus":"3","billpaymentAmount":"50.00","billpaymentInvoiceNo":"TP1757","billPaymentDate":"","billExternalReferenceNo":"` + ref + `"}
		]`))
	}))
	defer server.Close()

	transactions, err := newTestClient(server.URL).FetchBillTransactions(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchBillTransactions: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(transactions))
	}

	first := transactions[0]
	if first.Status != TransactionSuccess {
		t.Errorf("status: got %s, want success", first.Status)
	}
	if !first.Amount.Equal(decimal.RequireFromString("3000.00")) {
		t.Errorf("amount: got %s, want 3000.00", first.Amount)
	}
	if first.TransactionID != "TP1755" {
		t.Errorf("transaction id: got %s, want TP1755", first.TransactionID)
	}
	if first.ExternalReference != ref {
		t.Errorf("external reference: got %s, want %s", first.ExternalReference, ref)
	}
	want := time.Date(2026, 8, 15, 14, 30, 5, 0, time.UTC)
	if !first.PaidAt.Equal(want) {
		t.Errorf("paid at: got %s, want %s", first.PaidAt, want)
	}

	if transactions[1].Status != TransactionPending {
		t.Errorf("second status: got %s, want pending", transactions[1].Status)
	}
	if transactions[2].Status != TransactionFailed {
		t.Errorf("third status: got %s, want failed", transactions[2].Status)
	}
}

func TestFetchBillTransactionsBadAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"billpaymentStatus":"1","billpaymentAmount":"not-a-number","billpaymentInvoiceNo":"TP1"}]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchBillTransactions(context.Background(), "abc123")

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("got %T, want *gateway.Error", err)
	}
	if gerr.Kind != KindInvalidResponse {
		t.Errorf("kind: got %s, want %s", gerr.Kind, KindInvalidResponse)
	}
}

// sign replicates the gateway's signing scheme: sorted key=value pairs joined
// with "|", HMAC-SHA256 over the secret, hex encoded.
func sign(payload url.Values, secret string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+payload.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCallback(t *testing.T) {
	client := newTestClient("https://gateway.test")

	payload := url.Values{}
	payload.Set("billcode", "abc123")
	payload.Set("status", "1")
	payload.Set("order_id", uuid.NewString())

	valid := sign(payload, "test-secret")

	if !client.VerifyCallback(payload, valid) {
		t.Error("valid signature rejected")
	}
	if !client.VerifyCallback(payload, strings.ToUpper(valid)) {
		t.Error("uppercased hex signature rejected")
	}
	if client.VerifyCallback(payload, "") {
		t.Error("empty signature accepted")
	}
	if client.VerifyCallback(payload, sign(payload, "wrong-secret")) {
		t.Error("signature under the wrong secret accepted")
	}

	payload.Set("status", "3") // tamper after signing
	if client.VerifyCallback(payload, valid) {
		t.Error("tampered payload accepted")
	}
}
