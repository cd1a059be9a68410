package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"wedding-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionPending TransactionStatus = "pending"
	TransactionFailed  TransactionStatus = "failed"
)

type CreateBillRequest struct {
	BookingID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	PayerName   string
	PayerEmail  string
	PayerPhone  string
}

type Bill struct {
	BillCode   string
	PaymentURL string
}

// Transaction is a gateway-side payment record read during reconciliation.
// Never persisted verbatim.
type Transaction struct {
	BillCode          string
	ExternalReference string
	Status            TransactionStatus
	Amount            decimal.Decimal
	TransactionID     string
	PaidAt            time.Time
}

// Client is a typed wrapper over the bill gateway's HTTP API. Every call is
// bounded by the configured timeout; no ledger state is touched here.
type Client struct {
	cfg  utils.GatewayConfig
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg utils.GatewayConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.With(zap.String("component", "gateway")),
	}
}

func (c *Client) doForm(ctx context.Context, op, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, rejected(op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Gateway request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return nil, unavailable(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejected(op, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(op, err)
	}
	return body, nil
}

// CreateBill registers a payable bill with the gateway and returns its code
// plus the URL the payer is redirected to.
func (c *Client) CreateBill(ctx context.Context, req CreateBillRequest) (*Bill, error) {
	const op = "create_bill"

	// Gateway wants the amount in cents.
	cents := req.Amount.Shift(2).Round(0).IntPart()

	form := url.Values{}
	form.Set("userSecretKey", c.cfg.SecretKey)
	form.Set("categoryCode", c.cfg.CategoryCode)
	form.Set("billName", "Wedding booking payment")
	form.Set("billDescription", req.Description)
	form.Set("billAmount", fmt.Sprintf("%d", cents))
	form.Set("billExternalReferenceNo", req.BookingID.String())
	form.Set("billTo", req.PayerName)
	form.Set("billEmail", req.PayerEmail)
	form.Set("billPhone", req.PayerPhone)
	form.Set("billReturnUrl", c.cfg.ReturnURL)
	form.Set("billCallbackUrl", c.cfg.CallbackURL)
	form.Set("billPaymentChannel", "0")

	body, err := c.doForm(ctx, op, "/index.php/api/createBill", form)
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		BillCode string `json:"BillCode"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, invalidResponse(op, err)
	}
	if len(parsed) == 0 || parsed[0].BillCode == "" {
		return nil, invalidResponse(op, fmt.Errorf("empty bill code in response"))
	}

	billCode := parsed[0].BillCode
	c.log.Info("Gateway bill created",
		zap.String("bill_code", billCode),
		zap.String("booking_id", req.BookingID.String()),
		zap.String("amount", req.Amount.String()),
	)

	return &Bill{
		BillCode:   billCode,
		PaymentURL: strings.TrimRight(c.cfg.BaseURL, "/") + "/" + billCode,
	}, nil
}

// FetchBillTransactions returns every payment attempt the gateway has
// recorded against a bill, most recent last.
func (c *Client) FetchBillTransactions(ctx context.Context, billCode string) ([]Transaction, error) {
	const op = "get_bill_transactions"

	form := url.Values{}
	form.Set("userSecretKey", c.cfg.SecretKey)
	form.Set("billCode", billCode)

	body, err := c.doForm(ctx, op, "/index.php/api/getBillTransactions", form)
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		BillPaymentStatus    string `json:"billpaymentStatus"`
		BillPaymentAmount    string `json:"billpaymentAmount"`
		BillPaymentInvoiceNo string `json:"billpaymentInvoiceNo"`
		BillPaymentDate      string `json:"billPaymentDate"`
		BillExternalRefNo    string `json:"billExternalReferenceNo"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, invalidResponse(op, err)
	}

	transactions := make([]Transaction, 0, len(parsed))
	for _, row := range parsed {
		amount, err := decimal.NewFromString(row.BillPaymentAmount)
		if err != nil {
			return nil, invalidResponse(op, fmt.Errorf("amount %q: %w", row.BillPaymentAmount, err))
		}

		paidAt, _ := time.Parse("02-01-2006 15:04:05", row.BillPaymentDate)

		transactions = append(transactions, Transaction{
			BillCode:          billCode,
			ExternalReference: row.BillExternalRefNo,
			Status:            mapStatus(row.BillPaymentStatus),
			Amount:            amount,
			TransactionID:     row.BillPaymentInvoiceNo,
			PaidAt:            paidAt,
		})
	}

	return transactions, nil
}

// VerifyCallback checks the HMAC signature the gateway attaches to callback
// POSTs. Unverifiable payloads must be treated as untrusted and dropped.
func (c *Client) VerifyCallback(payload url.Values, signature string) bool {
	if signature == "" {
		return false
	}

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

	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(strings.Join(pairs, "|")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func mapStatus(code string) TransactionStatus {
	switch code {
	case "1":
		return TransactionSuccess
	case "2":
		return TransactionPending
	default:
		return TransactionFailed
	}
}
