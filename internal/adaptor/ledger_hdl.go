package adaptor

import (
	"encoding/json"
	"net/http"

	"wedding-booking/internal/dto/request"
	"wedding-booking/internal/usecase"
	"wedding-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	service usecase.LedgerService
	log     *zap.Logger
}

func NewLedgerHandler(service usecase.LedgerService, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		log:     log.With(zap.String("handler", "ledger")),
	}
}

// ApplyManualPayment handles POST /api/admin/bookings/{id}/payments
func (h *LedgerHandler) ApplyManualPayment(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.ManualPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.ApplyManualPayment(r.Context(), bookingID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "apply manual payment")
		return
	}

	utils.ResponseCreated(w, "success", payment)
}

// ListBookingPayments handles GET /api/admin/bookings/{id}/payments
func (h *LedgerHandler) ListBookingPayments(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	payments, err := h.service.ListBookingPayments(r.Context(), bookingID)
	if err != nil {
		writeServiceError(w, h.log, err, "list booking payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// SetPaymentStatus handles PUT /api/admin/payments/{id}/status
func (h *LedgerHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	var req request.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payment, err := h.service.SetPaymentStatus(r.Context(), paymentID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "set payment status")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// DownloadReceipt handles GET /api/admin/payments/{id}/receipt
func (h *LedgerHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	pdf, err := h.service.BuildReceipt(r.Context(), paymentID)
	if err != nil {
		writeServiceError(w, h.log, err, "build receipt")
		return
	}

	utils.ResponsePDF(w, "receipt-"+paymentID+".pdf", pdf)
}
