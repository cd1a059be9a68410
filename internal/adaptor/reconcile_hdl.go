package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"wedding-booking/internal/dto/request"
	"wedding-booking/internal/gateway"
	"wedding-booking/internal/usecase"
	"wedding-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReconcileHandler struct {
	service usecase.ReconcileService
	log     *zap.Logger
}

func NewReconcileHandler(service usecase.ReconcileService, log *zap.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		service: service,
		log:     log.With(zap.String("handler", "reconcile")),
	}
}

// InitiateBillPayment handles POST /api/bookings/{id}/pay (customer portal)
func (h *ReconcileHandler) InitiateBillPayment(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.InitiateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	bill, err := h.service.InitiateBillPayment(r.Context(), bookingID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "initiate bill payment")
		return
	}

	utils.ResponseCreated(w, "success", bill)
}

// SyncBillPayment handles POST /api/admin/bills/{billCode}/sync (staff trigger)
func (h *ReconcileHandler) SyncBillPayment(w http.ResponseWriter, r *http.Request) {
	billCode := chi.URLParam(r, "billCode")
	if billCode == "" {
		utils.ResponseBadRequest(w, "Bill code is required", nil)
		return
	}

	result, err := h.service.SyncBillPayment(r.Context(), billCode)
	if err != nil {
		writeServiceError(w, h.log, err, "sync bill payment")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// HandleCallback handles POST /api/gateway/callback. The gateway retries on
// non-200, so transient failures return 500 while anything permanently
// unprocessable (bad signature included, with no detail) returns 400.
func (h *ReconcileHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.ResponseBadRequest(w, "Invalid request", nil)
		return
	}

	result, err := h.service.HandleCallback(r.Context(), r.PostForm)

	switch {
	case err == nil:
		utils.ResponseSuccess(w, "success", result)

	case errors.Is(err, usecase.ErrInvalidSignature):
		// Same generic response as a malformed payload; nothing for a
		// forger to learn from.
		utils.ResponseBadRequest(w, "Invalid request", nil)

	case errors.Is(err, usecase.ErrNoSuccessfulTransaction),
		errors.Is(err, usecase.ErrNoTransactions):
		// Callback for an unpaid or failed bill. Processed; nothing to
		// apply, and a retry will not change that.
		h.log.Info("Callback carried no successful transaction", zap.Error(err))
		utils.ResponseSuccess(w, "no payment to record", nil)

	case errors.Is(err, usecase.ErrBookingNotFound):
		h.log.Warn("Callback for unknown booking", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request", nil)

	default:
		// Transient (gateway fetch failed, database down): non-200 so the
		// gateway retries.
		h.log.Error("Callback processing failed",
			zap.Error(err),
			zap.Bool("retryable", gateway.IsRetryable(err)),
		)
		utils.ResponseInternalError(w, "Internal server error")
	}
}
