package adaptor

import (
	"wedding-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking   *BookingHandler
	Ledger    *LedgerHandler
	Reconcile *ReconcileHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:   NewBookingHandler(service.Booking, log),
		Ledger:    NewLedgerHandler(service.Ledger, log),
		Reconcile: NewReconcileHandler(service.Reconcile, log),
	}
}
