package usecase

import (
	"wedding-booking/internal/data/repository"
	"wedding-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking   BookingService
	Ledger    LedgerService
	Reconcile ReconcileService
}

func NewService(repo *repository.Repository, gw BillGateway, config *utils.Config, log *zap.Logger) *Service {
	ledger := NewLedgerService(repo, log)

	return &Service{
		Booking:   NewBookingService(repo, log),
		Ledger:    ledger,
		Reconcile: NewReconcileService(repo, ledger, gw, log),
	}
}
