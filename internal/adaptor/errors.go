package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"wedding-booking/internal/gateway"
	"wedding-booking/internal/usecase"
	"wedding-booking/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps the ledger error taxonomy onto HTTP responses.
// Validation problems go back as 400 for correction; gateway errors carry a
// retryable hint; anything unexpected is a 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var gerr *gateway.Error

	switch {
	case errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrPaymentNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrExceedsBalance),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrReceiptUnavailable):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNoTransactions),
		errors.Is(err, usecase.ErrNoSuccessfulTransaction):
		log.Warn(operation+" found nothing to reconcile", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.As(err, &gerr):
		log.Error(operation+" gateway error",
			zap.Error(err),
			zap.String("kind", string(gerr.Kind)),
			zap.Bool("retryable", gerr.Retryable),
		)
		utils.ResponseJSON(w, http.StatusBadGateway, false, err.Error(),
			nil, map[string]bool{"retryable": gerr.Retryable})

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
