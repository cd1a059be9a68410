package wire

import (
	"wedding-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReconcile(r chi.Router, reconcileHandler *adaptor.ReconcileHandler) {
	// ==================== CUSTOMER PORTAL ====================
	// POST /api/bookings/{id}/pay - Start a gateway partial payment
	r.Post("/api/bookings/{id}/pay", reconcileHandler.InitiateBillPayment)

	// ==================== GATEWAY ====================
	// POST /api/gateway/callback - Gateway-originated payment confirmation
	r.Post("/api/gateway/callback", reconcileHandler.HandleCallback)

	// ==================== ADMIN ROUTES ====================
	// POST /api/admin/bills/{billCode}/sync - Staff-triggered reconciliation
	r.Post("/api/admin/bills/{billCode}/sync", reconcileHandler.SyncBillPayment)
}
