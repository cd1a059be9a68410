package wire

import (
	"wedding-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, ledgerHandler *adaptor.LedgerHandler) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		// POST /api/admin/bookings - Register a new wedding booking
		r.Post("/", bookingHandler.CreateBooking)

		// GET /api/admin/bookings - List bookings (paginated)
		r.Get("/", bookingHandler.ListBookings)

		// GET /api/admin/bookings/{id} - Booking details with payment history
		r.Get("/{id}", bookingHandler.GetBooking)

		// PUT /api/admin/bookings/{id} - Edit client details / total amount
		r.Put("/{id}", bookingHandler.UpdateBooking)

		// PUT /api/admin/bookings/{id}/status - Booking lifecycle transition
		r.Put("/{id}/status", bookingHandler.UpdateBookingStatus)

		// POST /api/admin/bookings/{id}/payments - Record a manual payment
		r.Post("/{id}/payments", ledgerHandler.ApplyManualPayment)

		// GET /api/admin/bookings/{id}/payments - Payment history
		r.Get("/{id}/payments", ledgerHandler.ListBookingPayments)
	})

	r.Route("/api/admin/payments", func(r chi.Router) {
		// PUT /api/admin/payments/{id}/status - Correct a recorded payment
		r.Put("/{id}/status", ledgerHandler.SetPaymentStatus)

		// GET /api/admin/payments/{id}/receipt - PDF receipt download
		r.Get("/{id}/receipt", ledgerHandler.DownloadReceipt)
	})
}
