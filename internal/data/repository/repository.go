package repository

import (
	"context"
	"fmt"

	"wedding-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking     BookingRepository
	Payment     PaymentRepository
	GatewayBill GatewayBillRepository

	// WithinTx runs fn with every repository bound to a single database
	// transaction. Ledger mutations go through here so multi-step writes
	// commit or roll back as one unit.
	WithinTx func(ctx context.Context, fn func(r *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := &Repository{
		Booking:     NewBookingRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
		GatewayBill: NewGatewayBillRepository(db, log),
	}

	r.WithinTx = func(ctx context.Context, fn func(r *Repository) error) error {
		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := fn(NewRepository(database.WrapTx(tx), log)); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}

	return r
}
