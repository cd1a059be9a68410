package repository

import (
	"context"
	"fmt"

	"wedding-booking/internal/data/entity"
	"wedding-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type GatewayBillRepository interface {
	Create(ctx context.Context, bill *entity.GatewayBill) error
	FindByBillCode(ctx context.Context, billCode string) (*entity.GatewayBill, error)
}

type gatewayBillRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGatewayBillRepository(db database.PgxIface, log *zap.Logger) GatewayBillRepository {
	return &gatewayBillRepository{
		db:  db,
		log: log.With(zap.String("repository", "gateway_bill")),
	}
}

func (r *gatewayBillRepository) Create(ctx context.Context, bill *entity.GatewayBill) error {
	query := `
		INSERT INTO gateway_bills (id, bill_code, booking_id, requested_amount, payer_name, payer_email, payer_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		bill.ID,
		bill.BillCode,
		bill.BookingID,
		bill.RequestedAmount,
		bill.PayerName,
		bill.PayerEmail,
		bill.PayerPhone,
		bill.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create gateway bill",
			zap.Error(err),
			zap.String("bill_code", bill.BillCode),
			zap.String("booking_id", bill.BookingID.String()),
		)
		return fmt.Errorf("create gateway bill %s: %w", bill.BillCode, err)
	}

	return nil
}

func (r *gatewayBillRepository) FindByBillCode(ctx context.Context, billCode string) (*entity.GatewayBill, error) {
	query := `
		SELECT id, bill_code, booking_id, requested_amount, payer_name, payer_email, payer_phone, created_at
		FROM gateway_bills
		WHERE bill_code = $1
	`

	var bill entity.GatewayBill
	err := r.db.QueryRow(ctx, query, billCode).Scan(
		&bill.ID,
		&bill.BillCode,
		&bill.BookingID,
		&bill.RequestedAmount,
		&bill.PayerName,
		&bill.PayerEmail,
		&bill.PayerPhone,
		&bill.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find gateway bill",
			zap.Error(err),
			zap.String("bill_code", billCode),
		)
		return nil, fmt.Errorf("find gateway bill %s: %w", billCode, err)
	}

	return &bill, nil
}
