package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
)

type orderRepository struct {
	BaseRepository
}

func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &orderRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, appointment_id, patient_id, patient_snapshot, amount,
			gateway_order_id, settled, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	order.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.AppointmentID,
		order.PatientID,
		order.PatientSnapshot,
		order.Amount,
		order.GatewayOrderID,
		order.Settled,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, appointment_id, patient_id, patient_snapshot, amount,
			   gateway_order_id, settled, settled_at, created_at
		FROM orders
		WHERE id = $1
	`
	var order model.Order
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) MarkSettled(ctx context.Context, gatewayOrderID string, settledAt time.Time) error {
	query := `
		UPDATE orders SET settled = true, settled_at = $1
		WHERE gateway_order_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, settledAt, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("failed to mark order settled: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
