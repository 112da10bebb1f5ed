package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
)

// The slot ledger lives in its own table keyed on
// (doctor_id, slot_date, slot_time) so reservation is a single
// conditional insert instead of a read-modify-write of the doctor row.

type slotRepository struct {
	BaseRepository
}

func NewSlotRepository(db *sqlx.DB) repository.SlotRepository {
	return &slotRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *slotRepository) IsFree(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	query := `
		SELECT NOT EXISTS (
			SELECT 1 FROM booked_slots
			WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3
		)
	`
	var free bool
	if err := r.db.GetContext(ctx, &free, query, doctorID, slotDate, slotTime); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return free, nil
}

func (r *slotRepository) LedgerForDoctor(ctx context.Context, doctorID uuid.UUID) (model.SlotLedger, error) {
	query := `
		SELECT slot_date, slot_time FROM booked_slots
		WHERE doctor_id = $1
		ORDER BY slot_date, slot_time
	`
	rows, err := r.db.QueryxContext(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot ledger: %w", err)
	}
	defer rows.Close()

	ledger := make(model.SlotLedger)
	for rows.Next() {
		var date, slot string
		if err := rows.Scan(&date, &slot); err != nil {
			return nil, fmt.Errorf("failed to scan slot row: %w", err)
		}
		ledger[date] = append(ledger[date], slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slot rows: %w", err)
	}
	return ledger, nil
}

// reserveSlotTx inserts the slot if absent. Zero rows affected means a
// concurrent or earlier booking holds it.
func reserveSlotTx(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, slotDate, slotTime string) error {
	query := `
		INSERT INTO booked_slots (doctor_id, slot_date, slot_time, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (doctor_id, slot_date, slot_time) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query, doctorID, slotDate, slotTime)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrSlotTaken
	}
	return nil
}

func releaseSlotTx(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, slotDate, slotTime string) error {
	query := `
		DELETE FROM booked_slots
		WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3
	`
	if _, err := tx.ExecContext(ctx, query, doctorID, slotDate, slotTime); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}
