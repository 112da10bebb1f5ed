package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

const appointmentColumns = `
	id, patient_id, doctor_id, patient_snapshot, doctor_snapshot,
	amount, slot_date, slot_time, booked_at, cancelled, is_completed, payment
`

func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := reserveSlotTx(ctx, tx, appointment.DoctorID, appointment.SlotDate, appointment.SlotTime); err != nil {
			return err
		}

		query := `
			INSERT INTO appointments (
				id, patient_id, doctor_id, patient_snapshot, doctor_snapshot,
				amount, slot_date, slot_time, booked_at, cancelled, is_completed, payment
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.PatientSnapshot,
			appointment.DoctorSnapshot,
			appointment.Amount,
			appointment.SlotDate,
			appointment.SlotTime,
			appointment.BookedAt,
			appointment.Cancelled,
			appointment.IsCompleted,
			appointment.Payment,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) CancelWithRelease(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// The slot is released only on the false->true transition.
		// A repeat cancel must not touch the ledger: the slot may
		// have been rebooked by another appointment since.
		query := `
			UPDATE appointments SET cancelled = true
			WHERE id = $1 AND NOT cancelled
			RETURNING doctor_id, slot_date, slot_time
		`
		var (
			doctorID uuid.UUID
			slotDate string
			slotTime string
		)
		err := tx.QueryRowxContext(ctx, query, id).Scan(&doctorID, &slotDate, &slotTime)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				var exists bool
				if err := tx.GetContext(ctx, &exists,
					`SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id); err != nil {
					return fmt.Errorf("failed to check appointment: %w", err)
				}
				if !exists {
					return repository.ErrNotFound
				}
				// Already cancelled; its slot was released back then.
				return nil
			}
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		return releaseSlotTx(ctx, tx, doctorID, slotDate, slotTime)
	})
}

func (r *appointmentRepository) SetCompleted(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "is_completed")
}

func (r *appointmentRepository) SetPaid(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "payment")
}

func (r *appointmentRepository) setFlag(ctx context.Context, id uuid.UUID, column string) error {
	query := fmt.Sprintf(`UPDATE appointments SET %s = true WHERE id = $1`, column)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE patient_id = $1 ORDER BY booked_at DESC`
	return r.list(ctx, query, patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE doctor_id = $1 ORDER BY booked_at DESC`
	return r.list(ctx, query, doctorID)
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY booked_at DESC`
	return r.list(ctx, query)
}

func (r *appointmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
