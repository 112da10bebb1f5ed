package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/model"
)

// Sentinel errors surfaced by implementations. Services translate
// these into boundary errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrSlotTaken      = errors.New("slot already booked")
	ErrDuplicateEmail = errors.New("email already registered")
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context) ([]*model.Doctor, error)
		Count(ctx context.Context) (int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Count(ctx context.Context) (int, error)
	}

	// SlotRepository reads the per-doctor slot ledger. Reservation and
	// release happen inside AppointmentRepository transactions so a
	// ledger mutation is never separated from its appointment mutation.
	SlotRepository interface {
		IsFree(ctx context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error)
		LedgerForDoctor(ctx context.Context, doctorID uuid.UUID) (model.SlotLedger, error)
	}

	AppointmentRepository interface {
		// Book reserves the slot and creates the appointment in one
		// transaction. Returns ErrSlotTaken if the slot is reserved,
		// leaving no trace of the attempt.
		Book(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// CancelWithRelease marks the appointment cancelled and frees
		// its slot in one transaction. Safe to repeat.
		CancelWithRelease(ctx context.Context, id uuid.UUID) error
		SetCompleted(ctx context.Context, id uuid.UUID) error
		SetPaid(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		List(ctx context.Context) ([]*model.Appointment, error)
		Count(ctx context.Context) (int, error)
	}

	OrderRepository interface {
		Create(ctx context.Context, order *model.Order) error
		Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
		MarkSettled(ctx context.Context, gatewayOrderID string, settledAt time.Time) error
	}
)
