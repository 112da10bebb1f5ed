package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinichq/booking-api/internal/email"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/metrics"
	"github.com/clinichq/booking-api/pkg/validator"
)

// Service orchestrates the appointment lifecycle: booking,
// cancellation and completion. It is the only writer of the slot
// ledger, always paired with an appointment mutation in the same
// transaction.
type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	slots        repository.SlotRepository
	emailSvc     email.Service
	metrics      *metrics.Metrics
	validate     validator.Validator
	strict       bool
}

func NewService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	slots repository.SlotRepository,
	emailSvc email.Service,
	m *metrics.Metrics,
	strictLifecycle bool,
) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		slots:        slots,
		emailSvc:     emailSvc,
		metrics:      m,
		validate:     validator.New(),
		strict:       strictLifecycle,
	}
}

// Book reserves the requested slot and creates the appointment. The
// amount and both snapshots are frozen at this instant; later fee or
// profile changes do not touch existing appointments.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	start := time.Now()
	defer func() {
		s.metrics.BookingLatency.Observe(time.Since(start).Seconds())
	}()

	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), err)
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid doctor id", err)
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if !doctor.Available {
		return nil, apperrors.Conflict("doctor is not available")
	}

	// Fast-fail on a taken slot. The conditional insert below is the
	// authoritative check under races.
	free, err := s.slots.IsFree(ctx, doctorID, req.SlotDate, req.SlotTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	if !free {
		s.metrics.BookingConflicts.Inc()
		return nil, apperrors.Conflict("slot already booked")
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	appointment := &model.Appointment{
		ID:              uuid.New(),
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		PatientSnapshot: patient.Snapshot(),
		DoctorSnapshot:  doctor.Snapshot(),
		Amount:          doctor.Fee,
		SlotDate:        req.SlotDate,
		SlotTime:        req.SlotTime,
		BookedAt:        time.Now(),
	}

	if err := s.appointments.Book(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict("slot already booked")
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	s.metrics.BookingsTotal.Inc()

	if err := s.emailSvc.SendBookingConfirmation(ctx, patient.Email, patient.Name, doctor.Name, req.SlotDate, req.SlotTime); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointment.ID.String()).Msg("booking confirmation email failed")
	}

	return appointment, nil
}

// Cancel marks the appointment cancelled and frees its slot. The
// requester must be the booking patient, the assigned doctor, or an
// admin. Cancelling twice repeats the success response without
// touching the ledger again, so a slot rebooked in between stays
// reserved for its new holder.
func (s *Service) Cancel(ctx context.Context, requesterID uuid.UUID, actorType string, appointmentID uuid.UUID) error {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if !canCancel(appointment, requesterID, actorType) {
		return apperrors.Unauthorized("not allowed to cancel this appointment")
	}

	if err := s.appointments.CancelWithRelease(ctx, appointmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	if !appointment.Cancelled {
		s.metrics.CancellationsTotal.Inc()

		snap := appointment.PatientSnapshot
		if err := s.emailSvc.SendCancellationNotice(ctx, snap.Email, snap.Name, appointment.DoctorSnapshot.Name, appointment.SlotDate, appointment.SlotTime); err != nil {
			log.Warn().Err(err).Str("appointment_id", appointmentID.String()).Msg("cancellation email failed")
		}
	}

	return nil
}

func canCancel(appointment *model.Appointment, requesterID uuid.UUID, actorType string) bool {
	switch actorType {
	case model.ActorAdmin:
		return true
	case model.ActorPatient:
		return appointment.PatientID == requesterID
	case model.ActorDoctor:
		return appointment.DoctorID == requesterID
	default:
		return false
	}
}

// Complete marks the appointment completed. Only the assigned doctor
// may do this; the ledger is untouched.
func (s *Service) Complete(ctx context.Context, doctorID, appointmentID uuid.UUID) error {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	if appointment.DoctorID != doctorID {
		return apperrors.Unauthorized("not the assigned doctor")
	}
	if s.strict && appointment.Cancelled {
		return apperrors.Conflict("appointment is cancelled")
	}
	// CompletionsTotal counts appointments, not calls.
	if appointment.IsCompleted {
		return nil
	}

	if err := s.appointments.SetCompleted(ctx, appointmentID); err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	s.metrics.CompletionsTotal.Inc()
	return nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// DoctorDashboard aggregates earnings from appointments that are
// completed or paid, the distinct patient count and the five most
// recent bookings.
func (s *Service) DoctorDashboard(ctx context.Context, doctorID uuid.UUID) (*model.DoctorDashboard, error) {
	appointments, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	var earnings int64
	patients := make(map[uuid.UUID]struct{})
	for _, a := range appointments {
		if a.IsCompleted || a.Payment {
			earnings += a.Amount
		}
		patients[a.PatientID] = struct{}{}
	}

	return &model.DoctorDashboard{
		Earnings:           earnings,
		Appointments:       len(appointments),
		Patients:           len(patients),
		LatestAppointments: latest(appointments, 5),
	}, nil
}

// AdminDashboard aggregates platform-wide counts.
func (s *Service) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	doctors, err := s.doctors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count doctors: %w", err)
	}
	patients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	appointments, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return &model.AdminDashboard{
		Doctors:            doctors,
		Patients:           patients,
		Appointments:       len(appointments),
		LatestAppointments: latest(appointments, 5),
	}, nil
}

// latest assumes the list is already sorted newest first.
func latest(appointments []*model.Appointment, n int) []*model.Appointment {
	if len(appointments) < n {
		n = len(appointments)
	}
	return appointments[:n]
}
