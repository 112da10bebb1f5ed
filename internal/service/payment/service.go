package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/metrics"
	"github.com/clinichq/booking-api/pkg/payment"
)

// Service links external checkout sessions to appointments. It never
// touches the slot ledger. The payment flag records confirmed intent
// to pay (session created); settlement lands later via the webhook.
type Service struct {
	appointments repository.AppointmentRepository
	orders       repository.OrderRepository
	gateway      payment.Gateway
	metrics      *metrics.Metrics
	strict       bool
	callbackURL  string
}

func NewService(
	appointments repository.AppointmentRepository,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	m *metrics.Metrics,
	strictLifecycle bool,
	callbackURL string,
) *Service {
	return &Service{
		appointments: appointments,
		orders:       orders,
		gateway:      gateway,
		metrics:      m,
		strict:       strictLifecycle,
		callbackURL:  callbackURL,
	}
}

// CreateCheckoutSession builds a hosted checkout for the appointment's
// amount, persists the intent as an Order and marks the appointment
// paid. On gateway failure nothing is persisted.
func (s *Service) CreateCheckoutSession(ctx context.Context, patientID, appointmentID uuid.UUID) (*model.CheckoutResponse, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	if appointment.PatientID != patientID {
		return nil, apperrors.Unauthorized("not your appointment")
	}
	if s.strict && appointment.Cancelled {
		return nil, apperrors.Conflict("appointment is cancelled")
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Amount:      appointment.Amount,
		Description: appointment.DoctorSnapshot.Name,
		Reference:   appointment.ID.String(),
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		s.metrics.PaymentSessions.WithLabelValues("failure").Inc()
		return nil, apperrors.Upstream("payment session could not be created", err)
	}

	order := &model.Order{
		ID:              uuid.New(),
		AppointmentID:   appointment.ID,
		PatientID:       appointment.PatientID,
		PatientSnapshot: appointment.PatientSnapshot,
		Amount:          appointment.Amount,
		GatewayOrderID:  session.SessionID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if err := s.appointments.SetPaid(ctx, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to mark appointment paid: %w", err)
	}
	s.metrics.PaymentSessions.WithLabelValues("success").Inc()

	return &model.CheckoutResponse{
		OrderID:     order.ID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// webhookEvent mirrors the gateway's payment_link.paid payload shape.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// ConfirmSettlement processes the gateway's settlement callback and
// records settlement on the matching order.
func (s *Service) ConfirmSettlement(ctx context.Context, payload []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		return apperrors.Unauthorized("invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.InvalidInput("malformed webhook payload", err)
	}
	if event.Event != "payment_link.paid" {
		// Other events are acknowledged and dropped.
		return nil
	}
	sessionID := event.Payload.PaymentLink.Entity.ID
	if sessionID == "" {
		return apperrors.InvalidInput("webhook payload missing payment link id", nil)
	}

	if err := s.orders.MarkSettled(ctx, sessionID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("order", err)
		}
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}
