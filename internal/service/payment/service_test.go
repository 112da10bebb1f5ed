package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/metrics"
	"github.com/clinichq/booking-api/pkg/payment"
)

var testMetrics = metrics.NewMetrics("payment_test")

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Book(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.appointments[a.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) CancelWithRelease(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Cancelled = true
	return nil
}

func (r *fakeAppointmentRepo) SetCompleted(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsCompleted = true
	return nil
}

func (r *fakeAppointmentRepo) SetPaid(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Payment = true
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) List(_ context.Context) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments), nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) MarkSettled(_ context.Context, gatewayOrderID string, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.GatewayOrderID == gatewayOrderID {
			o.Settled = true
			o.SettledAt = &settledAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeGateway struct {
	session      *payment.CheckoutSession
	err          error
	validSig     bool
	lastRequest  payment.CheckoutRequest
	requestCount int
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.lastRequest = req
	g.requestCount++
	if g.err != nil {
		return nil, g.err
	}
	return g.session, nil
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, _ string) bool {
	return g.validSig
}

func seedAppointment(t *testing.T, repo *fakeAppointmentRepo) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Amount:    500,
		SlotDate:  "2026-09-10",
		SlotTime:  "10:00",
		DoctorSnapshot: model.DoctorSnapshot{
			Name: "Dr. Richard James",
		},
	}
	require.NoError(t, repo.Book(context.Background(), a))
	return a
}

func TestCreateCheckoutSession(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{
		session: &payment.CheckoutSession{SessionID: "plink_123", CheckoutURL: "https://rzp.io/l/abc"},
	}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "https://clinic.example/verify")

	a := seedAppointment(t, appointments)

	resp, err := svc.CreateCheckoutSession(context.Background(), a.PatientID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://rzp.io/l/abc", resp.CheckoutURL)

	assert.Equal(t, int64(500), gateway.lastRequest.Amount)
	assert.Equal(t, a.ID.String(), gateway.lastRequest.Reference)
	assert.Equal(t, "https://clinic.example/verify", gateway.lastRequest.CallbackURL)

	order, err := orders.Get(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "plink_123", order.GatewayOrderID)
	assert.False(t, order.Settled)

	stored, err := appointments.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Payment)
}

func TestCreateCheckoutSessionUnknownAppointment(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "")

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.From(err).Code)
	assert.Zero(t, gateway.requestCount)
	assert.Zero(t, orders.count())
}

func TestCreateCheckoutSessionWrongPatient(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "")

	a := seedAppointment(t, appointments)

	_, err := svc.CreateCheckoutSession(context.Background(), uuid.New(), a.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.From(err).Code)
	assert.Zero(t, gateway.requestCount)
}

func TestCreateCheckoutSessionCancelledStrict(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "")

	a := seedAppointment(t, appointments)
	require.NoError(t, appointments.CancelWithRelease(context.Background(), a.ID))

	_, err := svc.CreateCheckoutSession(context.Background(), a.PatientID, a.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.From(err).Code)
}

func TestCreateCheckoutSessionCancelledLenient(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{
		session: &payment.CheckoutSession{SessionID: "plink_123", CheckoutURL: "https://rzp.io/l/abc"},
	}
	svc := NewService(appointments, orders, gateway, testMetrics, false, "")

	a := seedAppointment(t, appointments)
	require.NoError(t, appointments.CancelWithRelease(context.Background(), a.ID))

	_, err := svc.CreateCheckoutSession(context.Background(), a.PatientID, a.ID)
	require.NoError(t, err)
}

func TestCreateCheckoutSessionGatewayFailure(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{err: errors.New("gateway down")}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "")

	a := seedAppointment(t, appointments)

	_, err := svc.CreateCheckoutSession(context.Background(), a.PatientID, a.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUpstream, apperrors.From(err).Code)

	assert.Zero(t, orders.count(), "no order on gateway failure")
	stored, err := appointments.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Payment, "payment flag untouched on gateway failure")
}

func settlementPayload(sessionID string) []byte {
	return []byte(`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"` + sessionID + `"}}}}`)
}

func TestConfirmSettlement(t *testing.T) {
	appointments := newFakeAppointmentRepo()
	orders := newFakeOrderRepo()
	gateway := &fakeGateway{
		session:  &payment.CheckoutSession{SessionID: "plink_123", CheckoutURL: "https://rzp.io/l/abc"},
		validSig: true,
	}
	svc := NewService(appointments, orders, gateway, testMetrics, true, "")

	a := seedAppointment(t, appointments)
	resp, err := svc.CreateCheckoutSession(context.Background(), a.PatientID, a.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmSettlement(context.Background(), settlementPayload("plink_123"), "sig"))

	order, err := orders.Get(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.True(t, order.Settled)
	require.NotNil(t, order.SettledAt)
}

func TestConfirmSettlementBadSignature(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), newFakeOrderRepo(), &fakeGateway{validSig: false}, testMetrics, true, "")

	err := svc.ConfirmSettlement(context.Background(), settlementPayload("plink_123"), "bad")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.From(err).Code)
}

func TestConfirmSettlementIgnoresOtherEvents(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := NewService(newFakeAppointmentRepo(), orders, &fakeGateway{validSig: true}, testMetrics, true, "")

	payload := []byte(`{"event":"payment_link.expired","payload":{"payment_link":{"entity":{"id":"plink_123"}}}}`)
	require.NoError(t, svc.ConfirmSettlement(context.Background(), payload, "sig"))
}

func TestConfirmSettlementMalformedPayload(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), newFakeOrderRepo(), &fakeGateway{validSig: true}, testMetrics, true, "")

	err := svc.ConfirmSettlement(context.Background(), []byte("{not json"), "sig")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.From(err).Code)
}

func TestConfirmSettlementUnknownOrder(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), newFakeOrderRepo(), &fakeGateway{validSig: true}, testMetrics, true, "")

	err := svc.ConfirmSettlement(context.Background(), settlementPayload("plink_unknown"), "sig")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.From(err).Code)
}
