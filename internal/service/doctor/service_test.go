package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/security"
)

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
	dupe    bool
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	if r.dupe {
		return repository.ErrDuplicateEmail
	}
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDoctorRepo) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	for _, d := range r.doctors {
		if d.Email == email {
			copied := *d
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Count(_ context.Context) (int, error) {
	return len(r.doctors), nil
}

type fakeSlotRepo struct {
	ledgers map[uuid.UUID]model.SlotLedger
}

func (r *fakeSlotRepo) IsFree(_ context.Context, doctorID uuid.UUID, slotDate, slotTime string) (bool, error) {
	for _, t := range r.ledgers[doctorID][slotDate] {
		if t == slotTime {
			return false, nil
		}
	}
	return true, nil
}

func (r *fakeSlotRepo) LedgerForDoctor(_ context.Context, doctorID uuid.UUID) (model.SlotLedger, error) {
	ledger, ok := r.ledgers[doctorID]
	if !ok {
		return model.SlotLedger{}, nil
	}
	return ledger, nil
}

func newTestService(repo *fakeDoctorRepo, slots *fakeSlotRepo) *Service {
	if slots == nil {
		slots = &fakeSlotRepo{ledgers: make(map[uuid.UUID]model.SlotLedger)}
	}
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return NewService(repo, slots, hasher, nil, nil, 0)
}

func validCreateRequest() *model.CreateDoctorRequest {
	return &model.CreateDoctorRequest{
		Name:       "Dr. Richard James",
		Email:      "richard@clinic.example",
		Password:   "doctor-pass",
		Speciality: "General physician",
		Degree:     "MBBS",
		Experience: "4 Years",
		Fee:        500,
		Address:    `{"line1":"17th Cross","line2":"Richmond Circle"}`,
	}
}

func TestAddDoctorDefaultsToAvailable(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := newTestService(repo, nil)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)
	assert.True(t, created.Available)
	assert.Equal(t, "17th Cross", created.Address["line1"])
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "doctor-pass", created.PasswordHash)
}

func TestAddDoctorRejectsMalformedAddress(t *testing.T) {
	svc := newTestService(newFakeDoctorRepo(), nil)

	req := validCreateRequest()
	req.Address = "not json"
	_, err := svc.AddDoctor(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.From(err).Code)
}

func TestAddDoctorDuplicateEmail(t *testing.T) {
	repo := newFakeDoctorRepo()
	repo.dupe = true
	svc := newTestService(repo, nil)

	_, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.From(err).Code)
}

func TestListPublicStripsCredentials(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := newTestService(repo, nil)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)

	public, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, created.ID, public[0].ID)
	assert.Empty(t, public[0].Email)
	assert.Empty(t, public[0].PasswordHash)
}

func TestLedgerForUnknownDoctor(t *testing.T) {
	svc := newTestService(newFakeDoctorRepo(), nil)

	_, err := svc.Ledger(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.From(err).Code)
}

func TestLedgerReturnsBookedSlots(t *testing.T) {
	repo := newFakeDoctorRepo()
	slots := &fakeSlotRepo{ledgers: make(map[uuid.UUID]model.SlotLedger)}
	svc := newTestService(repo, slots)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)
	slots.ledgers[created.ID] = model.SlotLedger{
		"2026-09-10": {"10:00", "10:30"},
	}

	ledger, err := svc.Ledger(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30"}, ledger["2026-09-10"])
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := newTestService(repo, nil)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)

	fee := int64(750)
	about := "Updated bio"
	available := false
	updated, err := svc.UpdateProfile(context.Background(), created.ID, &model.UpdateDoctorProfileRequest{
		Fee:       &fee,
		About:     &about,
		Available: &available,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.Fee)
	assert.Equal(t, "Updated bio", updated.About)
	assert.False(t, updated.Available)
}

func TestUpdateProfileRejectsNonPositiveFee(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := newTestService(repo, nil)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)

	fee := int64(0)
	_, err = svc.UpdateProfile(context.Background(), created.ID, &model.UpdateDoctorProfileRequest{Fee: &fee})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidInput, apperrors.From(err).Code)
}

func TestToggleAvailability(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := newTestService(repo, nil)

	created, err := svc.AddDoctor(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)
	require.True(t, created.Available)

	toggled, err := svc.ToggleAvailability(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Available)

	toggled, err = svc.ToggleAvailability(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Available)
}
