package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/media"
	"github.com/clinichq/booking-api/pkg/security"
)

const publicListCacheKey = "doctors:public"

// Service manages doctor records: admin-side creation and the
// doctor-side profile and availability mutations.
type Service struct {
	doctors  repository.DoctorRepository
	slots    repository.SlotRepository
	hasher   security.PasswordHasher
	uploader media.Uploader
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewService(
	doctors repository.DoctorRepository,
	slots repository.SlotRepository,
	hasher security.PasswordHasher,
	uploader media.Uploader,
	cache *redis.Client,
	cacheTTL time.Duration,
) *Service {
	return &Service{
		doctors:  doctors,
		slots:    slots,
		hasher:   hasher,
		uploader: uploader,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// AddDoctor registers a new doctor. image may be nil.
func (s *Service) AddDoctor(ctx context.Context, req *model.CreateDoctorRequest, image io.Reader) (*model.Doctor, error) {
	var address model.JSONMap
	if err := json.Unmarshal([]byte(req.Address), &address); err != nil {
		return nil, apperrors.InvalidInput("address must be a JSON object", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InvalidInput("password does not meet requirements", err)
	}

	var imageURL string
	if image != nil {
		imageURL, err = s.uploader.Upload(ctx, image, "doctors")
		if err != nil {
			return nil, apperrors.Upstream("image upload failed", err)
		}
	}

	doctor := &model.Doctor{
		Base:         model.Base{ID: uuid.New()},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Image:        imageURL,
		Speciality:   req.Speciality,
		Degree:       req.Degree,
		Experience:   req.Experience,
		About:        req.About,
		Fee:          req.Fee,
		Available:    true,
		Address:      address,
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	s.invalidateCache(ctx)

	return doctor, nil
}

// ListPublic returns doctors with credentials stripped, served from
// the cache when warm.
func (s *Service) ListPublic(ctx context.Context) ([]*model.Doctor, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, publicListCacheKey).Bytes()
		if err == nil {
			var doctors []*model.Doctor
			if err := json.Unmarshal(cached, &doctors); err == nil {
				return doctors, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("doctor list cache read failed")
		}
	}

	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	public := make([]*model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		public = append(public, d.Public())
	}

	if s.cache != nil {
		if payload, err := json.Marshal(public); err == nil {
			if err := s.cache.Set(ctx, publicListCacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("doctor list cache write failed")
			}
		}
	}

	return public, nil
}

// List returns full doctor records for admin use.
func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

// Ledger returns the doctor's slots_booked map.
func (s *Service) Ledger(ctx context.Context, id uuid.UUID) (model.SlotLedger, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	ledger, err := s.slots.LedgerForDoctor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return ledger, nil
}

// UpdateProfile applies the doctor's own edits (fee, address, about,
// availability).
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Fee != nil {
		if *req.Fee <= 0 {
			return nil, apperrors.InvalidInput("fee must be positive", nil)
		}
		doctor.Fee = *req.Fee
	}
	if req.Address != nil {
		doctor.Address = req.Address
	}
	if req.About != nil {
		doctor.About = *req.About
	}
	if req.Available != nil {
		doctor.Available = *req.Available
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	s.invalidateCache(ctx)

	return doctor, nil
}

// ToggleAvailability flips the availability flag. Booking and
// cancellation never touch it.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doctor.Available = !doctor.Available
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	s.invalidateCache(ctx)

	return doctor, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publicListCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("doctor list cache invalidation failed")
	}
}
