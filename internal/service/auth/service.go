package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/config"
	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	"github.com/clinichq/booking-api/pkg/auth"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service issues tokens for the three actor roles. Admin credentials
// come from configuration; there is no admin record in the database.
type Service struct {
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	admin    config.AdminConfig
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	admin config.AdminConfig,
) *Service {
	return &Service{
		patients: patients,
		doctors:  doctors,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		admin:    admin,
	}
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterRequest) (*model.Patient, string, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", apperrors.InvalidInput("password does not meet requirements", err)
	}

	patient := &model.Patient{
		Base:         model.Base{ID: uuid.New()},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", apperrors.Conflict("email already registered")
		}
		return nil, "", fmt.Errorf("failed to create patient: %w", err)
	}

	token, err := s.jwtSvc.GenerateToken(patient.ID, model.ActorPatient, patient.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return patient, token, nil
}

func (s *Service) LoginPatient(ctx context.Context, email, password string) (string, error) {
	patient, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load patient: %w", err)
	}

	if err := s.hasher.Compare(patient.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateToken(patient.ID, model.ActorPatient, patient.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *Service) LoginDoctor(ctx context.Context, email, password string) (string, error) {
	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load doctor: %w", err)
	}

	if err := s.hasher.Compare(doctor.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateToken(doctor.ID, model.ActorDoctor, doctor.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *Service) LoginAdmin(_ context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateToken(uuid.Nil, model.ActorAdmin, email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
