package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/internal/repository"
	apperrors "github.com/clinichq/booking-api/pkg/errors"
	"github.com/clinichq/booking-api/pkg/media"
)

// Service manages patient profiles.
type Service struct {
	patients repository.PatientRepository
	uploader media.Uploader
}

func NewService(patients repository.PatientRepository, uploader media.Uploader) *Service {
	return &Service{
		patients: patients,
		uploader: uploader,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// Update applies profile edits. image may be nil.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, image io.Reader) (*model.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Address != nil {
		var address model.JSONMap
		if err := json.Unmarshal([]byte(*req.Address), &address); err != nil {
			return nil, apperrors.InvalidInput("address must be a JSON object", err)
		}
		patient.Address = address
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}

	if image != nil {
		url, err := s.uploader.Upload(ctx, image, "patients")
		if err != nil {
			return nil, apperrors.Upstream("image upload failed", err)
		}
		patient.Image = url
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}
