package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Patient represents a registered user who books appointments.
type Patient struct {
	Base
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Image        string     `db:"image" json:"image"`
	Phone        string     `db:"phone" json:"phone"`
	Address      JSONMap    `db:"address" json:"address"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender       string     `db:"gender" json:"gender"`
}

// PatientSnapshot is an immutable copy of patient data captured at
// booking time.
type PatientSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
	Phone string `json:"phone"`
}

func (s PatientSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *PatientSnapshot) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for PatientSnapshot: %T", src)
	}
	return json.Unmarshal(b, s)
}

// Snapshot captures the patient's contact data.
func (p *Patient) Snapshot() PatientSnapshot {
	return PatientSnapshot{
		ID:    p.ID.String(),
		Name:  p.Name,
		Email: p.Email,
		Image: p.Image,
		Phone: p.Phone,
	}
}

type UpdatePatientRequest struct {
	Name        *string    `form:"name"`
	Phone       *string    `form:"phone"`
	Address     *string    `form:"address"`
	DateOfBirth *time.Time `form:"date_of_birth" time_format:"2006-01-02"`
	Gender      *string    `form:"gender" binding:"omitempty,oneof=male female other"`
}
