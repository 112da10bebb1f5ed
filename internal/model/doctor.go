package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlotLedger maps a calendar date (YYYY-MM-DD) to the time-slot labels
// already reserved on that date. A label appears at most once per date.
type SlotLedger map[string][]string

// Doctor represents a bookable practitioner. The slot ledger itself
// lives in its own table; SlotsBooked is populated for API responses.
type Doctor struct {
	Base
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Image        string     `db:"image" json:"image"`
	Speciality   string     `db:"speciality" json:"speciality"`
	Degree       string     `db:"degree" json:"degree"`
	Experience   string     `db:"experience" json:"experience"`
	About        string     `db:"about" json:"about"`
	Fee          int64      `db:"fee" json:"fee"`
	Available    bool       `db:"available" json:"available"`
	Address      JSONMap    `db:"address" json:"address"`
	SlotsBooked  SlotLedger `db:"-" json:"slots_booked,omitempty"`
}

// DoctorSnapshot is an immutable copy of doctor data captured at
// booking time. It deliberately excludes the slot ledger.
type DoctorSnapshot struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Fee        int64   `json:"fee"`
	Address    JSONMap `json:"address"`
}

func (s DoctorSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *DoctorSnapshot) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for DoctorSnapshot: %T", src)
	}
	return json.Unmarshal(b, s)
}

// Snapshot captures the doctor's bookable state sans ledger.
func (d *Doctor) Snapshot() DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID.String(),
		Name:       d.Name,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Fee:        d.Fee,
		Address:    d.Address,
	}
}

// Public strips credentials for the unauthenticated doctor list.
func (d *Doctor) Public() *Doctor {
	out := *d
	out.Email = ""
	out.PasswordHash = ""
	return &out
}

type CreateDoctorRequest struct {
	Name       string `form:"name" binding:"required"`
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required,min=8"`
	Speciality string `form:"speciality" binding:"required"`
	Degree     string `form:"degree" binding:"required"`
	Experience string `form:"experience"`
	About      string `form:"about"`
	Fee        int64  `form:"fee" binding:"required,gt=0"`
	Address    string `form:"address" binding:"required"`
}

type UpdateDoctorProfileRequest struct {
	Fee       *int64  `json:"fee" binding:"omitempty,gt=0"`
	Address   JSONMap `json:"address"`
	About     *string `json:"about"`
	Available *bool   `json:"available"`
}

// DoctorDashboard aggregates a doctor's earnings and activity.
type DoctorDashboard struct {
	Earnings           int64          `json:"earnings"`
	Appointments       int            `json:"appointments"`
	Patients           int            `json:"patients"`
	LatestAppointments []*Appointment `json:"latest_appointments"`
}
