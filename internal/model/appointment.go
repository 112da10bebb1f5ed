package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is created when a slot is reserved and never physically
// deleted. Cancellation, completion and payment are independent flags;
// snapshots are frozen at booking time.
type Appointment struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	PatientSnapshot PatientSnapshot `db:"patient_snapshot" json:"patient_snapshot"`
	DoctorSnapshot  DoctorSnapshot  `db:"doctor_snapshot" json:"doctor_snapshot"`
	Amount          int64           `db:"amount" json:"amount"`
	SlotDate        string          `db:"slot_date" json:"slot_date"`
	SlotTime        string          `db:"slot_time" json:"slot_time"`
	BookedAt        time.Time       `db:"booked_at" json:"booked_at"`
	Cancelled       bool            `db:"cancelled" json:"cancelled"`
	IsCompleted     bool            `db:"is_completed" json:"is_completed"`
	Payment         bool            `db:"payment" json:"payment"`
}

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" binding:"required" validate:"required,uuid"`
	SlotDate string `json:"slot_date" binding:"required" validate:"required,datetime=2006-01-02"`
	SlotTime string `json:"slot_time" binding:"required" validate:"required"`
}

// AdminDashboard aggregates platform-wide counts.
type AdminDashboard struct {
	Doctors            int            `json:"doctors"`
	Patients           int            `json:"patients"`
	Appointments       int            `json:"appointments"`
	LatestAppointments []*Appointment `json:"latest_appointments"`
}
