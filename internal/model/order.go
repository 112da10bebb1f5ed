package model

import (
	"time"

	"github.com/google/uuid"
)

// Order records intent to pay, created once per successful checkout
// session. Settled flips when the gateway's settlement callback lands.
type Order struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	AppointmentID   uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	PatientSnapshot PatientSnapshot `db:"patient_snapshot" json:"patient_snapshot"`
	Amount          int64           `db:"amount" json:"amount"`
	GatewayOrderID  string          `db:"gateway_order_id" json:"gateway_order_id"`
	Settled         bool            `db:"settled" json:"settled"`
	SettledAt       *time.Time      `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// CheckoutResponse carries the hosted checkout URL back to the client.
type CheckoutResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	CheckoutURL string    `json:"checkout_url"`
}
