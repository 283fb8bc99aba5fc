package domain

import "time"

// PaymentRecord is the transaction written when a handover completes.
type PaymentRecord struct {
	ID              string
	RequestID       string
	VehicleID       string
	DriverID        string
	Amount          float64
	TipAmount       float64
	PaymentMethod   PaymentMethod
	DurationMinutes int
	CreatedAt       time.Time
}
