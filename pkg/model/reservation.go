package model

import (
	"time"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Terminal reports whether a reservation in this status can never
// transition again.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

type Reservation struct {
	Base
	ProductID string            `json:"product_id"`
	OrderID   string            `json:"order_id"`
	Quantity  int               `json:"quantity"`
	StartsAt  time.Time         `json:"starts_at"`
	EndsAt    time.Time         `json:"ends_at"`
	Status    ReservationStatus `json:"status"`
}

// Overlaps compares two half-open intervals [s1, e1) and [s2, e2).
// A rental ending exactly when another starts is not a conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ValidatePeriod checks the common preconditions of every availability
// and reservation operation.
func ValidatePeriod(start, end time.Time, quantity int) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

type AvailabilityRequest struct {
	ProductID string    `json:"product_id"`
	StartsAt  time.Time `json:"start"`
	EndsAt    time.Time `json:"end"`
	Quantity  int       `json:"quantity"`
}

type AvailabilityResult struct {
	Available         bool `json:"available"`
	AvailableQuantity int  `json:"available_quantity"`
}
