package model

import (
	"time"
)

// ReserveAttempt is an audit record of a reservation attempt, kept for
// demand analysis: denied attempts show where capacity runs out.
type ReserveAttempt struct {
	ProductID string
	OrderID   string
	Quantity  int
	StartsAt  time.Time
	EndsAt    time.Time
	Error     string
	CreatedAt time.Time
}
