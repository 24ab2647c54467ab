package model

import (
	"errors"
	"time"
)

var (
	ErrUnavailable     = errors.New("not enough free units for requested period")
	ErrInvalidRange    = errors.New("end date must be after start date")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidState    = errors.New("reservation is not active")
)

type Base struct {
	ID        string    `json:"id"` // uuid generated by the application
	CreatedAt time.Time `json:"created_at"`
}
