package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetyard/rentledger/pkg/limiter"
	"github.com/fleetyard/rentledger/pkg/model"
)

var ErrLimitExceeded = errors.New("order exceeded its reservations limit")

// ReservationLimiting is a wrapper over Reservation service
// which makes sure that a single order can hold no more than Limit reservations per hour.
//
// If failed to check limits, the behavior depends on FailOpen flag. If set, current request is allowed.
// Otherwise, an error will be returned.
type ReservationLimiting struct {
	Reservation

	Limiter  *limiter.Limiter
	FailOpen bool
}

func (rl *ReservationLimiting) Reserve(ctx context.Context, productID, orderID string, start, end time.Time, quantity int) (model.Reservation, error) {
	exceeded, err := rl.Limiter.LimitExceeded(ctx, orderID)
	if err != nil {
		if !rl.FailOpen {
			return model.Reservation{}, fmt.Errorf("can't check if limit exceeded: %w", err)
		}

		slog.Error("can't check if limit exceeded", slog.Any("error", err))
	}

	if exceeded {
		return model.Reservation{}, ErrLimitExceeded
	}

	res, err := rl.Reservation.Reserve(ctx, productID, orderID, start, end, quantity)
	if err != nil {
		return res, err
	}

	if _, err := rl.Limiter.Increment(ctx, orderID); err != nil {
		slog.Error("can't increment order's limit", slog.Any("error", err))
	}

	return res, nil
}
