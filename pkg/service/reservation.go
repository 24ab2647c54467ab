package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/google/uuid"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 20
)

// BulkAvailability pairs one request of a bulk check with its result.
// Items are computed independently of each other.
type BulkAvailability struct {
	model.AvailabilityRequest
	Result model.AvailabilityResult
	Err    error
}

type Reservation interface {
	CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (model.AvailabilityResult, error)
	CheckAvailabilityBulk(ctx context.Context, reqs []model.AvailabilityRequest) []BulkAvailability
	Reserve(ctx context.Context, productID, orderID string, start, end time.Time, quantity int) (model.Reservation, error)
	Release(ctx context.Context, id string) (model.Reservation, error)
	Complete(ctx context.Context, id string) (model.Reservation, error)
	ListPage(ctx context.Context, filter database.ReservationFilter, pageNum, pageSize int) ([]model.Reservation, int, error)
}

// ReservationGeneric represents an implementation of Reservation interface containing core logics
// which can be wrapped in other implementations contained in reservation_*.go.
type ReservationGeneric struct {
	ReservationRepository database.ReservationRepository
	AttemptRepository     database.AttemptRepository // optional audit sink
}

func (rg *ReservationGeneric) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (model.AvailabilityResult, error) {
	if err := model.ValidatePeriod(req.StartsAt, req.EndsAt, req.Quantity); err != nil {
		return model.AvailabilityResult{}, err
	}

	total, reserved, err := rg.ReservationRepository.Availability(ctx, req.ProductID, req.StartsAt, req.EndsAt)
	if err != nil {
		return model.AvailabilityResult{}, fmt.Errorf("can't check availability: %w", err)
	}

	free := total - reserved

	return model.AvailabilityResult{
		Available:         free >= req.Quantity,
		AvailableQuantity: max(free, 0),
	}, nil
}

func (rg *ReservationGeneric) CheckAvailabilityBulk(ctx context.Context, reqs []model.AvailabilityRequest) []BulkAvailability {
	out := make([]BulkAvailability, len(reqs))
	for i, req := range reqs {
		out[i].AvailabilityRequest = req
		out[i].Result, out[i].Err = rg.CheckAvailability(ctx, req)
	}

	return out
}

func (rg *ReservationGeneric) Reserve(ctx context.Context, productID, orderID string, start, end time.Time, quantity int) (_ model.Reservation, err error) {
	if err := model.ValidatePeriod(start, end, quantity); err != nil {
		return model.Reservation{}, err
	}

	defer func() {
		if rg.AttemptRepository == nil || !shouldSaveAttempt(err) {
			return
		}

		a := model.ReserveAttempt{
			ProductID: productID,
			OrderID:   orderID,
			Quantity:  quantity,
			StartsAt:  start,
			EndsAt:    end,
			CreatedAt: time.Now(),
		}
		if err != nil {
			a.Error = err.Error()
		}

		if err := rg.AttemptRepository.Add(ctx, a); err != nil {
			slog.Error("can't save reserve attempt to DB", slog.Any("error", err))
		}
	}()

	res := model.Reservation{
		Base:      model.Base{ID: uuid.NewString(), CreatedAt: time.Now()},
		ProductID: productID,
		OrderID:   orderID,
		Quantity:  quantity,
		StartsAt:  start,
		EndsAt:    end,
		Status:    model.ReservationActive,
	}

	// the repository re-checks free units under the product lock, which
	// is the availability check that actually counts
	if err := rg.ReservationRepository.Reserve(ctx, res); err != nil {
		return model.Reservation{}, fmt.Errorf("can't reserve units in DB: %w", err)
	}

	return res, nil
}

// shouldSaveAttempt keeps the audit trail focused on demand signal:
// successes and capacity denials, not malformed input.
func shouldSaveAttempt(err error) bool {
	return err == nil || errors.Is(err, model.ErrUnavailable)
}

func (rg *ReservationGeneric) Release(ctx context.Context, id string) (model.Reservation, error) {
	return rg.ReservationRepository.Release(ctx, id)
}

func (rg *ReservationGeneric) Complete(ctx context.Context, id string) (model.Reservation, error) {
	return rg.ReservationRepository.Complete(ctx, id)
}

func (rg *ReservationGeneric) ListPage(ctx context.Context, filter database.ReservationFilter, pageNum, pageSize int) ([]model.Reservation, int, error) {
	return rg.ReservationRepository.GetPage(ctx, filter, pageNum, pageSize)
}
