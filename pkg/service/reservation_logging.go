package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fleetyard/rentledger/pkg/model"
)

type ReservationLogging struct {
	Reservation
}

func (rl *ReservationLogging) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (res model.AvailabilityResult, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("product_id", req.ProductID),
			slog.Time("start", req.StartsAt),
			slog.Time("end", req.EndsAt),
			slog.Int("quantity", req.Quantity),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to check availability", slog.Any("error", err))
		} else {
			log.Debug("availability checked", slog.Bool("available", res.Available))
		}
	}(time.Now())

	return rl.Reservation.CheckAvailability(ctx, req)
}

func (rl *ReservationLogging) Reserve(ctx context.Context, productID, orderID string, start, end time.Time, quantity int) (res model.Reservation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("product_id", productID),
			slog.String("order_id", orderID),
			slog.Int("quantity", quantity),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to reserve units", slog.Any("error", err))
		} else {
			log.Debug("units reserved", slog.String("reservation_id", res.ID))
		}
	}(time.Now())

	return rl.Reservation.Reserve(ctx, productID, orderID, start, end, quantity)
}

func (rl *ReservationLogging) Release(ctx context.Context, id string) (res model.Reservation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("reservation_id", id),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to release reservation", slog.Any("error", err))
		} else {
			log.Debug("reservation released")
		}
	}(time.Now())

	return rl.Reservation.Release(ctx, id)
}

func (rl *ReservationLogging) Complete(ctx context.Context, id string) (res model.Reservation, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.String("reservation_id", id),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to complete reservation", slog.Any("error", err))
		} else {
			log.Debug("reservation completed")
		}
	}(time.Now())

	return rl.Reservation.Complete(ctx, id)
}
