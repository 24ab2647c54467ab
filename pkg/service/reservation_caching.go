package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	availabilityKeyPrefix = "availability:"
	ledgerGenKeyPrefix    = "ledgergen:"

	// counters of products nobody touches for a day get evicted; losing
	// one only costs a single recomputed read, entries carry their own TTL
	ledgerGenTTL = 24 * time.Hour
)

// ReservationCaching is a caching layer which is intended to be called before ReservationGeneric.
// It caches availability reads, which dominate the traffic: storefronts poll
// availability far more often than orders are confirmed.
//
// Cached entries are keyed by the product's ledger generation, a counter
// bumped on every successful mutation of that product's reservations.
// A bump leaves stale entries behind to expire by TTL instead of scanning
// for them. Reserve itself never consults the cache: the in-transaction
// check is the final authority.
type ReservationCaching struct {
	Reservation

	Redis *redis.Client
	TTL   time.Duration

	group singleflight.Group
}

// availability:product_id:gen:start_unix:end_unix:qty -> available|free
type availabilityCacheValue struct {
	available bool
	free      int
}

func (v availabilityCacheValue) String() string {
	a := "0"
	if v.available {
		a = "1"
	}

	return a + "|" + strconv.Itoa(v.free)
}

// CheckAvailability consults redis first, collapses concurrent misses
// with singleflight, fall back to the wrapped service. Redis errors are
// logged and never returned.
func (rc *ReservationCaching) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (model.AvailabilityResult, error) {
	if err := model.ValidatePeriod(req.StartsAt, req.EndsAt, req.Quantity); err != nil {
		return model.AvailabilityResult{}, err
	}

	gen, ok := rc.ledgerGen(ctx, req.ProductID)
	if !ok {
		// can't tell whether a cached entry is current, skip the cache
		return rc.Reservation.CheckAvailability(ctx, req)
	}

	key := availabilityCacheKey(req, gen)

	val, err := rc.Redis.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		// do nothing
	case err != nil:
		slog.Error("can't get availability from redis", slog.Any("error", err))

	default:
		acv, err := parseAvailabilityCacheVal(val)
		if err != nil {
			slog.Error("can't parse availability cache value", slog.String("val", val), slog.Any("error", err))
			break
		}

		return model.AvailabilityResult{Available: acv.available, AvailableQuantity: acv.free}, nil
	}

	// slower path - compute from the ledger, once per key at a time
	v, err, _ := rc.group.Do(key, func() (any, error) {
		res, err := rc.Reservation.CheckAvailability(ctx, req)
		if err != nil {
			return model.AvailabilityResult{}, err
		}

		acv := availabilityCacheValue{res.Available, res.AvailableQuantity}
		if err := rc.Redis.Set(ctx, key, acv.String(), rc.TTL).Err(); err != nil {
			slog.Error("can't set availability in redis", slog.Any("error", err))
		}

		return res, nil
	})
	if err != nil {
		return model.AvailabilityResult{}, err
	}

	return v.(model.AvailabilityResult), nil
}

func (rc *ReservationCaching) Reserve(ctx context.Context, productID, orderID string, start, end time.Time, quantity int) (model.Reservation, error) {
	res, err := rc.Reservation.Reserve(ctx, productID, orderID, start, end, quantity)
	if err != nil {
		return res, err
	}

	rc.bumpLedgerGen(ctx, productID)
	return res, nil
}

func (rc *ReservationCaching) Release(ctx context.Context, id string) (model.Reservation, error) {
	res, err := rc.Reservation.Release(ctx, id)
	if err != nil {
		return res, err
	}

	rc.bumpLedgerGen(ctx, res.ProductID)
	return res, nil
}

func (rc *ReservationCaching) Complete(ctx context.Context, id string) (model.Reservation, error) {
	res, err := rc.Reservation.Complete(ctx, id)
	if err != nil {
		return res, err
	}

	rc.bumpLedgerGen(ctx, res.ProductID)
	return res, nil
}

func (rc *ReservationCaching) ledgerGen(ctx context.Context, productID string) (int64, bool) {
	gen, err := rc.Redis.Get(ctx, ledgerGenKey(productID)).Int64()
	switch {
	case err == redis.Nil:
		return 0, true
	case err != nil:
		slog.Error("can't get ledger generation from redis", slog.Any("error", err))
		return 0, false
	}

	return gen, true
}

func (rc *ReservationCaching) bumpLedgerGen(ctx context.Context, productID string) {
	key := ledgerGenKey(productID)

	if err := rc.Redis.Incr(ctx, key).Err(); err != nil {
		slog.Error("can't bump ledger generation in redis", slog.Any("error", err))
		return
	}

	if err := rc.Redis.Expire(ctx, key, ledgerGenTTL).Err(); err != nil {
		slog.Error("can't set ledger generation expiration", slog.Any("error", err))
	}
}

func ledgerGenKey(productID string) string {
	return ledgerGenKeyPrefix + productID
}

func availabilityCacheKey(req model.AvailabilityRequest, gen int64) string {
	return availabilityKeyPrefix + req.ProductID +
		":" + strconv.FormatInt(gen, 10) +
		":" + strconv.FormatInt(req.StartsAt.Unix(), 10) +
		":" + strconv.FormatInt(req.EndsAt.Unix(), 10) +
		":" + strconv.Itoa(req.Quantity)
}

func parseAvailabilityCacheVal(val string) (availabilityCacheValue, error) {
	split := strings.Split(val, "|")
	if len(split) != 2 {
		return availabilityCacheValue{}, fmt.Errorf("expected val to consist of 2 parts, got %d", len(split))
	}

	var acv availabilityCacheValue

	switch split[0] {
	case "0":
		acv.available = false
	case "1":
		acv.available = true
	default:
		return availabilityCacheValue{}, fmt.Errorf("unexpected availability flag %q", split[0])
	}

	free, err := strconv.Atoi(split[1])
	if err != nil {
		return availabilityCacheValue{}, fmt.Errorf("can't parse free units: %w", err)
	}

	acv.free = free
	return acv, nil
}
