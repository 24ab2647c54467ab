package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fleetyard/rentledger/pkg/model"
)

// memoryStore keeps the whole ledger in maps behind one mutex. The
// coarse lock plays the role of the product row lock: check-then-insert
// in Reserve runs as one critical section, so the no-oversell guarantee
// holds the same way it does against Postgres. Used by tests and local
// development without a database.
type memoryStore struct {
	mu           sync.RWMutex
	products     map[string]model.Product
	reservations map[string]model.Reservation
}

type MemoryProductDatabase struct {
	s *memoryStore
}

type MemoryReservationDatabase struct {
	s *memoryStore
}

// NewMemory returns product and reservation repositories backed by the
// same in-memory store.
func NewMemory() (*MemoryProductDatabase, *MemoryReservationDatabase) {
	s := &memoryStore{
		products:     make(map[string]model.Product),
		reservations: make(map[string]model.Reservation),
	}

	return &MemoryProductDatabase{s}, &MemoryReservationDatabase{s}
}

func (mp *MemoryProductDatabase) Add(_ context.Context, p model.Product) error {
	mp.s.mu.Lock()
	defer mp.s.mu.Unlock()

	mp.s.products[p.ID] = p
	return nil
}

func (mp *MemoryProductDatabase) Get(_ context.Context, id string) (model.Product, error) {
	mp.s.mu.RLock()
	defer mp.s.mu.RUnlock()

	p, ok := mp.s.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("can't query product: %w", ErrNotFound)
	}

	p.AvailableNow = p.TotalQuantity - mp.s.sumHeldNow(id)

	return p, nil
}

func (mp *MemoryProductDatabase) GetPage(_ context.Context, num, size int) ([]model.Product, int, error) {
	mp.s.mu.RLock()
	defer mp.s.mu.RUnlock()

	ps := make([]model.Product, 0, len(mp.s.products))
	for _, p := range mp.s.products {
		p.AvailableNow = p.TotalQuantity - mp.s.sumHeldNow(p.ID)
		ps = append(ps, p)
	}

	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})

	return page(ps, num, size), len(ps), nil
}

func (mr *MemoryReservationDatabase) Reserve(_ context.Context, res model.Reservation) error {
	mr.s.mu.Lock()
	defer mr.s.mu.Unlock()

	p, ok := mr.s.products[res.ProductID]
	if !ok {
		return fmt.Errorf("can't lock product: %w", ErrNotFound)
	}

	if res.Quantity > p.TotalQuantity {
		return model.ErrInvalidQuantity
	}

	reserved := mr.s.sumOverlapping(res.ProductID, res.StartsAt, res.EndsAt)
	if p.TotalQuantity-reserved < res.Quantity {
		return model.ErrUnavailable
	}

	mr.s.reservations[res.ID] = res
	return nil
}

func (mr *MemoryReservationDatabase) Availability(_ context.Context, productID string, start, end time.Time) (total, reserved int, err error) {
	mr.s.mu.RLock()
	defer mr.s.mu.RUnlock()

	p, ok := mr.s.products[productID]
	if !ok {
		return 0, 0, fmt.Errorf("can't query product: %w", ErrNotFound)
	}

	return p.TotalQuantity, mr.s.sumOverlapping(productID, start, end), nil
}

func (mr *MemoryReservationDatabase) Release(ctx context.Context, id string) (model.Reservation, error) {
	return mr.transition(ctx, id, model.ReservationCancelled)
}

func (mr *MemoryReservationDatabase) Complete(ctx context.Context, id string) (model.Reservation, error) {
	return mr.transition(ctx, id, model.ReservationCompleted)
}

func (mr *MemoryReservationDatabase) transition(_ context.Context, id string, to model.ReservationStatus) (model.Reservation, error) {
	mr.s.mu.Lock()
	defer mr.s.mu.Unlock()

	res, ok := mr.s.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("can't query reservation: %w", ErrNotFound)
	}

	if res.Status.Terminal() {
		return model.Reservation{}, fmt.Errorf("reservation is already %s: %w", res.Status, model.ErrInvalidState)
	}

	res.Status = to
	mr.s.reservations[id] = res

	return res, nil
}

func (mr *MemoryReservationDatabase) Get(_ context.Context, id string) (model.Reservation, error) {
	mr.s.mu.RLock()
	defer mr.s.mu.RUnlock()

	res, ok := mr.s.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("can't query reservation: %w", ErrNotFound)
	}

	return res, nil
}

func (mr *MemoryReservationDatabase) GetPage(_ context.Context, filter ReservationFilter, num, size int) ([]model.Reservation, int, error) {
	mr.s.mu.RLock()
	defer mr.s.mu.RUnlock()

	rs := make([]model.Reservation, 0, len(mr.s.reservations))
	for _, r := range mr.s.reservations {
		if filter.ProductID != "" && r.ProductID != filter.ProductID {
			continue
		}
		if filter.OrderID != "" && r.OrderID != filter.OrderID {
			continue
		}

		rs = append(rs, r)
	}

	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.After(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})

	return page(rs, num, size), len(rs), nil
}

// sumOverlapping must be called with at least the read lock held.
func (s *memoryStore) sumOverlapping(productID string, start, end time.Time) int {
	sum := 0
	for _, r := range s.reservations {
		if r.ProductID != productID || r.Status != model.ReservationActive {
			continue
		}
		if model.Overlaps(r.StartsAt, r.EndsAt, start, end) {
			sum += r.Quantity
		}
	}

	return sum
}

// sumHeldNow counts units held by active reservations covering the
// current instant, matching the available_now expression in SQL.
func (s *memoryStore) sumHeldNow(productID string) int {
	now := time.Now()

	sum := 0
	for _, r := range s.reservations {
		if r.ProductID != productID || r.Status != model.ReservationActive {
			continue
		}
		if !r.StartsAt.After(now) && now.Before(r.EndsAt) {
			sum += r.Quantity
		}
	}

	return sum
}

func page[T any](all []T, num, size int) []T {
	size, offset := pageBounds(num, size)
	if offset >= len(all) || size == 0 {
		return []T{}
	}

	end := offset + size
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end]
}
