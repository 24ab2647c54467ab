package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fleetyard/rentledger/pkg/model"
)

type ReservationFilter struct {
	ProductID string
	OrderID   string
}

type ReservationRepository interface {
	// Reserve atomically re-checks free units for the reservation's
	// period and inserts it with status=active. All writers for the
	// same product serialize on the product row lock, so two callers
	// can never both pass the check and oversell.
	Reserve(ctx context.Context, res model.Reservation) error
	// Availability returns the product's total units and the units held
	// by active reservations overlapping [start, end). Unserialized
	// read, may observe a slightly stale ledger; Reserve re-checks.
	Availability(ctx context.Context, productID string, start, end time.Time) (total, reserved int, err error)
	// Release and Complete move an active reservation to its terminal
	// status and return the updated record.
	Release(ctx context.Context, id string) (model.Reservation, error)
	Complete(ctx context.Context, id string) (model.Reservation, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	GetPage(ctx context.Context, filter ReservationFilter, num, size int) ([]model.Reservation, int, error)
}

type ReservationDatabase struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

func NewReservationDatabase(db *sql.DB) (*ReservationDatabase, error) {
	rd := &ReservationDatabase{
		db,
		make(map[string]*sql.Stmt),
	}

	for _, s := range stmts {
		prepared, err := db.Prepare(s.query)
		if err != nil {
			return nil, fmt.Errorf("can't prepare query '%s': %w", s.name, err)
		}

		rd.stmts[s.name] = prepared
	}

	return rd, nil
}

type preparedStmt struct {
	name  string
	query string
}

var (
	stmts = []preparedStmt{
		{
			name: "product_total",
			query: `
				select total_quantity
				from products
				where id = $1
			`,
		},
		{
			// half-open overlap: [s1,e1) x [s2,e2) conflict iff s1 < e2 and s2 < e1
			name: "sum_overlapping",
			query: `
				select coalesce(sum(quantity), 0)
				from reservations
				where product_id = $1
				  and status = 'active'
				  and starts_at < $3
				  and $2 < ends_at
			`,
		},
	}
)

func (rd *ReservationDatabase) Reserve(ctx context.Context, res model.Reservation) error {
	return WithTx(ctx, rd.db, func(tx *sql.Tx) error {
		// the product row lock is the per-product serialization point:
		// no other Reserve for this product can read the ledger until
		// this tx commits or rolls back
		const lockProduct = `
			select total_quantity
			from products
			where id = $1
			for update
		`

		var total int
		if err := tx.QueryRowContext(ctx, lockProduct, res.ProductID).Scan(&total); err != nil {
			return fmt.Errorf("can't lock product: %w", mapError(err))
		}

		if res.Quantity > total {
			return model.ErrInvalidQuantity
		}

		const sumOverlapping = `
			select coalesce(sum(quantity), 0)
			from reservations
			where product_id = $1
			  and status = 'active'
			  and starts_at < $3
			  and $2 < ends_at
		`

		var reserved int
		if err := tx.QueryRowContext(ctx, sumOverlapping, res.ProductID, res.StartsAt, res.EndsAt).Scan(&reserved); err != nil {
			return fmt.Errorf("can't sum overlapping reservations: %w", err)
		}

		if total-reserved < res.Quantity {
			return model.ErrUnavailable
		}

		const insertReservation = `
			insert into reservations (id, product_id, order_id, quantity, starts_at, ends_at, status, created_at)
			values ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := tx.ExecContext(ctx, insertReservation,
			res.ID, res.ProductID, res.OrderID, res.Quantity, res.StartsAt, res.EndsAt, res.Status, res.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("can't insert reservation: %w", err)
		}

		return nil
	})
}

func (rd *ReservationDatabase) Availability(ctx context.Context, productID string, start, end time.Time) (total, reserved int, err error) {
	if err := rd.stmts["product_total"].QueryRowContext(ctx, productID).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("can't query product: %w", mapError(err))
	}

	if err := rd.stmts["sum_overlapping"].QueryRowContext(ctx, productID, start, end).Scan(&reserved); err != nil {
		return 0, 0, fmt.Errorf("can't sum overlapping reservations: %w", err)
	}

	return total, reserved, nil
}

func (rd *ReservationDatabase) Release(ctx context.Context, id string) (model.Reservation, error) {
	return rd.transition(ctx, id, model.ReservationCancelled)
}

func (rd *ReservationDatabase) Complete(ctx context.Context, id string) (model.Reservation, error) {
	return rd.transition(ctx, id, model.ReservationCompleted)
}

// transition moves an active reservation to a terminal status. The
// status guard in the update makes the transition atomic; no returned
// row means the reservation is missing or already terminal, which the
// follow-up select tells apart.
func (rd *ReservationDatabase) transition(ctx context.Context, id string, to model.ReservationStatus) (model.Reservation, error) {
	const q = `
		update reservations
		set status = $2
		where id = $1
		  and status = 'active'
		returning id, product_id, order_id, quantity, starts_at, ends_at, status, created_at
	`

	var r model.Reservation
	err := rd.db.QueryRowContext(ctx, q, id, to).Scan(
		&r.ID, &r.ProductID, &r.OrderID, &r.Quantity, &r.StartsAt, &r.EndsAt, &r.Status, &r.CreatedAt,
	)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, fmt.Errorf("can't update reservation's status: %w", err)
	}

	var status model.ReservationStatus
	err = rd.db.QueryRowContext(ctx, `select status from reservations where id = $1`, id).Scan(&status)
	switch {
	case err != nil:
		return model.Reservation{}, fmt.Errorf("can't query reservation: %w", mapError(err))
	case status.Terminal():
		return model.Reservation{}, fmt.Errorf("reservation is already %s: %w", status, model.ErrInvalidState)
	default:
		// the guard lost a race with another transition that has not
		// committed yet, surface it the same way
		return model.Reservation{}, model.ErrInvalidState
	}
}

func (rd *ReservationDatabase) Get(ctx context.Context, id string) (model.Reservation, error) {
	const q = `
		select id, product_id, order_id, quantity, starts_at, ends_at, status, created_at
		from reservations
		where id = $1
	`

	var r model.Reservation
	err := rd.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.ProductID, &r.OrderID, &r.Quantity, &r.StartsAt, &r.EndsAt, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("can't query reservation: %w", mapError(err))
	}

	return r, nil
}

func (rd *ReservationDatabase) GetPage(ctx context.Context, filter ReservationFilter, num, size int) ([]model.Reservation, int, error) {
	where := "true"
	args := []any{}

	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		where += fmt.Sprintf(" and product_id = $%d", len(args))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		where += fmt.Sprintf(" and order_id = $%d", len(args))
	}

	q := `select count(*) from reservations where ` + where

	var total int
	if err := rd.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count reservations: %w", err)
	}

	limit, offset := pageBounds(num, size)
	args = append(args, limit, offset)
	q = fmt.Sprintf(`
		select id, product_id, order_id, quantity, starts_at, ends_at, status, created_at
		from reservations
		where %s
		order by created_at desc, id
		limit $%d offset $%d
	`, where, len(args)-1, len(args))

	rows, err := rd.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query reservations: %w", err)
	}
	defer rows.Close()

	rs := make([]model.Reservation, 0, size)
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.ProductID, &r.OrderID, &r.Quantity, &r.StartsAt, &r.EndsAt, &r.Status, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("can't scan reservation: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over reservations: %w", err)
	}

	return rs, total, nil
}
