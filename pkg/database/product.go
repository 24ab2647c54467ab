package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetyard/rentledger/pkg/model"
)

type ProductRepository interface {
	Add(ctx context.Context, p model.Product) error
	// Get returns the product with AvailableNow derived from the
	// reservation ledger for the current instant.
	Get(ctx context.Context, id string) (model.Product, error)
	GetPage(ctx context.Context, num, size int) ([]model.Product, int, error)
}

type ProductDatabase struct {
	DB *sql.DB
}

// availableNowExpr subtracts units held by active reservations covering
// the current instant. Half-open periods: a reservation holds units at
// instant t iff starts_at <= t < ends_at.
const availableNowExpr = `
	p.total_quantity - coalesce((
		select sum(r.quantity)
		from reservations r
		where r.product_id = p.id
		  and r.status = 'active'
		  and r.starts_at <= now() and now() < r.ends_at
	), 0)
`

func (pd *ProductDatabase) Add(ctx context.Context, p model.Product) error {
	q := `
		insert into products (id, name, category, daily_rate_cents, total_quantity, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`
	if _, err := pd.DB.ExecContext(ctx, q, p.ID, p.Name, p.Category, p.DailyRateCent, p.TotalQuantity, p.CreatedAt); err != nil {
		return fmt.Errorf("can't insert product: %w", err)
	}

	return nil
}

func (pd *ProductDatabase) Get(ctx context.Context, id string) (model.Product, error) {
	q := `
		select p.id, p.name, p.category, p.daily_rate_cents, p.total_quantity, p.created_at, ` + availableNowExpr + `
		from products p
		where p.id = $1
	`

	var p model.Product
	err := pd.DB.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.DailyRateCent, &p.TotalQuantity, &p.CreatedAt, &p.AvailableNow,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("can't query product: %w", mapError(err))
	}

	return p, nil
}

func (pd *ProductDatabase) GetPage(ctx context.Context, num, size int) ([]model.Product, int, error) {
	q := `
		select count(*) from products
	`
	var total int
	if err := pd.DB.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count products: %w", err)
	}

	limit, offset := pageBounds(num, size)
	q = `
		select p.id, p.name, p.category, p.daily_rate_cents, p.total_quantity, p.created_at, ` + availableNowExpr + `
		from products p
		order by p.created_at, p.id
		limit $1 offset $2
	`
	rows, err := pd.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query products: %w", err)
	}
	defer rows.Close()

	ps := make([]model.Product, 0, size)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.DailyRateCent, &p.TotalQuantity, &p.CreatedAt, &p.AvailableNow); err != nil {
			return nil, 0, fmt.Errorf("can't scan product: %w", err)
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over products: %w", err)
	}

	return ps, total, nil
}
