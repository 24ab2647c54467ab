package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/google/uuid"
)

type Product interface {
	Create(ctx context.Context, name, category string, dailyRateCents, totalQuantity int) (model.Product, error)
	Get(ctx context.Context, id string) (model.Product, error)
	ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Product, int, error)
}

type ProductGeneric struct {
	ProductRepository database.ProductRepository
}

func (pg *ProductGeneric) Create(ctx context.Context, name, category string, dailyRateCents, totalQuantity int) (model.Product, error) {
	if totalQuantity < 0 {
		return model.Product{}, model.ErrInvalidQuantity
	}

	p := model.Product{
		Base:          model.Base{ID: uuid.NewString(), CreatedAt: time.Now()},
		Name:          name,
		Category:      category,
		DailyRateCent: dailyRateCents,
		TotalQuantity: totalQuantity,
		AvailableNow:  totalQuantity,
	}

	if err := pg.ProductRepository.Add(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("can't add product to DB: %w", err)
	}

	return p, nil
}

func (pg *ProductGeneric) Get(ctx context.Context, id string) (model.Product, error) {
	return pg.ProductRepository.Get(ctx, id)
}

func (pg *ProductGeneric) ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Product, int, error) {
	return pg.ProductRepository.GetPage(ctx, pageNum, pageSize)
}
