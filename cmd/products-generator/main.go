package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/fleetyard/rentledger/pkg/config"
	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var cfg = config.New()

// words used for generating products' names
var (
	categories = []string{"Excavation", "Lifting", "Power", "Scaffolding", "Concrete", "Landscaping", "Cleaning", "Surveying"}
	adjectives = []string{"Heavy-Duty", "Compact", "Industrial", "Portable", "Electric", "Diesel", "Hydraulic", "Cordless"}
	items      = []string{"Excavator", "Generator", "Scissor Lift", "Jackhammer", "Mixer", "Trencher", "Pressure Washer", "Laser Level", "Plate Compactor", "Chainsaw"}
)

const insertWorkers = 4

func main() {
	t0 := time.Now()
	defer func() { log.Printf("Products generated. Elapsed: %s", time.Since(t0)) }()

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	if err := generate(db); err != nil {
		log.Fatalf("### Can't generate products: %v", err)
	}
}

func generate(db *sql.DB) error {
	repo := &database.ProductDatabase{DB: db}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(insertWorkers)

	for i := 0; i < cfg.ProductsCount; i++ {
		p := generateProduct()

		g.Go(func() error {
			if err := repo.Add(ctx, p); err != nil {
				return fmt.Errorf("can't add product %s: %w", p.Name, err)
			}
			return nil
		})

		if (i+1)%100 == 0 {
			log.Printf("Scheduled %d products\n", i+1)
		}
	}

	return g.Wait()
}

func generateProduct() model.Product {
	adj := adjectives[rand.Intn(len(adjectives))]
	category := categories[rand.Intn(len(categories))]
	item := items[rand.Intn(len(items))]

	total := 1 + rand.Intn(cfg.MaxUnitsPerProduct)

	return model.Product{
		Base:          model.Base{ID: uuid.NewString(), CreatedAt: time.Now()},
		Name:          fmt.Sprintf("%s %s", adj, item),
		Category:      category,
		DailyRateCent: (50 + rand.Intn(950)) * 100,
		TotalQuantity: total,
		AvailableNow:  total,
	}
}
