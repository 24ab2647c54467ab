package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetyard/rentledger/pkg/cache"
	"github.com/fleetyard/rentledger/pkg/config"
	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/limiter"
	"github.com/fleetyard/rentledger/pkg/server"
	"github.com/fleetyard/rentledger/pkg/service"
	"github.com/redis/go-redis/v9"
)

const (
	gracefulTimeout = time.Second * 15
)

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	redis, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	reservationSvc, productSvc, err := composeServices(db, redis, cfg)
	if err != nil {
		log.Fatalf("### Can't compose services: %v", err)
	}

	srv, err := server.New(cfg.ListenAddr, reservationSvc, productSvc)
	if err != nil {
		log.Fatalf("### Can't create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("can't shut down server gracefully", slog.Any("error", err))
	}
}

func composeServices(db *sql.DB, redis *redis.Client, cfg *config.Config) (reservation service.Reservation, product service.Product, err error) {
	reservationDB, err := database.NewReservationDatabase(db)
	if err != nil {
		return nil, nil, fmt.Errorf("can't init reservation database: %w", err)
	}

	reservation = &service.ReservationGeneric{
		ReservationRepository: reservationDB,
		AttemptRepository:     database.NewAttemptBatchingDatabase(db, cfg.AttemptsBatchSize, cfg.AttemptsFlushInterval),
	}

	if cfg.CacheAvailability {
		reservation = &service.ReservationCaching{
			Reservation: reservation,
			Redis:       redis,
			TTL:         cfg.AvailabilityCacheTTL,
		}
	}

	reservation = &service.ReservationLimiting{
		Reservation: reservation,
		Limiter:     &limiter.Limiter{Redis: redis, Limit: cfg.ReservationsLimit},
		FailOpen:    cfg.LimiterFailOpen,
	}
	reservation = &service.ReservationLogging{Reservation: reservation}

	product = &service.ProductGeneric{
		ProductRepository: &database.ProductDatabase{DB: db},
	}

	return reservation, product, nil
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
