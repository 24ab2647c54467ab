package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fleetyard/rentledger/pkg/model"
)

type AttemptRepository interface {
	Add(context.Context, ...model.ReserveAttempt) error
}

type AttemptDatabase struct {
	DB *sql.DB
}

func (ad *AttemptDatabase) Add(ctx context.Context, as ...model.ReserveAttempt) error {
	if len(as) == 0 {
		return nil
	}

	q := buildBatchQuery(len(as))

	args := make([]any, 0, len(as)*7)
	for _, a := range as {
		errMsg := sql.NullString{String: a.Error, Valid: a.Error != ""}

		args = append(args, a.ProductID, a.OrderID, a.Quantity, a.StartsAt, a.EndsAt, errMsg, a.CreatedAt)
	}

	res, err := ad.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert reserve attempts: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if int(affected) != len(as) {
		return fmt.Errorf("expected %d records to be inserted, got %d", len(as), affected)
	}

	return nil
}

func buildBatchQuery(rows int) string {
	sb := strings.Builder{}
	sb.WriteString("insert into reserve_attempts (product_id, order_id, quantity, starts_at, ends_at, error, created_at) values ")

	phs := make([]string, 0, rows)

	for i := 0; i < rows; i++ {
		phs = append(phs, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7))
	}

	sb.WriteString(strings.Join(phs, ","))
	return sb.String()
}

// AttemptBatchingDatabase buffers attempts and flushes them in batches,
// either when the buffer fills up or on the ticker. Attempts are audit
// data: losing a batch on a crash is acceptable, slowing down Reserve
// is not.
type AttemptBatchingDatabase struct {
	buffer    []model.ReserveAttempt
	ticker    *time.Ticker
	batchSize int
	mu        sync.Mutex

	*AttemptDatabase
}

func NewAttemptBatchingDatabase(db *sql.DB, batchSize int, flushInterval time.Duration) *AttemptBatchingDatabase {
	ad := &AttemptBatchingDatabase{
		buffer:    make([]model.ReserveAttempt, 0, batchSize),
		ticker:    time.NewTicker(flushInterval),
		batchSize: batchSize,

		AttemptDatabase: &AttemptDatabase{db},
	}

	go func() {
		for range ad.ticker.C {
			if err := ad.flush(); err != nil {
				slog.Error("can't flush attempts buffer", slog.Any("error", err))
			}
		}
	}()

	return ad
}

func (ad *AttemptBatchingDatabase) Add(ctx context.Context, as ...model.ReserveAttempt) error {
	if len(as) == 0 {
		return nil
	}

	ad.mu.Lock()
	ad.buffer = append(ad.buffer, as...)
	shouldFlush := len(ad.buffer) >= ad.batchSize
	ad.mu.Unlock()

	if shouldFlush {
		go func() {
			if err := ad.flush(); err != nil {
				slog.Error("can't flush attempts buffer", slog.Any("error", err))
			}
		}()
	}

	return nil
}

func (ad *AttemptBatchingDatabase) flush() error {
	ad.mu.Lock()
	if len(ad.buffer) == 0 {
		ad.mu.Unlock()
		return nil
	}

	batch := make([]model.ReserveAttempt, len(ad.buffer))
	copy(batch, ad.buffer)
	ad.buffer = ad.buffer[:0]
	ad.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := ad.AttemptDatabase.Add(ctx, batch...); err != nil {
		return fmt.Errorf("can't insert batch: %w", err)
	}

	return nil
}
