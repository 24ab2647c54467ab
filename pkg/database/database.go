package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("record not found")
)

func New(addr, database, user, password string) (db *sql.DB, close func() error, err error) {
	url := fmt.Sprintf("postgres://%s:%s@%s/%s", user, password, addr, database)

	db, err = sql.Open("pgx", url)
	if err != nil {
		return nil, nil, err
	}

	// reservation traffic is much calmer than catalog browsing, a modest pool is enough
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, nil, err
	}

	return db, db.Close, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// pageBounds normalizes pagination input so that out-of-range values
// cannot turn into a negative OFFSET or slice index. Page numbers below
// one read the first page, a non-positive size yields an empty page.
func pageBounds(num, size int) (limit, offset int) {
	if num < 1 {
		num = 1
	}
	if size < 0 {
		size = 0
	}

	return size, (num - 1) * size
}
