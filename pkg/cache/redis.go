package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPort = "6379"
	pingTimeout = 3 * time.Second
)

// NewRedis opens the client shared by the availability cache, the
// per-order limiter and the ledger generation counters. Connectivity
// is verified up front so a bad address fails at startup, not on the
// first availability read.
func NewRedis(addr, user, password string) (*redis.Client, func() error, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     withDefaultPort(addr),
		Username: user,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		r.Close()
		return nil, nil, err
	}

	return r, r.Close, nil
}

func withDefaultPort(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}

	return addr + ":" + defaultPort
}
