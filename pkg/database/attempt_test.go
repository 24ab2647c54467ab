package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBatchQuery(t *testing.T) {
	q := buildBatchQuery(2)

	assert.Equal(t,
		"insert into reserve_attempts (product_id, order_id, quantity, starts_at, ends_at, error, created_at) values "+
			"($1, $2, $3, $4, $5, $6, $7),($8, $9, $10, $11, $12, $13, $14)",
		q,
	)
}
