package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaultPort(t *testing.T) {
	assert.Equal(t, "localhost:6379", withDefaultPort("localhost"))
	assert.Equal(t, "localhost:6380", withDefaultPort("localhost:6380"))
	assert.Equal(t, "10.0.0.5:6379", withDefaultPort("10.0.0.5"))
}
