package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(day int) time.Time {
	return time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint", date(1), date(5), date(10), date(15), false},
		{"contained", date(1), date(10), date(3), date(5), true},
		{"partial", date(1), date(6), date(5), date(10), true},
		{"same range", date(1), date(5), date(1), date(5), true},
		{"handover day is not a conflict", date(1), date(5), date(5), date(10), false},
		{"handover day, reversed", date(5), date(10), date(1), date(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, ValidatePeriod(date(1), date(5), 1))

	assert.ErrorIs(t, ValidatePeriod(date(5), date(1), 1), ErrInvalidRange)
	assert.ErrorIs(t, ValidatePeriod(date(1), date(1), 1), ErrInvalidRange)
	assert.ErrorIs(t, ValidatePeriod(date(1), date(5), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidatePeriod(date(1), date(5), -3), ErrInvalidQuantity)
}

func TestReservationStatusTerminal(t *testing.T) {
	assert.False(t, ReservationActive.Terminal())
	assert.True(t, ReservationCompleted.Terminal())
	assert.True(t, ReservationCancelled.Terminal())
}
