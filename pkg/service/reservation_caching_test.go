package service

import (
	"testing"

	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityCacheValueRoundTrip(t *testing.T) {
	for _, v := range []availabilityCacheValue{
		{available: true, free: 3},
		{available: false, free: 0},
	} {
		parsed, err := parseAvailabilityCacheVal(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := parseAvailabilityCacheVal("1|2|3")
	assert.Error(t, err)
	_, err = parseAvailabilityCacheVal("yes|2")
	assert.Error(t, err)
	_, err = parseAvailabilityCacheVal("1|many")
	assert.Error(t, err)
}

func TestAvailabilityCacheKeyChangesWithGeneration(t *testing.T) {
	req := model.AvailabilityRequest{
		ProductID: "p1",
		StartsAt:  date(3, 1),
		EndsAt:    date(3, 5),
		Quantity:  2,
	}

	// a ledger mutation bumps the generation, which must produce a
	// fresh key so stale entries are never served
	assert.NotEqual(t, availabilityCacheKey(req, 1), availabilityCacheKey(req, 2))

	other := req
	other.Quantity = 3
	assert.NotEqual(t, availabilityCacheKey(req, 1), availabilityCacheKey(other, 1))
}
