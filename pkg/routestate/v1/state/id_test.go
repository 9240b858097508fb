package state_test

import (
	"testing"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
	"github.com/stretchr/testify/assert"
)

func TestBuiltIns_OccupyReservedSlots(t *testing.T) {
	ids := state.BuiltIns()
	assert.Len(t, ids, state.ReservedSlots)
	seen := map[string]bool{}
	for i, id := range ids {
		assert.Equal(t, i, id.Index(), "built-in %s out of order", id.Name())
		assert.True(t, id.IsReserved())
		assert.False(t, seen[id.Name()], "duplicate built-in name %s", id.Name())
		seen[id.Name()] = true
	}
	assert.Equal(t, "load", state.Load.Name())
	assert.Equal(t, 9, state.MaxLoad.Index())
}

func TestID_UserAndLegacy(t *testing.T) {
	id := state.NewID("route_duration", state.ReservedSlots)
	assert.False(t, id.IsReserved())
	assert.Equal(t, "route_duration#10", id.String())

	legacy := state.NewLegacyID("old")
	assert.Equal(t, -1, legacy.Index())
	assert.False(t, legacy.IsReserved())
}
