// Package updater contains the built-in state updaters. They maintain the
// reserved state kinds (loads, practical time windows, costs) and write them
// through the internal write path, which accepts reserved ids.
package updater

import (
	"fmt"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// States is the view of the state cache the built-in updaters work on.
type States interface {
	state.Reader
	PutInternalActivityState(act model.Activity, id state.ID, value any) error
	PutInternalVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID, value any) error
	PutInternalRouteState(route model.Route, id state.ID, value any) error
	PutInternalVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID, value any) error
}

// routeCapacity reads a capacity route state, treating absence as zero.
func routeCapacity(s States, route model.Route, id state.ID) (model.Capacity, error) {
	c, _, err := state.RouteState[model.Capacity](s, route, id)
	if err != nil {
		return model.Capacity{}, fmt.Errorf("read %s: %w", id, err)
	}
	return c, nil
}

// activityCapacity reads a capacity activity state, treating absence as zero.
func activityCapacity(s States, act model.Activity, id state.ID) (model.Capacity, error) {
	c, _, err := state.ActivityState[model.Capacity](s, act, id)
	if err != nil {
		return model.Capacity{}, fmt.Errorf("read %s: %w", id, err)
	}
	return c, nil
}
