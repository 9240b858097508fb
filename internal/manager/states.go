package manager

import (
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// CreateStateID registers name and returns its id. Names registered before,
// built-ins included, return the existing id.
func (m *Manager) CreateStateID(name string) state.ID {
	id, created := m.store.Registry().Register(name)
	if created {
		m.collectors.RegisteredStates(m.store.Registry().Len())
		m.log.Debugf("Registered state '%s' at slot %d", name, id.Index())
		m.emit(events.StateRegistered, map[string]interface{}{"state": name, "slot": id.Index()})
	}
	return id
}

// ClearStates unsets every stored value. Ids, defaults and updaters are kept.
func (m *Manager) ClearStates() { m.store.Clear() }

// --- Reads ---

func (m *Manager) LookupActivityState(act model.Activity, id state.ID) (any, bool, error) {
	v, ok, err := m.store.LookupActivityState(act, id)
	return v, ok, m.checked(err)
}

func (m *Manager) LookupVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID) (any, bool, error) {
	val, ok, err := m.store.LookupVehicleDependentActivityState(act, v, id)
	return val, ok, m.checked(err)
}

func (m *Manager) LookupRouteState(route model.Route, id state.ID) (any, bool, error) {
	v, ok, err := m.store.LookupRouteState(route, id)
	return v, ok, m.checked(err)
}

func (m *Manager) LookupVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID) (any, bool, error) {
	val, ok, err := m.store.LookupVehicleDependentRouteState(route, v, id)
	return val, ok, m.checked(err)
}

func (m *Manager) LookupProblemState(id state.ID) (any, bool, error) {
	v, ok, err := m.store.LookupProblemState(id)
	return v, ok, m.checked(err)
}

func (m *Manager) HasVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID) bool {
	return m.store.HasVehicleDependentActivityState(act, v, id)
}

func (m *Manager) HasVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID) bool {
	return m.store.HasVehicleDependentRouteState(route, v, id)
}

// --- Writes ---

func (m *Manager) PutActivityState(act model.Activity, id state.ID, value any) error {
	return m.checked(m.store.PutActivityState(act, id, value))
}

func (m *Manager) PutVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID, value any) error {
	return m.checked(m.store.PutVehicleDependentActivityState(act, v, id, value))
}

func (m *Manager) PutRouteState(route model.Route, id state.ID, value any) error {
	return m.checked(m.store.PutRouteState(route, id, value))
}

func (m *Manager) PutVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID, value any) error {
	return m.checked(m.store.PutVehicleDependentRouteState(route, v, id, value))
}

func (m *Manager) PutProblemState(id state.ID, value any) error {
	return m.checked(m.store.PutProblemState(id, value))
}

// --- Defaults ---

func (m *Manager) AddDefaultActivityState(id state.ID, value any) error {
	return m.checked(m.store.AddDefaultActivityState(id, value))
}

func (m *Manager) AddDefaultRouteState(id state.ID, value any) error {
	return m.checked(m.store.AddDefaultRouteState(id, value))
}

func (m *Manager) AddDefaultProblemState(id state.ID, value any) error {
	return m.checked(m.store.AddDefaultProblemState(id, value))
}
