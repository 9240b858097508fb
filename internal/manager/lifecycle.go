package manager

import (
	"fmt"
	"strings"

	"github.com/gxo-labs/routestate/internal/updater"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
)

// AddStateUpdater wires u into every lifecycle and traversal path it has a
// capability for. Updaters run in registration order.
func (m *Manager) AddStateUpdater(u listener.StateUpdater) error {
	roles, err := m.adapter.Register(u)
	if err != nil {
		return fmt.Errorf("add state updater: %w", err)
	}
	m.updaters = append(m.updaters, u)
	name := fmt.Sprintf("%T", u)
	m.log.Debugf("Added state updater %s as %s", name, strings.Join(roles, ", "))
	m.emit(events.UpdaterAdded, map[string]interface{}{"updater": name, "roles": roles})
	return nil
}

// StateUpdaters returns the registered updaters in registration order.
func (m *Manager) StateUpdaters() []listener.StateUpdater {
	out := make([]listener.StateUpdater, len(m.updaters))
	copy(out, m.updaters)
	return out
}

// UpdateLoadStates registers the load updaters: Load, LoadAtBeginning,
// LoadAtEnd, PastMaxLoad, FutureMaxLoad and MaxLoad are kept current from
// then on.
func (m *Manager) UpdateLoadStates() error {
	if m.loadsEnabled {
		return nil
	}
	for _, u := range []listener.StateUpdater{
		updater.NewLoads(m.store),
		updater.NewPastMaxLoads(m.store),
		updater.NewFutureMaxLoads(m.store),
		updater.NewRouteMaxLoad(m.store),
	} {
		if err := m.AddStateUpdater(u); err != nil {
			return err
		}
	}
	m.loadsEnabled = true
	return nil
}

// UpdateTimeWindowStates registers the time updaters: practical latest start
// times, plain and per vehicle type, and earliest start times. Once enabled,
// routed activities no longer fall back to the theoretical earliest default.
func (m *Manager) UpdateTimeWindowStates() error {
	if m.windowEnabled {
		return nil
	}
	updaters := []listener.StateUpdater{updater.NewPracticalTimeWindows(m.store, m.costs)}
	if vd := updater.NewVehicleDependentPracticalTimeWindows(m.store, m.costs, m.problem); len(vd.Vehicles()) > 0 {
		updaters = append(updaters, vd)
	}
	updaters = append(updaters, updater.NewActivityTimes(m.store, m.costs))
	for _, u := range updaters {
		if err := m.AddStateUpdater(u); err != nil {
			return err
		}
	}
	m.windowEnabled = true
	return nil
}

// NewVariableCosts returns an updater maintaining Costs and Duration with the
// manager's transport costs. Register it with AddStateUpdater.
func (m *Manager) NewVariableCosts() listener.StateUpdater {
	return updater.NewVariableCosts(m.store, m.costs)
}

// --- Lifecycle ---

func (m *Manager) InformIterationStarts(i int, problem model.Problem, solutions []model.Solution) error {
	return m.adapter.InformIterationStarts(i, problem, solutions)
}

func (m *Manager) InformInsertionStarts(routes []model.Route, unassigned []model.Job) error {
	return m.adapter.InformInsertionStarts(routes, unassigned)
}

func (m *Manager) InformJobInserted(job model.Job, route model.Route, additionalCosts, additionalTime float64) error {
	return m.adapter.InformJobInserted(job, route, additionalCosts, additionalTime)
}

func (m *Manager) InformInsertionEnds(routes []model.Route) error {
	return m.adapter.InformInsertionEnds(routes)
}

func (m *Manager) InformRuinStarts(routes []model.Route) error {
	return m.adapter.InformRuinStarts(routes)
}

func (m *Manager) InformRemoved(job model.Job, from model.Route) error {
	return m.adapter.InformRemoved(job, from)
}

func (m *Manager) InformRuinEnds(routes []model.Route, unassigned []model.Job) error {
	return m.adapter.InformRuinEnds(routes, unassigned)
}
