package updater

import (
	"math"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// VariableCosts accumulates transport costs and elapsed time along a route.
// Every activity gets the cost and duration from departure up to the end of
// its operation in Costs and Duration; the route gets the totals including
// the return leg to the end depot.
type VariableCosts struct {
	states States
	costs  model.TransportCosts

	route     model.Route
	vehicle   model.Vehicle
	prevLoc   string
	departure float64
	clock     float64
	cost      float64
}

var _ listener.ActivityVisitor = (*VariableCosts)(nil)

// NewVariableCosts creates the updater.
func NewVariableCosts(s States, costs model.TransportCosts) *VariableCosts {
	return &VariableCosts{states: s, costs: costs}
}

func (u *VariableCosts) Begin(route model.Route) error {
	u.route = route
	u.vehicle = route.Vehicle()
	u.prevLoc = route.Start().Location()
	u.departure = route.DepartureTime()
	u.clock = u.departure
	u.cost = 0
	return nil
}

func (u *VariableCosts) Visit(act model.Activity) error {
	u.travel(act.Location())
	u.clock = math.Max(u.clock, act.TheoreticalEarliestOperationStartTime()) + act.OperationTime()
	if err := u.states.PutInternalActivityState(act, state.Costs, u.cost); err != nil {
		return err
	}
	return u.states.PutInternalActivityState(act, state.Duration, u.clock-u.departure)
}

func (u *VariableCosts) Finish() error {
	u.travel(u.route.End().Location())
	if err := u.states.PutInternalRouteState(u.route, state.Costs, u.cost); err != nil {
		return err
	}
	err := u.states.PutInternalRouteState(u.route, state.Duration, u.clock-u.departure)
	u.route, u.vehicle = nil, nil
	return err
}

func (u *VariableCosts) travel(to string) {
	u.cost += u.costs.TransportCost(u.prevLoc, to, u.clock, u.vehicle)
	u.clock += u.costs.TransportTime(u.prevLoc, to, u.clock, u.vehicle)
	u.prevLoc = to
}
