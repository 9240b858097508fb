package updater

import (
	"math"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// PracticalTimeWindows computes the latest time each activity can start
// without making a later activity or the return to the depot late. It walks
// the route backwards from the end and stores the result in
// LatestOperationStartTime.
type PracticalTimeWindows struct {
	states States
	costs  model.TransportCosts

	vehicle    model.Vehicle
	prevLoc    string
	prevLatest float64
}

var _ listener.ReverseActivityVisitor = (*PracticalTimeWindows)(nil)

// NewPracticalTimeWindows creates the updater.
func NewPracticalTimeWindows(s States, costs model.TransportCosts) *PracticalTimeWindows {
	return &PracticalTimeWindows{states: s, costs: costs}
}

func (u *PracticalTimeWindows) BeginReverse(route model.Route) error {
	end := route.End()
	u.vehicle = route.Vehicle()
	u.prevLoc = end.Location()
	u.prevLatest = end.TheoreticalLatestOperationStartTime()
	return nil
}

func (u *PracticalTimeWindows) VisitReverse(act model.Activity) error {
	latest := latestStart(u.costs, act, u.prevLoc, u.prevLatest, u.vehicle)
	if err := u.states.PutInternalActivityState(act, state.LatestOperationStartTime, latest); err != nil {
		return err
	}
	u.prevLoc, u.prevLatest = act.Location(), latest
	return nil
}

func (u *PracticalTimeWindows) FinishReverse() error {
	u.vehicle = nil
	return nil
}

// VehicleDependentPracticalTimeWindows computes practical latest start times
// for every vehicle type of the fleet, so insertion heuristics can check a
// route against a vehicle swap. Each type is represented by its first
// vehicle; its end location and latest arrival anchor the backward pass.
type VehicleDependentPracticalTimeWindows struct {
	states   States
	costs    model.TransportCosts
	vehicles []model.Vehicle

	prevLoc    []string
	prevLatest []float64
}

var _ listener.ReverseActivityVisitor = (*VehicleDependentPracticalTimeWindows)(nil)

// NewVehicleDependentPracticalTimeWindows creates the updater for the fleet
// of problem.
func NewVehicleDependentPracticalTimeWindows(s States, costs model.TransportCosts, problem model.Problem) *VehicleDependentPracticalTimeWindows {
	vehicles := representatives(problem)
	return &VehicleDependentPracticalTimeWindows{
		states:     s,
		costs:      costs,
		vehicles:   vehicles,
		prevLoc:    make([]string, len(vehicles)),
		prevLatest: make([]float64, len(vehicles)),
	}
}

// Vehicles returns the representative vehicle of each type.
func (u *VehicleDependentPracticalTimeWindows) Vehicles() []model.Vehicle { return u.vehicles }

func (u *VehicleDependentPracticalTimeWindows) BeginReverse(_ model.Route) error {
	for i, v := range u.vehicles {
		u.prevLoc[i] = v.EndLocation()
		u.prevLatest[i] = v.LatestArrival()
	}
	return nil
}

func (u *VehicleDependentPracticalTimeWindows) VisitReverse(act model.Activity) error {
	for i, v := range u.vehicles {
		latest := latestStart(u.costs, act, u.prevLoc[i], u.prevLatest[i], v)
		if err := u.states.PutInternalVehicleDependentActivityState(act, v, state.LatestOperationStartTime, latest); err != nil {
			return err
		}
		u.prevLoc[i], u.prevLatest[i] = act.Location(), latest
	}
	return nil
}

func (u *VehicleDependentPracticalTimeWindows) FinishReverse() error { return nil }

// representatives picks the first vehicle of every type key, in fleet order.
func representatives(problem model.Problem) []model.Vehicle {
	if problem == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []model.Vehicle
	for _, v := range problem.Vehicles() {
		if v == nil || v.TypeKey() == nil {
			continue
		}
		idx := v.TypeKey().Index()
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, v)
	}
	return out
}

// latestStart is the latest start at act that still reaches the next
// activity, at nextLoc, by its latest start nextLatest.
func latestStart(costs model.TransportCosts, act model.Activity, nextLoc string, nextLatest float64, v model.Vehicle) float64 {
	travel := costs.BackwardTransportTime(act.Location(), nextLoc, nextLatest, v)
	potential := nextLatest - travel - act.OperationTime()
	return math.Min(act.TheoreticalLatestOperationStartTime(), potential)
}

// ActivityTimes computes the earliest time each activity can start given the
// route's departure time, travel times and the activities' time windows, and
// stores it in EarliestOperationStartTime.
type ActivityTimes struct {
	states States
	costs  model.TransportCosts

	vehicle    model.Vehicle
	prevLoc    string
	prevDepart float64
}

var _ listener.ActivityVisitor = (*ActivityTimes)(nil)

// NewActivityTimes creates the updater.
func NewActivityTimes(s States, costs model.TransportCosts) *ActivityTimes {
	return &ActivityTimes{states: s, costs: costs}
}

func (u *ActivityTimes) Begin(route model.Route) error {
	u.vehicle = route.Vehicle()
	u.prevLoc = route.Start().Location()
	u.prevDepart = route.DepartureTime()
	return nil
}

func (u *ActivityTimes) Visit(act model.Activity) error {
	arrival := u.prevDepart + u.costs.TransportTime(u.prevLoc, act.Location(), u.prevDepart, u.vehicle)
	start := math.Max(arrival, act.TheoreticalEarliestOperationStartTime())
	if err := u.states.PutInternalActivityState(act, state.EarliestOperationStartTime, start); err != nil {
		return err
	}
	u.prevLoc, u.prevDepart = act.Location(), start+act.OperationTime()
	return nil
}

func (u *ActivityTimes) Finish() error {
	u.vehicle = nil
	return nil
}
