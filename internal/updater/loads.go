package updater

import (
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// Loads maintains the load the vehicle carries along a route.
//
// Deliveries are loaded at the depot, so their sizes make up the route's
// LoadAtBeginning. Pickups and services stay on board until the end and make
// up LoadAtEnd. Walking the route from the start, every activity then gets
// the load on board right after it in Load.
type Loads struct {
	states  States
	current model.Capacity
}

var (
	_ listener.InsertionStartsListener = (*Loads)(nil)
	_ listener.JobInsertedListener     = (*Loads)(nil)
	_ listener.ActivityVisitor         = (*Loads)(nil)
)

// NewLoads creates the updater.
func NewLoads(s States) *Loads {
	return &Loads{states: s}
}

// InformInsertionStarts recomputes the depot and end loads of every route.
func (u *Loads) InformInsertionStarts(routes []model.Route, _ []model.Job) error {
	for _, r := range routes {
		if err := u.refresh(r); err != nil {
			return err
		}
	}
	return nil
}

// InformJobInserted recomputes the depot and end loads of route. They are
// rebuilt from the route's jobs rather than incremented, since inserting in
// front of the first activity moves the route's storage location.
func (u *Loads) InformJobInserted(_ model.Job, route model.Route, _, _ float64) error {
	return u.refresh(route)
}

// refresh skips empty routes, which have no storage location.
func (u *Loads) refresh(r model.Route) error {
	if _, ok := model.FirstActivityIndex(r); !ok {
		return nil
	}
	var atDepot, atEnd model.Capacity
	for _, j := range r.Jobs() {
		switch j.Kind() {
		case model.Delivery:
			atDepot = atDepot.Add(j.Size())
		case model.Pickup, model.Service:
			atEnd = atEnd.Add(j.Size())
		}
	}
	if err := u.states.PutInternalRouteState(r, state.LoadAtBeginning, atDepot); err != nil {
		return err
	}
	return u.states.PutInternalRouteState(r, state.LoadAtEnd, atEnd)
}

func (u *Loads) Begin(route model.Route) error {
	load, err := routeCapacity(u.states, route, state.LoadAtBeginning)
	if err != nil {
		return err
	}
	u.current = load
	return nil
}

func (u *Loads) Visit(act model.Activity) error {
	u.current = u.current.Add(act.LoadChange())
	return u.states.PutInternalActivityState(act, state.Load, u.current)
}

func (u *Loads) Finish() error {
	u.current = model.Capacity{}
	return nil
}

// PastMaxLoads records in PastMaxLoad the highest load carried from the route
// start up to and including each activity. It must run after Loads.
type PastMaxLoads struct {
	states States
	max    model.Capacity
}

var _ listener.ActivityVisitor = (*PastMaxLoads)(nil)

// NewPastMaxLoads creates the updater.
func NewPastMaxLoads(s States) *PastMaxLoads {
	return &PastMaxLoads{states: s}
}

func (u *PastMaxLoads) Begin(route model.Route) error {
	load, err := routeCapacity(u.states, route, state.LoadAtBeginning)
	if err != nil {
		return err
	}
	u.max = load
	return nil
}

func (u *PastMaxLoads) Visit(act model.Activity) error {
	load, err := activityCapacity(u.states, act, state.Load)
	if err != nil {
		return err
	}
	u.max = model.Max(u.max, load)
	return u.states.PutInternalActivityState(act, state.PastMaxLoad, u.max)
}

func (u *PastMaxLoads) Finish() error {
	u.max = model.Capacity{}
	return nil
}

// FutureMaxLoads records in FutureMaxLoad the highest load carried from each
// activity up to the route end. It walks the route backwards and relies on
// the Load values of the forward pass.
type FutureMaxLoads struct {
	states States
	max    model.Capacity
}

var _ listener.ReverseActivityVisitor = (*FutureMaxLoads)(nil)

// NewFutureMaxLoads creates the updater.
func NewFutureMaxLoads(s States) *FutureMaxLoads {
	return &FutureMaxLoads{states: s}
}

func (u *FutureMaxLoads) BeginReverse(route model.Route) error {
	load, err := routeCapacity(u.states, route, state.LoadAtEnd)
	if err != nil {
		return err
	}
	u.max = load
	return nil
}

func (u *FutureMaxLoads) VisitReverse(act model.Activity) error {
	load, err := activityCapacity(u.states, act, state.Load)
	if err != nil {
		return err
	}
	u.max = model.Max(u.max, load)
	return u.states.PutInternalActivityState(act, state.FutureMaxLoad, u.max)
}

func (u *FutureMaxLoads) FinishReverse() error {
	u.max = model.Capacity{}
	return nil
}

// RouteMaxLoad records the highest load carried anywhere on the route in the
// route state MaxLoad.
type RouteMaxLoad struct {
	states  States
	route   model.Route
	current model.Capacity
	max     model.Capacity
}

var _ listener.ActivityVisitor = (*RouteMaxLoad)(nil)

// NewRouteMaxLoad creates the updater.
func NewRouteMaxLoad(s States) *RouteMaxLoad {
	return &RouteMaxLoad{states: s}
}

func (u *RouteMaxLoad) Begin(route model.Route) error {
	load, err := routeCapacity(u.states, route, state.LoadAtBeginning)
	if err != nil {
		return err
	}
	u.route, u.current, u.max = route, load, load
	return nil
}

func (u *RouteMaxLoad) Visit(act model.Activity) error {
	u.current = u.current.Add(act.LoadChange())
	u.max = model.Max(u.max, u.current)
	return nil
}

func (u *RouteMaxLoad) Finish() error {
	err := u.states.PutInternalRouteState(u.route, state.MaxLoad, u.max)
	u.route, u.current, u.max = nil, model.Capacity{}, model.Capacity{}
	return err
}
