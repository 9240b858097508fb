package state

import (
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// Defaults holds the fallback values of unset cells, one table per
// granularity. Tables are indexed by slot and survive Store.Clear.
type Defaults struct {
	activity []any
	route    []any
	problem  []any
}

// NewDefaults creates the default tables for slots slots and seeds the
// built-in accumulators with zero values.
func NewDefaults(slots int) *Defaults {
	d := &Defaults{
		activity: make([]any, slots),
		route:    make([]any, slots),
		problem:  make([]any, slots),
	}
	zeroCap := model.NewCapacity()
	for _, id := range []state.ID{state.Load, state.FutureMaxLoad, state.PastMaxLoad} {
		d.activity[id.Index()] = zeroCap
		d.route[id.Index()] = zeroCap
	}
	for _, id := range []state.ID{state.Costs, state.Duration} {
		d.activity[id.Index()] = 0.0
		d.route[id.Index()] = 0.0
	}
	for _, id := range []state.ID{state.MaxLoad, state.LoadAtBeginning, state.LoadAtEnd} {
		d.route[id.Index()] = zeroCap
	}
	return d
}

// Grow extends the tables to slots entries.
func (d *Defaults) Grow(slots int) {
	d.activity = growSlice(d.activity, slots)
	d.route = growSlice(d.route, slots)
	d.problem = growSlice(d.problem, slots)
}

func (d *Defaults) setActivity(id state.ID, v any) { d.activity[id.Index()] = v }
func (d *Defaults) setRoute(id state.ID, v any)    { d.route[id.Index()] = v }
func (d *Defaults) setProblem(id state.ID, v any)  { d.problem[id.Index()] = v }

// Activity resolves the default of id for act: a registered default first,
// then the activity's own time window bounds for the two operation start
// time kinds. The boolean is false when no default exists.
func (d *Defaults) Activity(act model.Activity, id state.ID) (any, bool) {
	if v := at(d.activity, id.Index()); v != nil {
		return v, true
	}
	if act == nil {
		return nil, false
	}
	switch id {
	case state.EarliestOperationStartTime:
		return act.TheoreticalEarliestOperationStartTime(), true
	case state.LatestOperationStartTime:
		return act.TheoreticalLatestOperationStartTime(), true
	}
	return nil, false
}

// Route resolves the registered route default of id.
func (d *Defaults) Route(id state.ID) (any, bool) {
	v := at(d.route, id.Index())
	return v, v != nil
}

// Problem resolves the registered problem default of id.
func (d *Defaults) Problem(id state.ID) (any, bool) {
	v := at(d.problem, id.Index())
	return v, v != nil
}

func at(s []any, i int) any {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

func growSlice(s []any, n int) []any {
	if n <= len(s) {
		return s
	}
	out := make([]any, n)
	copy(out, s)
	return out
}
