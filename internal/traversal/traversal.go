// Package traversal walks routes on behalf of state updaters. A Pass runs,
// for one route, every registered route visitor, then every forward activity
// visitor, then every reverse activity visitor, each group in registration
// order.
package traversal

import (
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
)

// Role names used in dispatch errors and metrics.
const (
	RoleRouteVisitor           = "RouteVisitor"
	RoleActivityVisitor        = "ActivityVisitor"
	RoleReverseActivityVisitor = "ReverseActivityVisitor"
)

// ForwardVisitors visits the activities of a route from first to last.
// Every visitor is begun before the first activity, all visitors see an
// activity before the next one is visited, and all are finished at the end.
type ForwardVisitors struct {
	visitors []listener.ActivityVisitor
}

// Add appends v.
func (f *ForwardVisitors) Add(v listener.ActivityVisitor) { f.visitors = append(f.visitors, v) }

// Len returns the number of visitors.
func (f *ForwardVisitors) Len() int { return len(f.visitors) }

// Visit walks route. Empty routes are skipped.
func (f *ForwardVisitors) Visit(trigger string, route model.Route) error {
	if len(f.visitors) == 0 || route == nil || route.IsEmpty() {
		return nil
	}
	for _, v := range f.visitors {
		if err := v.Begin(route); err != nil {
			return rserrors.NewDispatchError(trigger, RoleActivityVisitor, err)
		}
	}
	for _, act := range route.Activities() {
		for _, v := range f.visitors {
			if err := v.Visit(act); err != nil {
				return rserrors.NewDispatchError(trigger, RoleActivityVisitor, err)
			}
		}
	}
	for _, v := range f.visitors {
		if err := v.Finish(); err != nil {
			return rserrors.NewDispatchError(trigger, RoleActivityVisitor, err)
		}
	}
	return nil
}

// ReverseVisitors visits the activities of a route from last to first.
type ReverseVisitors struct {
	visitors []listener.ReverseActivityVisitor
}

// Add appends v.
func (r *ReverseVisitors) Add(v listener.ReverseActivityVisitor) { r.visitors = append(r.visitors, v) }

// Len returns the number of visitors.
func (r *ReverseVisitors) Len() int { return len(r.visitors) }

// Visit walks route backwards. Empty routes are skipped.
func (r *ReverseVisitors) Visit(trigger string, route model.Route) error {
	if len(r.visitors) == 0 || route == nil || route.IsEmpty() {
		return nil
	}
	for _, v := range r.visitors {
		if err := v.BeginReverse(route); err != nil {
			return rserrors.NewDispatchError(trigger, RoleReverseActivityVisitor, err)
		}
	}
	acts := route.Activities()
	for i := len(acts) - 1; i >= 0; i-- {
		for _, v := range r.visitors {
			if err := v.VisitReverse(acts[i]); err != nil {
				return rserrors.NewDispatchError(trigger, RoleReverseActivityVisitor, err)
			}
		}
	}
	for _, v := range r.visitors {
		if err := v.FinishReverse(); err != nil {
			return rserrors.NewDispatchError(trigger, RoleReverseActivityVisitor, err)
		}
	}
	return nil
}

// RouteVisitors visits whole routes, empty ones included.
type RouteVisitors struct {
	visitors []listener.RouteVisitor
}

// Add appends v.
func (r *RouteVisitors) Add(v listener.RouteVisitor) { r.visitors = append(r.visitors, v) }

// Len returns the number of visitors.
func (r *RouteVisitors) Len() int { return len(r.visitors) }

// Visit hands route to every visitor.
func (r *RouteVisitors) Visit(trigger string, route model.Route) error {
	if route == nil {
		return nil
	}
	for _, v := range r.visitors {
		if err := v.VisitRoute(route); err != nil {
			return rserrors.NewDispatchError(trigger, RoleRouteVisitor, err)
		}
	}
	return nil
}

// Pass bundles the three visitor kinds in their fixed dispatch order.
type Pass struct {
	Routes  RouteVisitors
	Forward ForwardVisitors
	Reverse ReverseVisitors
}

// Run dispatches route to route visitors, forward visitors and reverse
// visitors, stopping at the first error.
func (p *Pass) Run(trigger string, route model.Route) error {
	if err := p.Routes.Visit(trigger, route); err != nil {
		return err
	}
	if err := p.Forward.Visit(trigger, route); err != nil {
		return err
	}
	return p.Reverse.Visit(trigger, route)
}

// Empty reports whether no visitor of any kind is registered.
func (p *Pass) Empty() bool {
	return p.Routes.Len() == 0 && p.Forward.Len() == 0 && p.Reverse.Len() == 0
}

// Register wires u into every visitor kind it implements and reports whether
// it implemented any.
func (p *Pass) Register(u listener.StateUpdater) bool {
	wired := false
	if v, ok := u.(listener.RouteVisitor); ok {
		p.Routes.Add(v)
		wired = true
	}
	if v, ok := u.(listener.ActivityVisitor); ok {
		p.Forward.Add(v)
		wired = true
	}
	if v, ok := u.(listener.ReverseActivityVisitor); ok {
		p.Reverse.Add(v)
		wired = true
	}
	return wired
}
