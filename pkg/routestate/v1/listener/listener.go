// Package listener defines the capabilities a state updater can implement.
//
// An updater is registered once and wired into every dispatch path matching
// the capabilities it implements. A single value may implement any subset,
// e.g. an insertion listener that is also a forward activity visitor.
//
// All capability methods return an error. The first error aborts the running
// dispatch and is returned to the caller of the lifecycle event.
package listener

import "github.com/gxo-labs/routestate/pkg/routestate/v1/model"

// StateUpdater is any value implementing at least one of the capability
// interfaces of this package.
type StateUpdater interface{}

// ActivityVisitor visits the activities of a route from start to end.
type ActivityVisitor interface {
	Begin(route model.Route) error
	Visit(act model.Activity) error
	Finish() error
}

// ReverseActivityVisitor visits the activities of a route from end to start.
type ReverseActivityVisitor interface {
	BeginReverse(route model.Route) error
	VisitReverse(act model.Activity) error
	FinishReverse() error
}

// RouteVisitor visits a whole route once.
type RouteVisitor interface {
	VisitRoute(route model.Route) error
}

// IterationStartsListener is told when a new search iteration begins.
type IterationStartsListener interface {
	InformIterationStarts(i int, problem model.Problem, solutions []model.Solution) error
}

// InsertionStartsListener is told when an insertion pass begins.
type InsertionStartsListener interface {
	InformInsertionStarts(routes []model.Route, unassigned []model.Job) error
}

// JobInsertedListener is told after a job has been inserted into a route.
type JobInsertedListener interface {
	InformJobInserted(job model.Job, route model.Route, additionalCosts, additionalTime float64) error
}

// InsertionEndsListener is told when an insertion pass ends.
type InsertionEndsListener interface {
	InformInsertionEnds(routes []model.Route) error
}

// RuinListener follows the removal phase of the search.
type RuinListener interface {
	InformRuinStarts(routes []model.Route) error
	InformRemoved(job model.Job, from model.Route) error
	InformRuinEnds(routes []model.Route, unassigned []model.Job) error
}

// IsInsertionListener reports whether u implements any of the insertion
// listener capabilities.
func IsInsertionListener(u StateUpdater) bool {
	switch u.(type) {
	case InsertionStartsListener, JobInsertedListener, InsertionEndsListener:
		return true
	}
	return false
}

// Roles returns the names of the capabilities implemented by u, in dispatch
// order.
func Roles(u StateUpdater) []string {
	var roles []string
	if _, ok := u.(InsertionStartsListener); ok {
		roles = append(roles, "InsertionStartsListener")
	}
	if _, ok := u.(JobInsertedListener); ok {
		roles = append(roles, "JobInsertedListener")
	}
	if _, ok := u.(InsertionEndsListener); ok {
		roles = append(roles, "InsertionEndsListener")
	}
	if _, ok := u.(RouteVisitor); ok {
		roles = append(roles, "RouteVisitor")
	}
	if _, ok := u.(ActivityVisitor); ok {
		roles = append(roles, "ActivityVisitor")
	}
	if _, ok := u.(ReverseActivityVisitor); ok {
		roles = append(roles, "ReverseActivityVisitor")
	}
	if _, ok := u.(RuinListener); ok {
		roles = append(roles, "RuinListener")
	}
	return roles
}
