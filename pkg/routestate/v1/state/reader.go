package state

import (
	"fmt"
	"reflect"

	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
)

// Reader is the untyped read side of the state cache. Every Lookup method
// returns the stored value, or the resolved default when the cell is unset,
// together with a flag telling whether any value exists at all. An error is
// only returned for ids the cache does not know.
//
// Most callers use the typed accessors (ActivityState, RouteState, ...)
// instead of the Lookup methods directly.
type Reader interface {
	LookupActivityState(act model.Activity, id ID) (any, bool, error)
	LookupVehicleDependentActivityState(act model.Activity, v model.Vehicle, id ID) (any, bool, error)
	LookupRouteState(route model.Route, id ID) (any, bool, error)
	LookupVehicleDependentRouteState(route model.Route, v model.Vehicle, id ID) (any, bool, error)
	LookupProblemState(id ID) (any, bool, error)

	// HasVehicleDependentActivityState reports whether a value is stored for
	// the activity under the vehicle's type. Defaults are not considered.
	HasVehicleDependentActivityState(act model.Activity, v model.Vehicle, id ID) bool
	// HasVehicleDependentRouteState reports whether a value is stored for the
	// route under the vehicle's type. Defaults are not considered.
	HasVehicleDependentRouteState(route model.Route, v model.Vehicle, id ID) bool
}

// Writer is the public write side of the state cache. Writes to built-in
// state kinds are rejected with an ErrReservedState error.
type Writer interface {
	PutActivityState(act model.Activity, id ID, value any) error
	PutVehicleDependentActivityState(act model.Activity, v model.Vehicle, id ID, value any) error
	PutRouteState(route model.Route, id ID, value any) error
	PutVehicleDependentRouteState(route model.Route, v model.Vehicle, id ID, value any) error
	PutProblemState(id ID, value any) error
}

// MismatchObserver is an optional capability of a Reader. When present it is
// told about every type mismatch detected by the typed accessors.
type MismatchObserver interface {
	ObserveTypeMismatch(err *rserrors.TypeMismatchError)
}

// ActivityState returns the value of id at act as a T. The boolean is false
// when neither a stored value nor a default exists.
func ActivityState[T any](r Reader, act model.Activity, id ID) (T, bool, error) {
	v, ok, err := r.LookupActivityState(act, id)
	return as[T](r, id, v, ok, err)
}

// VehicleDependentActivityState returns the value of id at act computed for
// the vehicle type of v.
func VehicleDependentActivityState[T any](r Reader, act model.Activity, v model.Vehicle, id ID) (T, bool, error) {
	val, ok, err := r.LookupVehicleDependentActivityState(act, v, id)
	return as[T](r, id, val, ok, err)
}

// RouteState returns the route-level value of id as a T.
func RouteState[T any](r Reader, route model.Route, id ID) (T, bool, error) {
	v, ok, err := r.LookupRouteState(route, id)
	return as[T](r, id, v, ok, err)
}

// VehicleDependentRouteState returns the route-level value of id computed for
// the vehicle type of v.
func VehicleDependentRouteState[T any](r Reader, route model.Route, v model.Vehicle, id ID) (T, bool, error) {
	val, ok, err := r.LookupVehicleDependentRouteState(route, v, id)
	return as[T](r, id, val, ok, err)
}

// ProblemState returns the problem-level value of id as a T.
func ProblemState[T any](r Reader, id ID) (T, bool, error) {
	v, ok, err := r.LookupProblemState(id)
	return as[T](r, id, v, ok, err)
}

func as[T any](r Reader, id ID, v any, ok bool, err error) (T, bool, error) {
	var zero T
	if err != nil || !ok {
		return zero, false, err
	}
	typed, isT := v.(T)
	if !isT {
		mm := rserrors.NewTypeMismatchError(id.name, id.index, fmt.Sprintf("%T", v), reflect.TypeFor[T]().String())
		if o, yes := r.(MismatchObserver); yes {
			o.ObserveTypeMismatch(mm)
		}
		return zero, false, mm
	}
	return typed, true, nil
}
