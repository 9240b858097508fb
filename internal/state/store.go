package state

import (
	"fmt"

	"github.com/gxo-labs/routestate/internal/config"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// Matrix names, used as metric labels and in resize events.
const (
	MatrixActivity                 = "activity"
	MatrixRoute                    = "route"
	MatrixVehicleDependentActivity = "vehicle_dependent_activity"
	MatrixVehicleDependentRoute    = "vehicle_dependent_route"
)

// Observer is told about storage level occurrences. The Store never depends
// on what an observer does with them.
type Observer interface {
	StorageResized(matrix string, rows, types, cols int)
	StatesCleared()
	WriteDropped(op string, id state.ID)
}

// NoOpObserver ignores everything.
type NoOpObserver struct{}

func (NoOpObserver) StorageResized(string, int, int, int) {}
func (NoOpObserver) StatesCleared()                       {}
func (NoOpObserver) WriteDropped(string, state.ID)        {}

// Store is the typed value cache: a slot registry, four dense value matrices
// (activity, route and their vehicle-dependent variants), a problem-level row
// and the default tables.
//
// Route-level values live in the row of the route's first activity. Empty
// routes have no row: reads resolve to defaults and writes follow the
// configured EmptyRoutePolicy.
//
// Store is not safe for concurrent use.
type Store struct {
	registry   *Registry
	defaults   *Defaults
	activity   *Matrix
	route      *Matrix
	vdActivity *Matrix
	vdRoute    *Matrix
	problem    []any
	emptyRoute config.EmptyRoutePolicy
	obs        Observer
}

var (
	_ state.Reader = (*Store)(nil)
	_ state.Writer = (*Store)(nil)
)

// NewStore sizes the matrices from the problem estimates: activityCount
// activities and a fleet whose highest vehicle type index is maxTypeIndex.
func NewStore(cfg config.StorageConfig, activityCount, maxTypeIndex int, obs Observer) *Store {
	if obs == nil {
		obs = NoOpObserver{}
	}
	rows := cfg.ActivityDimension(activityCount)
	types := cfg.VehicleTypeDimension(maxTypeIndex)
	slots := max(cfg.InitialSlots, state.ReservedSlots+1)

	s := &Store{
		defaults:   NewDefaults(slots),
		activity:   NewMatrix(MatrixActivity, rows, 1, slots),
		route:      NewMatrix(MatrixRoute, rows, 1, slots),
		vdActivity: NewMatrix(MatrixVehicleDependentActivity, rows, types, slots),
		vdRoute:    NewMatrix(MatrixVehicleDependentRoute, rows, types, slots),
		problem:    make([]any, slots),
		emptyRoute: cfg.EmptyRouteWrites.Effective(),
		obs:        obs,
	}
	s.registry = NewRegistry(slots, cfg.SlotGrowth, s.growSlots)
	return s
}

// SetObserver replaces the observer. A nil observer disables observation.
func (s *Store) SetObserver(obs Observer) {
	if obs == nil {
		obs = NoOpObserver{}
	}
	s.obs = obs
}

// Registry exposes the slot registry.
func (s *Store) Registry() *Registry { return s.registry }

// CreateStateID registers name and returns its id.
func (s *Store) CreateStateID(name string) state.ID {
	id, _ := s.registry.Register(name)
	return id
}

func (s *Store) matrices() []*Matrix {
	return []*Matrix{s.activity, s.route, s.vdActivity, s.vdRoute}
}

// growSlots widens every slot-indexed structure; called by the registry.
func (s *Store) growSlots(slots int) {
	for _, m := range s.matrices() {
		rows, types, _ := m.Dims()
		m.Resize(rows, types, slots)
		s.obs.StorageResized(m.Name(), rows, types, slots)
	}
	s.problem = growSlice(s.problem, slots)
	s.defaults.Grow(slots)
}

// Clear unsets every stored value in all matrices and the problem row.
// Registered ids and defaults are kept.
func (s *Store) Clear() {
	for _, m := range s.matrices() {
		m.Clear()
	}
	clear(s.problem)
	s.obs.StatesCleared()
}

// --- Reads ---

// LookupActivityState returns the value of id at act, or its default.
func (s *Store) LookupActivityState(act model.Activity, id state.ID) (any, bool, error) {
	if err := s.registry.Check(id, "ActivityState"); err != nil {
		return nil, false, err
	}
	if row, ok := activityRow(act); ok {
		if v := s.activity.At(row, 0, id.Index()); v != nil {
			return v, true, nil
		}
	}
	v, ok := s.defaults.Activity(act, id)
	return v, ok, nil
}

// LookupVehicleDependentActivityState returns the value of id at act for
// the type of v, or the activity default.
func (s *Store) LookupVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID) (any, bool, error) {
	if err := s.registry.Check(id, "VehicleDependentActivityState"); err != nil {
		return nil, false, err
	}
	row, okRow := activityRow(act)
	typ, okType := typeIndex(v)
	if okRow && okType {
		if val := s.vdActivity.At(row, typ, id.Index()); val != nil {
			return val, true, nil
		}
	}
	val, ok := s.defaults.Activity(act, id)
	return val, ok, nil
}

// LookupRouteState returns the value of id for route, or its default. Empty
// routes always resolve to the default.
func (s *Store) LookupRouteState(route model.Route, id state.ID) (any, bool, error) {
	if err := s.registry.Check(id, "RouteState"); err != nil {
		return nil, false, err
	}
	if row, ok := model.FirstActivityIndex(route); ok {
		if v := s.route.At(row, 0, id.Index()); v != nil {
			return v, true, nil
		}
	}
	v, ok := s.defaults.Route(id)
	return v, ok, nil
}

// LookupVehicleDependentRouteState returns the value of id for route and the
// type of v, or the route default.
func (s *Store) LookupVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID) (any, bool, error) {
	if err := s.registry.Check(id, "VehicleDependentRouteState"); err != nil {
		return nil, false, err
	}
	row, okRow := model.FirstActivityIndex(route)
	typ, okType := typeIndex(v)
	if okRow && okType {
		if val := s.vdRoute.At(row, typ, id.Index()); val != nil {
			return val, true, nil
		}
	}
	val, ok := s.defaults.Route(id)
	return val, ok, nil
}

// LookupProblemState returns the problem-level value of id, or its default.
func (s *Store) LookupProblemState(id state.ID) (any, bool, error) {
	if err := s.registry.Check(id, "ProblemState"); err != nil {
		return nil, false, err
	}
	if v := at(s.problem, id.Index()); v != nil {
		return v, true, nil
	}
	v, ok := s.defaults.Problem(id)
	return v, ok, nil
}

// HasVehicleDependentActivityState reports whether a value was stored for
// act and the type of v. Defaults do not count.
func (s *Store) HasVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID) bool {
	if s.registry.Check(id, "HasVehicleDependentActivityState") != nil {
		return false
	}
	row, okRow := activityRow(act)
	typ, okType := typeIndex(v)
	return okRow && okType && s.vdActivity.At(row, typ, id.Index()) != nil
}

// HasVehicleDependentRouteState reports whether a value was stored for route
// and the type of v. Defaults do not count.
func (s *Store) HasVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID) bool {
	if s.registry.Check(id, "HasVehicleDependentRouteState") != nil {
		return false
	}
	row, okRow := model.FirstActivityIndex(route)
	typ, okType := typeIndex(v)
	return okRow && okType && s.vdRoute.At(row, typ, id.Index()) != nil
}

// --- Public writes (user-defined kinds only) ---

// PutActivityState stores value for id at act. Reserved ids are rejected.
func (s *Store) PutActivityState(act model.Activity, id state.ID, value any) error {
	const op = "PutActivityState"
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	return s.putActivity(op, s.activity, act, nil, id, value)
}

// PutVehicleDependentActivityState stores value for id at act and the type
// of v. Reserved ids are rejected.
func (s *Store) PutVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID, value any) error {
	const op = "PutVehicleDependentActivityState"
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	return s.putActivity(op, s.vdActivity, act, v, id, value)
}

// PutRouteState stores value for id on route. Reserved ids are rejected and
// empty routes follow the configured policy.
func (s *Store) PutRouteState(route model.Route, id state.ID, value any) error {
	const op = "PutRouteState"
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	return s.putRoute(op, s.route, route, nil, id, value, true)
}

// PutVehicleDependentRouteState stores value for id on route and the type of
// v. Reserved ids are rejected and empty routes follow the configured policy.
func (s *Store) PutVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID, value any) error {
	const op = "PutVehicleDependentRouteState"
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	return s.putRoute(op, s.vdRoute, route, v, id, value, true)
}

// PutProblemState stores the problem-level value of id. Reserved ids are
// rejected.
func (s *Store) PutProblemState(id state.ID, value any) error {
	const op = "PutProblemState"
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	return s.putProblem(op, id, value)
}

// --- Internal writes (built-in kinds allowed) ---

// PutInternalActivityState is PutActivityState for built-in updaters. It
// bypasses the reserved-slot rule.
func (s *Store) PutInternalActivityState(act model.Activity, id state.ID, value any) error {
	const op = "PutInternalActivityState"
	if err := s.registry.Check(id, op); err != nil {
		return err
	}
	return s.putActivity(op, s.activity, act, nil, id, value)
}

// PutInternalVehicleDependentActivityState is
// PutVehicleDependentActivityState without the reserved-slot rule.
func (s *Store) PutInternalVehicleDependentActivityState(act model.Activity, v model.Vehicle, id state.ID, value any) error {
	const op = "PutInternalVehicleDependentActivityState"
	if err := s.registry.Check(id, op); err != nil {
		return err
	}
	return s.putActivity(op, s.vdActivity, act, v, id, value)
}

// PutInternalRouteState is PutRouteState without the reserved-slot rule.
// Writes on empty routes are dropped whatever the policy.
func (s *Store) PutInternalRouteState(route model.Route, id state.ID, value any) error {
	const op = "PutInternalRouteState"
	if err := s.registry.Check(id, op); err != nil {
		return err
	}
	return s.putRoute(op, s.route, route, nil, id, value, false)
}

// PutInternalVehicleDependentRouteState is PutVehicleDependentRouteState
// without the reserved-slot rule. Writes on empty routes are dropped.
func (s *Store) PutInternalVehicleDependentRouteState(route model.Route, v model.Vehicle, id state.ID, value any) error {
	const op = "PutInternalVehicleDependentRouteState"
	if err := s.registry.Check(id, op); err != nil {
		return err
	}
	return s.putRoute(op, s.vdRoute, route, v, id, value, false)
}

// PutInternalProblemState is PutProblemState without the reserved-slot rule.
func (s *Store) PutInternalProblemState(id state.ID, value any) error {
	const op = "PutInternalProblemState"
	if err := s.registry.Check(id, op); err != nil {
		return err
	}
	return s.putProblem(op, id, value)
}

// --- Defaults ---

// AddDefaultActivityState sets the value returned for unset activity cells
// of id. It survives Clear.
func (s *Store) AddDefaultActivityState(id state.ID, value any) error {
	const op = "AddDefaultActivityState"
	if err := s.checkDefault(op, id, value); err != nil {
		return err
	}
	s.defaults.setActivity(id, value)
	return nil
}

// AddDefaultRouteState sets the value returned for unset route cells of id.
func (s *Store) AddDefaultRouteState(id state.ID, value any) error {
	const op = "AddDefaultRouteState"
	if err := s.checkDefault(op, id, value); err != nil {
		return err
	}
	s.defaults.setRoute(id, value)
	return nil
}

// AddDefaultProblemState sets the value returned while id has no
// problem-level value.
func (s *Store) AddDefaultProblemState(id state.ID, value any) error {
	const op = "AddDefaultProblemState"
	if err := s.checkDefault(op, id, value); err != nil {
		return err
	}
	s.defaults.setProblem(id, value)
	return nil
}

func (s *Store) checkDefault(op string, id state.ID, value any) error {
	if err := s.registry.CheckWritable(id, op); err != nil {
		return err
	}
	if value == nil {
		return rserrors.NewValidationError(fmt.Sprintf("%s: default of state '%s' cannot be nil", op, id.Name()), nil)
	}
	return nil
}

// --- Cell helpers ---

func (s *Store) putActivity(op string, m *Matrix, act model.Activity, v model.Vehicle, id state.ID, value any) error {
	row, ok := activityRow(act)
	if !ok {
		return rserrors.NewValidationError(fmt.Sprintf("%s: activity has no state index", op), nil)
	}
	return s.putCell(op, m, row, v, id, value)
}

// putRoute stores value under the route's first activity. Writes on empty
// routes follow the configured policy when strict, and are always dropped
// otherwise.
func (s *Store) putRoute(op string, m *Matrix, route model.Route, v model.Vehicle, id state.ID, value any, strict bool) error {
	row, ok := model.FirstActivityIndex(route)
	if !ok {
		if strict && s.emptyRoute == config.EmptyRouteError {
			return rserrors.NewValidationError(fmt.Sprintf("%s: route is empty, state '%s' has no storage location", op, id.Name()), nil)
		}
		s.obs.WriteDropped(op, id)
		return nil
	}
	return s.putCell(op, m, row, v, id, value)
}

func (s *Store) putCell(op string, m *Matrix, row int, v model.Vehicle, id state.ID, value any) error {
	if value == nil {
		return rserrors.NewValidationError(fmt.Sprintf("%s: value of state '%s' cannot be nil", op, id.Name()), nil)
	}
	typ := 0
	if m == s.vdActivity || m == s.vdRoute {
		t, ok := typeIndex(v)
		if !ok {
			return rserrors.NewValidationError(fmt.Sprintf("%s: vehicle has no type index", op), nil)
		}
		typ = t
	}
	grew, err := m.Set(row, typ, id.Index(), value)
	if err != nil {
		return rserrors.NewValidationError(op, err)
	}
	if grew {
		rows, types, cols := m.Dims()
		s.obs.StorageResized(m.Name(), rows, types, cols)
	}
	return nil
}

func (s *Store) putProblem(op string, id state.ID, value any) error {
	if value == nil {
		return rserrors.NewValidationError(fmt.Sprintf("%s: value of state '%s' cannot be nil", op, id.Name()), nil)
	}
	s.problem[id.Index()] = value
	return nil
}

// Stats describes the current storage footprint.
type Stats struct {
	Kinds          int // Registered state kinds, built-ins included.
	Slots          int
	ActivityRows   int
	VehicleTypes   int
	ActivityValues int // Set cells in the activity matrices.
	RouteValues    int // Set cells in the route matrices.
}

// Stats returns the current storage footprint. It walks every cell and is
// meant for diagnostics, not for the hot path.
func (s *Store) Stats() Stats {
	rows, types, _ := s.vdActivity.Dims()
	return Stats{
		Kinds:          s.registry.Len(),
		Slots:          s.registry.Slots(),
		ActivityRows:   rows,
		VehicleTypes:   types,
		ActivityValues: s.activity.Count() + s.vdActivity.Count(),
		RouteValues:    s.route.Count() + s.vdRoute.Count(),
	}
}

func activityRow(act model.Activity) (int, bool) {
	if act == nil {
		return 0, false
	}
	idx := act.Index()
	return idx, idx >= 0
}

func typeIndex(v model.Vehicle) (int, bool) {
	if v == nil {
		return 0, false
	}
	key := v.TypeKey()
	if key == nil {
		return 0, false
	}
	idx := key.Index()
	return idx, idx >= 0
}
