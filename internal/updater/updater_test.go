package updater_test

import (
	"math"
	"testing"

	"github.com/gxo-labs/routestate/internal/config"
	"github.com/gxo-labs/routestate/internal/lifecycle"
	"github.com/gxo-labs/routestate/internal/logger"
	intState "github.com/gxo-labs/routestate/internal/state"
	"github.com/gxo-labs/routestate/internal/testkit"
	"github.com/gxo-labs/routestate/internal/updater"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario is a three stop tour:
//
//	hub -10- a (deliver 3) -5- b (pick up 2) -7- c (deliver 4) -12- hub
//
// Every stop takes 2 time units. b must start within [20, 30], c by 50 and
// the truck must be back by 80. A second, smaller vehicle type must be back
// by 40.
type scenario struct {
	store   *intState.Store
	adapter *lifecycle.Adapter
	costs   *testkit.DistanceMatrix
	problem *testkit.Problem
	truck   *testkit.Truck
	van     *testkit.Truck
	a, b, c *testkit.Package
	route   *testkit.Route
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	s := &scenario{
		costs: testkit.NewDistanceMatrix(
			testkit.Leg{From: "hub", To: "a", Time: 10},
			testkit.Leg{From: "a", To: "b", Time: 5},
			testkit.Leg{From: "b", To: "c", Time: 7},
			testkit.Leg{From: "c", To: "hub", Time: 12},
			testkit.Leg{From: "hub", To: "b", Time: 14},
			testkit.Leg{From: "a", To: "c", Time: 9},
		),
		truck: testkit.NewTruck(0, "truck", 0, "hub", 10),
		van:   testkit.NewTruck(1, "van", 1, "hub", 5),
		a:     testkit.NewDelivery(0, "a", 1, "a", 3),
		b:     testkit.NewPickup(1, "b", 2, "b", 2),
		c:     testkit.NewDelivery(2, "c", 3, "c", 4),
	}
	s.truck.ReturnBy = 80
	s.van.ReturnBy = 40
	for _, p := range []*testkit.Package{s.a, s.b, s.c} {
		p.Stop.Service = 2
	}
	s.b.Stop.Window(20, 30)
	s.c.Stop.Window(0, 50)
	s.problem = &testkit.Problem{Activities: 4, Fleet: []*testkit.Truck{s.truck, s.van}}
	s.route = testkit.NewRouteOf(s.truck, s.a, s.b, s.c)

	s.store = intState.NewStore(config.Default().Storage, s.problem.ActivityCount(), 1, nil)
	s.adapter = lifecycle.NewAdapter(s.store, logger.NewDiscardLogger())
	return s
}

func (s *scenario) register(t *testing.T, us ...listener.StateUpdater) {
	t.Helper()
	for _, u := range us {
		_, err := s.adapter.Register(u)
		require.NoError(t, err)
	}
}

func (s *scenario) registerAll(t *testing.T) {
	s.register(t,
		updater.NewLoads(s.store),
		updater.NewPastMaxLoads(s.store),
		updater.NewFutureMaxLoads(s.store),
		updater.NewRouteMaxLoad(s.store),
		updater.NewPracticalTimeWindows(s.store, s.costs),
		updater.NewVehicleDependentPracticalTimeWindows(s.store, s.costs, s.problem),
		updater.NewActivityTimes(s.store, s.costs),
		updater.NewVariableCosts(s.store, s.costs),
	)
}

func activityCap(t *testing.T, r state.Reader, act model.Activity, id state.ID) model.Capacity {
	t.Helper()
	c, ok, err := state.ActivityState[model.Capacity](r, act, id)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}

func routeCap(t *testing.T, r state.Reader, route model.Route, id state.ID) model.Capacity {
	t.Helper()
	c, ok, err := state.RouteState[model.Capacity](r, route, id)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}

func activityFloat(t *testing.T, r state.Reader, act model.Activity, id state.ID) float64 {
	t.Helper()
	f, ok, err := state.ActivityState[float64](r, act, id)
	require.NoError(t, err)
	require.True(t, ok)
	return f
}

func assertCap(t *testing.T, want int, got model.Capacity, msg string) {
	t.Helper()
	assert.True(t, got.Equal(model.NewCapacity(want)), "%s: want [%d], got %s", msg, want, got)
}

func TestLoadUpdaters(t *testing.T) {
	s := newScenario(t)
	s.registerAll(t)
	require.NoError(t, s.adapter.InformInsertionStarts(testkit.Routes(s.route), nil))

	assertCap(t, 7, routeCap(t, s.store, s.route, state.LoadAtBeginning), "load at beginning")
	assertCap(t, 2, routeCap(t, s.store, s.route, state.LoadAtEnd), "load at end")
	assertCap(t, 7, routeCap(t, s.store, s.route, state.MaxLoad), "max load")

	for _, tc := range []struct {
		stop               *testkit.Stop
		load, past, future int
	}{
		{s.a.Stop, 4, 7, 6},
		{s.b.Stop, 6, 7, 6},
		{s.c.Stop, 2, 7, 2},
	} {
		assertCap(t, tc.load, activityCap(t, s.store, tc.stop, state.Load), tc.stop.Loc+" load")
		assertCap(t, tc.past, activityCap(t, s.store, tc.stop, state.PastMaxLoad), tc.stop.Loc+" past max")
		assertCap(t, tc.future, activityCap(t, s.store, tc.stop, state.FutureMaxLoad), tc.stop.Loc+" future max")
	}
}

func TestTimeUpdaters(t *testing.T) {
	s := newScenario(t)
	s.registerAll(t)
	require.NoError(t, s.adapter.InformInsertionStarts(testkit.Routes(s.route), nil))

	for _, tc := range []struct {
		stop             *testkit.Stop
		earliest, latest float64
		latestVan        float64
	}{
		{s.a.Stop, 10, 23, 10},
		{s.b.Stop, 20, 30, 17},
		{s.c.Stop, 29, 50, 26},
	} {
		assert.Equal(t, tc.earliest, activityFloat(t, s.store, tc.stop, state.EarliestOperationStartTime), tc.stop.Loc)
		assert.Equal(t, tc.latest, activityFloat(t, s.store, tc.stop, state.LatestOperationStartTime), tc.stop.Loc)

		truckLatest, ok, err := state.VehicleDependentActivityState[float64](s.store, tc.stop, s.truck, state.LatestOperationStartTime)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tc.latest, truckLatest, tc.stop.Loc)
		vanLatest, _, err := state.VehicleDependentActivityState[float64](s.store, tc.stop, s.van, state.LatestOperationStartTime)
		require.NoError(t, err)
		assert.Equal(t, tc.latestVan, vanLatest, tc.stop.Loc)
	}
}

func TestVariableCosts(t *testing.T) {
	s := newScenario(t)
	s.registerAll(t)
	require.NoError(t, s.adapter.InformInsertionStarts(testkit.Routes(s.route), nil))

	for _, tc := range []struct {
		stop           *testkit.Stop
		cost, duration float64
	}{
		{s.a.Stop, 10, 12},
		{s.b.Stop, 15, 22},
		{s.c.Stop, 22, 31},
	} {
		assert.Equal(t, tc.cost, activityFloat(t, s.store, tc.stop, state.Costs), tc.stop.Loc)
		assert.Equal(t, tc.duration, activityFloat(t, s.store, tc.stop, state.Duration), tc.stop.Loc)
	}

	cost, _, err := state.RouteState[float64](s.store, s.route, state.Costs)
	require.NoError(t, err)
	assert.Equal(t, 34.0, cost)
	duration, _, err := state.RouteState[float64](s.store, s.route, state.Duration)
	require.NoError(t, err)
	assert.Equal(t, 43.0, duration)
}

func TestLoads_InsertionInFrontMovesRouteKey(t *testing.T) {
	s := newScenario(t)
	s.registerAll(t)
	route := testkit.NewRouteOf(s.truck, s.b, s.c)
	require.NoError(t, s.adapter.InformInsertionStarts(testkit.Routes(route), nil))
	assertCap(t, 4, routeCap(t, s.store, route, state.LoadAtBeginning), "before insertion")

	route.Insert(s.a, 0)
	require.NoError(t, s.adapter.InformJobInserted(s.a, route, 0, 0))

	assertCap(t, 7, routeCap(t, s.store, route, state.LoadAtBeginning), "after insertion")
	assertCap(t, 2, routeCap(t, s.store, route, state.LoadAtEnd), "after insertion")
	assertCap(t, 4, activityCap(t, s.store, s.a.Stop, state.Load), "a")
	assertCap(t, 2, activityCap(t, s.store, s.c.Stop, state.Load), "c")
}

func TestTimeUpdaters_UnboundedWindows(t *testing.T) {
	s := newScenario(t)
	s.register(t, updater.NewPracticalTimeWindows(s.store, s.costs))
	route := testkit.NewRouteOf(testkit.NewTruck(2, "free", 0, "hub"), s.a)
	require.NoError(t, s.adapter.InformInsertionStarts(testkit.Routes(route), nil))

	latest := activityFloat(t, s.store, s.a.Stop, state.LatestOperationStartTime)
	assert.True(t, latest > 1e300, "no deadline leaves the window open")
	assert.False(t, math.IsInf(latest, 0))
}

func TestVehicleDependentPracticalTimeWindows_Representatives(t *testing.T) {
	s := newScenario(t)
	twin := testkit.NewTruck(2, "twin", 0, "hub", 10)
	twin.ReturnBy = 5
	s.problem.Fleet = append(s.problem.Fleet, twin)

	u := updater.NewVehicleDependentPracticalTimeWindows(s.store, s.costs, s.problem)
	require.Len(t, u.Vehicles(), 2)
	assert.Same(t, s.truck, u.Vehicles()[0])
	assert.Same(t, s.van, u.Vehicles()[1])

	assert.Empty(t, updater.NewVehicleDependentPracticalTimeWindows(s.store, s.costs, nil).Vehicles())
}

func TestUpdaters_ReportTypeMismatch(t *testing.T) {
	s := newScenario(t)
	s.register(t, updater.NewPastMaxLoads(s.store))
	require.NoError(t, s.store.PutInternalActivityState(s.b.Stop, state.Load, 6))

	err := s.adapter.InformInsertionStarts(testkit.Routes(s.route), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, rserrors.ErrTypeMismatch)
	assert.Contains(t, err.Error(), "read load")
}
