// Package model defines the contracts of the routing domain objects the state
// manager works with. The objects themselves are owned by the surrounding
// solver; the state manager only relies on the stable integer indices and the
// few scheduling attributes exposed here.
package model

// NoIndex is the sentinel index of synthetic or out-of-route activities
// (route start and end, probe activities built during insertion evaluation).
// Activities carrying a negative index never have stored state.
const NoIndex = -1

// Activity is a single stop or operation within a route.
type Activity interface {
	// Index returns a non-negative index unique within the problem instance,
	// or a negative value for synthetic activities.
	Index() int
	// Name returns a human readable activity kind, e.g. "pickup" or "start".
	Name() string
	// Location identifies where the activity takes place. It is the key used
	// with TransportCosts.
	Location() string
	// OperationTime is the service duration spent at the location.
	OperationTime() float64
	// TheoreticalEarliestOperationStartTime is the lower bound of the
	// activity's hard time window.
	TheoreticalEarliestOperationStartTime() float64
	// TheoreticalLatestOperationStartTime is the upper bound of the
	// activity's hard time window.
	TheoreticalLatestOperationStartTime() float64
	// LoadChange is the signed change of the vehicle load caused by the
	// activity: positive for pickups, negative for deliveries.
	LoadChange() Capacity
}

// VehicleTypeKey identifies a class of vehicles sharing capacity and cost
// characteristics. It selects the vehicle-dependent storage plane.
type VehicleTypeKey interface {
	Index() int
}

// Vehicle is an individual vehicle instance.
type Vehicle interface {
	Index() int
	ID() string
	TypeKey() VehicleTypeKey
	Capacity() Capacity
	StartLocation() string
	EndLocation() string
	EarliestDeparture() float64
	LatestArrival() float64
}

// JobKind distinguishes how a job affects the vehicle load.
type JobKind int

const (
	// Service behaves like a pickup: its size is carried until the route end.
	Service JobKind = iota
	// Pickup loads goods that are carried to the route end.
	Pickup
	// Delivery unloads goods that were loaded at the route start.
	Delivery
)

// String returns the lowercase job kind name.
func (k JobKind) String() string {
	switch k {
	case Service:
		return "service"
	case Pickup:
		return "pickup"
	case Delivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Job is a unit of work assigned to a route by the insertion heuristics.
type Job interface {
	Index() int
	ID() string
	Kind() JobKind
	Size() Capacity
}

// Route is an ordered sequence of activities served by one vehicle. It has no
// stored identity of its own: route-level state is keyed by the index of the
// first tour activity.
type Route interface {
	// Activities returns the tour activities in visiting order, excluding
	// the synthetic start and end.
	Activities() []Activity
	// Jobs returns the jobs served by the route.
	Jobs() []Job
	// Start and End are the synthetic depot activities of the route.
	Start() Activity
	End() Activity
	Vehicle() Vehicle
	// DepartureTime is the time the vehicle leaves the start location.
	DepartureTime() float64
	// IsEmpty reports whether the route has no tour activities.
	IsEmpty() bool
}

// Problem exposes the size estimates used to dimension the storage.
type Problem interface {
	// ActivityCount is the number of activities known to the problem.
	ActivityCount() int
	// VehicleTypes returns the distinct vehicle types of the fleet.
	VehicleTypes() []VehicleTypeKey
	// Vehicles returns the vehicles of the fleet.
	Vehicles() []Vehicle
}

// Solution is a candidate solution handed over at iteration start.
type Solution interface {
	Routes() []Route
	UnassignedJobs() []Job
	Cost() float64
}

// TransportCosts computes travel times and costs between locations.
type TransportCosts interface {
	// TransportTime is the time needed to travel from one location to another
	// when departing at departureTime.
	TransportTime(from, to string, departureTime float64, v Vehicle) float64
	// BackwardTransportTime is the travel time when the vehicle must arrive at
	// the destination at arrivalTime.
	BackwardTransportTime(from, to string, arrivalTime float64, v Vehicle) float64
	// TransportCost is the cost of the trip departing at departureTime.
	TransportCost(from, to string, departureTime float64, v Vehicle) float64
}

// FirstActivityIndex returns the storage key of route-level state, or false
// for empty routes which have no storage location.
func FirstActivityIndex(r Route) (int, bool) {
	if r == nil || r.IsEmpty() {
		return 0, false
	}
	acts := r.Activities()
	if len(acts) == 0 {
		return 0, false
	}
	idx := acts[0].Index()
	if idx < 0 {
		return 0, false
	}
	return idx, true
}
