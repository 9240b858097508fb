// Package testkit provides a small in-memory routing model (trucks, stops,
// packages and a distance matrix) implementing the model contracts. It backs
// the tests of the state manager and its updaters.
package testkit

import (
	"math"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
)

// VehicleType is a plain vehicle type key.
type VehicleType int

func (t VehicleType) Index() int { return int(t) }

// Truck is a vehicle with a single capacity dimension per entry of Cap.
type Truck struct {
	Idx      int
	TruckID  string
	Type     VehicleType
	Cap      model.Capacity
	StartLoc string
	EndLoc   string
	DepartAt float64
	ReturnBy float64
}

// NewTruck builds a truck departing at time 0 from and returning to hub
// without a latest arrival.
func NewTruck(idx int, id string, typ VehicleType, hub string, capacity ...int) *Truck {
	return &Truck{
		Idx:      idx,
		TruckID:  id,
		Type:     typ,
		Cap:      model.NewCapacity(capacity...),
		StartLoc: hub,
		EndLoc:   hub,
		ReturnBy: math.MaxFloat64,
	}
}

func (t *Truck) Index() int                    { return t.Idx }
func (t *Truck) ID() string                    { return t.TruckID }
func (t *Truck) TypeKey() model.VehicleTypeKey { return t.Type }
func (t *Truck) Capacity() model.Capacity      { return t.Cap }
func (t *Truck) StartLocation() string         { return t.StartLoc }
func (t *Truck) EndLocation() string           { return t.EndLoc }
func (t *Truck) EarliestDeparture() float64    { return t.DepartAt }
func (t *Truck) LatestArrival() float64        { return t.ReturnBy }

// Stop is a tour activity.
type Stop struct {
	Idx      int
	Kind     string
	Loc      string
	Service  float64
	Earliest float64
	Latest   float64
	Change   model.Capacity
}

// NewStop builds a stop with an unbounded time window.
func NewStop(idx int, kind, loc string) *Stop {
	return &Stop{Idx: idx, Kind: kind, Loc: loc, Latest: math.MaxFloat64}
}

// Window sets the hard time window and returns the stop.
func (s *Stop) Window(earliest, latest float64) *Stop {
	s.Earliest, s.Latest = earliest, latest
	return s
}

func (s *Stop) Index() int                                     { return s.Idx }
func (s *Stop) Name() string                                   { return s.Kind }
func (s *Stop) Location() string                               { return s.Loc }
func (s *Stop) OperationTime() float64                         { return s.Service }
func (s *Stop) TheoreticalEarliestOperationStartTime() float64 { return s.Earliest }
func (s *Stop) TheoreticalLatestOperationStartTime() float64   { return s.Latest }
func (s *Stop) LoadChange() model.Capacity                     { return s.Change }

// Package is a job served by exactly one stop.
type Package struct {
	Idx       int
	PackageID string
	JobKind   model.JobKind
	Demand    model.Capacity
	Stop      *Stop
}

// NewDelivery builds a delivery package of the given demand, served at a stop
// with activity index stopIdx.
func NewDelivery(idx int, id string, stopIdx int, loc string, demand ...int) *Package {
	return newPackage(idx, id, model.Delivery, stopIdx, loc, demand)
}

// NewPickup builds a pickup package of the given demand.
func NewPickup(idx int, id string, stopIdx int, loc string, demand ...int) *Package {
	return newPackage(idx, id, model.Pickup, stopIdx, loc, demand)
}

func newPackage(idx int, id string, kind model.JobKind, stopIdx int, loc string, demand []int) *Package {
	size := model.NewCapacity(demand...)
	stop := NewStop(stopIdx, kind.String(), loc)
	if kind == model.Delivery {
		stop.Change = size.Negate()
	} else {
		stop.Change = size
	}
	return &Package{Idx: idx, PackageID: id, JobKind: kind, Demand: size, Stop: stop}
}

func (p *Package) Index() int           { return p.Idx }
func (p *Package) ID() string           { return p.PackageID }
func (p *Package) Kind() model.JobKind  { return p.JobKind }
func (p *Package) Size() model.Capacity { return p.Demand }

// Route is a mutable tour of a truck. Start and end are synthetic stops at
// the truck's depots carrying model.NoIndex.
type Route struct {
	Truck     *Truck
	Stops     []*Stop
	Departure float64
	Packages  []*Package
}

// NewRoute builds a route for truck visiting stops in order.
func NewRoute(truck *Truck, stops ...*Stop) *Route {
	return &Route{Truck: truck, Stops: stops, Departure: truck.DepartAt}
}

// NewRouteOf builds a route for truck serving packages in order.
func NewRouteOf(truck *Truck, pkgs ...*Package) *Route {
	r := NewRoute(truck)
	for _, p := range pkgs {
		r.Insert(p, len(r.Stops))
	}
	return r
}

// Insert appends the package's stop at position pos (clamped to the tour).
func (r *Route) Insert(p *Package, pos int) {
	pos = min(max(pos, 0), len(r.Stops))
	r.Stops = append(r.Stops, nil)
	copy(r.Stops[pos+1:], r.Stops[pos:])
	r.Stops[pos] = p.Stop
	r.Packages = append(r.Packages, p)
}

// Remove takes the package's stop out of the tour.
func (r *Route) Remove(p *Package) {
	for i, s := range r.Stops {
		if s == p.Stop {
			r.Stops = append(r.Stops[:i], r.Stops[i+1:]...)
			break
		}
	}
	for i, j := range r.Packages {
		if j == p {
			r.Packages = append(r.Packages[:i], r.Packages[i+1:]...)
			break
		}
	}
}

func (r *Route) Activities() []model.Activity {
	out := make([]model.Activity, len(r.Stops))
	for i, s := range r.Stops {
		out[i] = s
	}
	return out
}

func (r *Route) Jobs() []model.Job { return Jobs(r.Packages...) }

func (r *Route) Start() model.Activity {
	s := NewStop(model.NoIndex, "start", r.Truck.StartLoc)
	s.Earliest = r.Truck.DepartAt
	s.Latest = r.Truck.DepartAt
	return s
}

func (r *Route) End() model.Activity {
	return NewStop(model.NoIndex, "end", r.Truck.EndLoc).Window(0, r.Truck.ReturnBy)
}

func (r *Route) Vehicle() model.Vehicle { return r.Truck }
func (r *Route) DepartureTime() float64 { return r.Departure }
func (r *Route) IsEmpty() bool          { return len(r.Stops) == 0 }

// Problem is a fixed-size problem instance.
type Problem struct {
	Activities int
	Fleet      []*Truck
}

func (p *Problem) ActivityCount() int { return p.Activities }

func (p *Problem) VehicleTypes() []model.VehicleTypeKey {
	seen := map[VehicleType]bool{}
	var out []model.VehicleTypeKey
	for _, t := range p.Fleet {
		if !seen[t.Type] {
			seen[t.Type] = true
			out = append(out, t.Type)
		}
	}
	return out
}

func (p *Problem) Vehicles() []model.Vehicle {
	out := make([]model.Vehicle, len(p.Fleet))
	for i, t := range p.Fleet {
		out[i] = t
	}
	return out
}

// Solution is a set of routes with unassigned packages.
type Solution struct {
	Tours      []*Route
	Unassigned []*Package
	Total      float64
}

func (s *Solution) Routes() []model.Route { return Routes(s.Tours...) }

func (s *Solution) UnassignedJobs() []model.Job { return Jobs(s.Unassigned...) }

func (s *Solution) Cost() float64 { return s.Total }

// Routes converts routes to the model slice type.
func Routes(rs ...*Route) []model.Route {
	out := make([]model.Route, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

// Jobs converts packages to the model slice type.
func Jobs(ps ...*Package) []model.Job {
	out := make([]model.Job, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}
