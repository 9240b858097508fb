package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/gxo-labs/routestate"
	"github.com/gxo-labs/routestate/internal/testkit"
	v1 "github.com/gxo-labs/routestate/pkg/routestate/v1"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

const (
	demoHub          = "depot"
	demoTruckSize    = 20
	demoHorizon      = 480.0
	demoRemovalShare = 0.2
)

// demo is a toy ruin-and-recreate loop: random removals, cheapest-load
// reinsertion at a random position. It exercises the manager the way a
// solver does, not a real search.
type demo struct {
	rng      *rand.Rand
	problem  *testkit.Problem
	costs    *testkit.DistanceMatrix
	solution *testkit.Solution
	pkgs     []*testkit.Package
}

func newDemo(trucks, packages int, seed int64) *demo {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	d := &demo{rng: rng, problem: &testkit.Problem{Activities: packages}}

	type point struct{ x, y float64 }
	coords := map[string]point{demoHub: {50, 50}}
	for i := 0; i < packages; i++ {
		loc := fmt.Sprintf("loc-%d", i)
		coords[loc] = point{rng.Float64() * 100, rng.Float64() * 100}
		var p *testkit.Package
		if i%2 == 0 {
			p = testkit.NewDelivery(i, fmt.Sprintf("pkg-%d", i), i, loc, 1+rng.IntN(3))
		} else {
			p = testkit.NewPickup(i, fmt.Sprintf("pkg-%d", i), i, loc, 1+rng.IntN(3))
		}
		open := rng.Float64() * demoHorizon / 2
		p.Stop.Window(open, open+demoHorizon/2)
		p.Stop.Service = 5
		d.pkgs = append(d.pkgs, p)
	}

	var legs []testkit.Leg
	for a, pa := range coords {
		for b, pb := range coords {
			if a < b {
				legs = append(legs, testkit.Leg{From: a, To: b, Time: math.Round(math.Hypot(pa.x-pb.x, pa.y-pb.y))})
			}
		}
	}
	d.costs = testkit.NewDistanceMatrix(legs...)

	d.solution = &testkit.Solution{}
	for i := 0; i < trucks; i++ {
		t := testkit.NewTruck(i, fmt.Sprintf("truck-%d", i), testkit.VehicleType(i%2), demoHub, demoTruckSize)
		t.ReturnBy = demoHorizon
		d.problem.Fleet = append(d.problem.Fleet, t)
		d.solution.Tours = append(d.solution.Tours, testkit.NewRoute(t))
	}
	for i, p := range d.pkgs {
		d.solution.Tours[i%trucks].Insert(p, len(d.solution.Tours[i%trucks].Stops))
	}
	return d
}

func (d *demo) run(ctx context.Context, m v1.ManagerV1, iterations int) error {
	if err := m.UpdateLoadStates(); err != nil {
		return err
	}
	if err := m.UpdateTimeWindowStates(); err != nil {
		return err
	}
	vc, err := routestate.NewVariableCosts(m)
	if err != nil {
		return err
	}
	if err := m.AddStateUpdater(vc); err != nil {
		return err
	}

	for i := 1; i <= iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.InformIterationStarts(i, d.problem, []model.Solution{d.solution}); err != nil {
			return err
		}
		if err := d.ruin(m); err != nil {
			return err
		}
		if err := d.recreate(m); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) ruin(m v1.ManagerV1) error {
	routes := d.solution.Routes()
	if err := m.InformRuinStarts(routes); err != nil {
		return err
	}
	for _, r := range d.solution.Tours {
		for _, p := range append([]*testkit.Package(nil), r.Packages...) {
			if d.rng.Float64() >= demoRemovalShare {
				continue
			}
			r.Remove(p)
			d.solution.Unassigned = append(d.solution.Unassigned, p)
			if err := m.InformRemoved(p, r); err != nil {
				return err
			}
		}
	}
	return m.InformRuinEnds(routes, d.solution.UnassignedJobs())
}

func (d *demo) recreate(m v1.ManagerV1) error {
	if err := m.InformInsertionStarts(d.solution.Routes(), d.solution.UnassignedJobs()); err != nil {
		return err
	}
	var left []*testkit.Package
	for _, p := range d.solution.Unassigned {
		best, err := d.leastLoaded(m, p)
		if err != nil {
			return err
		}
		if best == nil {
			left = append(left, p)
			continue
		}
		best.Insert(p, d.rng.IntN(len(best.Stops)+1))
		if err := m.InformJobInserted(p, best, 0, 0); err != nil {
			return err
		}
	}
	d.solution.Unassigned = left
	return m.InformInsertionEnds(d.solution.Routes())
}

// leastLoaded returns the route with the lowest peak load that can still
// take p, or nil.
func (d *demo) leastLoaded(m v1.ManagerV1, p *testkit.Package) (*testkit.Route, error) {
	var best *testkit.Route
	bestPeak := math.MaxInt
	for _, r := range d.solution.Tours {
		peak, _, err := state.RouteState[model.Capacity](m, r, state.MaxLoad)
		if err != nil {
			return nil, err
		}
		if !peak.Add(p.Size()).FitsIn(r.Truck.Capacity()) {
			continue
		}
		if peak.Get(0) < bestPeak {
			best, bestPeak = r, peak.Get(0)
		}
	}
	return best, nil
}

func (d *demo) report(m v1.ManagerV1, log rslog.Logger) error {
	for _, r := range d.solution.Tours {
		peak, _, err := state.RouteState[model.Capacity](m, r, state.MaxLoad)
		if err != nil {
			return err
		}
		cost, _, err := state.RouteState[float64](m, r, state.Costs)
		if err != nil {
			return err
		}
		duration, _, err := state.RouteState[float64](m, r, state.Duration)
		if err != nil {
			return err
		}
		log.Infof("%s: %d stops, peak load %s, cost %.1f, duration %.1f", r.Truck.ID(), len(r.Stops), peak, cost, duration)
	}
	log.Infof("%d packages unassigned", len(d.solution.Unassigned))
	return nil
}
