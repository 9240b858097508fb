package testkit

import (
	"fmt"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
)

// Leg is a directed travel time between two locations.
type Leg struct {
	From, To string
	Time     float64
}

// DistanceMatrix is a fixed travel time table implementing
// model.TransportCosts. Legs are symmetric unless both directions are given.
// Cost equals time multiplied by CostPerTime.
type DistanceMatrix struct {
	m           map[string]float64
	CostPerTime float64
}

// NewDistanceMatrix builds a matrix from legs.
func NewDistanceMatrix(legs ...Leg) *DistanceMatrix {
	m := make(map[string]float64, 2*len(legs))
	for _, l := range legs {
		if _, ok := m[l.To+"|"+l.From]; !ok {
			m[l.To+"|"+l.From] = l.Time
		}
		m[l.From+"|"+l.To] = l.Time
	}
	return &DistanceMatrix{m: m, CostPerTime: 1}
}

func (d *DistanceMatrix) lookup(from, to string) float64 {
	if from == to {
		return 0
	}
	t, ok := d.m[from+"|"+to]
	if !ok {
		panic(fmt.Sprintf("testkit: missing leg %q -> %q", from, to))
	}
	return t
}

func (d *DistanceMatrix) TransportTime(from, to string, _ float64, _ model.Vehicle) float64 {
	return d.lookup(from, to)
}

func (d *DistanceMatrix) BackwardTransportTime(from, to string, _ float64, _ model.Vehicle) float64 {
	return d.lookup(from, to)
}

func (d *DistanceMatrix) TransportCost(from, to string, _ float64, _ model.Vehicle) float64 {
	return d.lookup(from, to) * d.CostPerTime
}
