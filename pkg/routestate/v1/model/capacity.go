package model

import (
	"fmt"
	"strings"
)

// Capacity is an immutable multi-dimensional quantity (weight, volume,
// pallets...). Missing dimensions are treated as zero, so capacities of
// different dimensionality can be combined.
type Capacity struct {
	dims []int
}

// NewCapacity builds a capacity from its per-dimension values.
func NewCapacity(values ...int) Capacity {
	if len(values) == 0 {
		return Capacity{}
	}
	dims := make([]int, len(values))
	copy(dims, values)
	return Capacity{dims: dims}
}

// Dimensions returns the number of explicitly set dimensions.
func (c Capacity) Dimensions() int { return len(c.dims) }

// Get returns the value of dimension i, zero when i is not set.
func (c Capacity) Get(i int) int {
	if i < 0 || i >= len(c.dims) {
		return 0
	}
	return c.dims[i]
}

// Add returns c + o.
func (c Capacity) Add(o Capacity) Capacity {
	return combine(c, o, func(a, b int) int { return a + b })
}

// Subtract returns c - o.
func (c Capacity) Subtract(o Capacity) Capacity {
	return combine(c, o, func(a, b int) int { return a - b })
}

// Negate returns -c.
func (c Capacity) Negate() Capacity {
	return Capacity{}.Subtract(c)
}

// Max returns the dimension-wise maximum of a and b.
func Max(a, b Capacity) Capacity {
	return combine(a, b, func(x, y int) int {
		if x > y {
			return x
		}
		return y
	})
}

// FitsIn reports whether every dimension of c is at most the matching
// dimension of limit.
func (c Capacity) FitsIn(limit Capacity) bool {
	n := max(len(c.dims), len(limit.dims))
	for i := 0; i < n; i++ {
		if c.Get(i) > limit.Get(i) {
			return false
		}
	}
	return true
}

// Equal reports dimension-wise equality, ignoring trailing zero dimensions.
func (c Capacity) Equal(o Capacity) bool {
	n := max(len(c.dims), len(o.dims))
	for i := 0; i < n; i++ {
		if c.Get(i) != o.Get(i) {
			return false
		}
	}
	return true
}

func (c Capacity) String() string {
	parts := make([]string, len(c.dims))
	for i, v := range c.dims {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func combine(a, b Capacity, op func(x, y int) int) Capacity {
	n := max(len(a.dims), len(b.dims))
	if n == 0 {
		return Capacity{}
	}
	dims := make([]int, n)
	for i := 0; i < n; i++ {
		dims[i] = op(a.Get(i), b.Get(i))
	}
	return Capacity{dims: dims}
}

// TimeWindow is a closed interval [Start, End] of admissible times.
type TimeWindow struct {
	Start float64
	End   float64
}

// Contains reports whether t lies within the window.
func (tw TimeWindow) Contains(t float64) bool {
	return t >= tw.Start && t <= tw.End
}
