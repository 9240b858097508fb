package model_test

import (
	"testing"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/stretchr/testify/assert"
)

func TestCapacity_Arithmetic(t *testing.T) {
	a := model.NewCapacity(3, 1)
	b := model.NewCapacity(2, 4, 5)

	assert.True(t, a.Add(b).Equal(model.NewCapacity(5, 5, 5)))
	assert.True(t, a.Subtract(b).Equal(model.NewCapacity(1, -3, -5)))
	assert.True(t, a.Negate().Equal(model.NewCapacity(-3, -1)))
	assert.True(t, model.Max(a, b).Equal(model.NewCapacity(3, 4, 5)))
	assert.Equal(t, 3, b.Dimensions())
	assert.Equal(t, 0, a.Get(7), "missing dimensions read as zero")
	assert.True(t, a.Equal(model.NewCapacity(3, 1, 0)), "trailing zeros are ignored")
}

func TestCapacity_ImmutableAndZero(t *testing.T) {
	values := []int{1, 2}
	c := model.NewCapacity(values...)
	values[0] = 99
	assert.Equal(t, 1, c.Get(0), "constructor copies its input")

	sum := c.Add(model.NewCapacity(1))
	assert.Equal(t, 1, c.Get(0), "Add does not modify the receiver")
	assert.Equal(t, 2, sum.Get(0))

	var zero model.Capacity
	assert.True(t, zero.Equal(model.NewCapacity()))
	assert.True(t, zero.Add(zero).Equal(zero))
	assert.Equal(t, "[]", zero.String())
	assert.Equal(t, "[1,2]", c.String())
}

func TestCapacity_FitsIn(t *testing.T) {
	limit := model.NewCapacity(10, 5)
	testCases := []struct {
		name string
		load model.Capacity
		fits bool
	}{
		{name: "Below", load: model.NewCapacity(9, 5), fits: true},
		{name: "Exact", load: model.NewCapacity(10, 5), fits: true},
		{name: "Over first dimension", load: model.NewCapacity(11, 0), fits: false},
		{name: "Extra dimension", load: model.NewCapacity(1, 1, 1), fits: false},
		{name: "Empty", load: model.NewCapacity(), fits: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.fits, tc.load.FitsIn(limit))
		})
	}
}

func TestTimeWindow_Contains(t *testing.T) {
	tw := model.TimeWindow{Start: 10, End: 20}
	assert.True(t, tw.Contains(10))
	assert.True(t, tw.Contains(20))
	assert.False(t, tw.Contains(9.9))
	assert.False(t, tw.Contains(20.1))
}

type stubRoute struct {
	acts []model.Activity
}

func (r stubRoute) Activities() []model.Activity { return r.acts }
func (r stubRoute) Jobs() []model.Job            { return nil }
func (r stubRoute) Start() model.Activity        { return nil }
func (r stubRoute) End() model.Activity          { return nil }
func (r stubRoute) Vehicle() model.Vehicle       { return nil }
func (r stubRoute) DepartureTime() float64       { return 0 }
func (r stubRoute) IsEmpty() bool                { return len(r.acts) == 0 }

type stubActivity struct{ idx int }

func (a stubActivity) Index() int                                     { return a.idx }
func (a stubActivity) Name() string                                   { return "stub" }
func (a stubActivity) Location() string                               { return "" }
func (a stubActivity) OperationTime() float64                         { return 0 }
func (a stubActivity) TheoreticalEarliestOperationStartTime() float64 { return 0 }
func (a stubActivity) TheoreticalLatestOperationStartTime() float64   { return 0 }
func (a stubActivity) LoadChange() model.Capacity                     { return model.Capacity{} }

func TestFirstActivityIndex(t *testing.T) {
	idx, ok := model.FirstActivityIndex(stubRoute{acts: []model.Activity{stubActivity{4}, stubActivity{2}}})
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = model.FirstActivityIndex(stubRoute{})
	assert.False(t, ok, "empty route has no key")

	_, ok = model.FirstActivityIndex(stubRoute{acts: []model.Activity{stubActivity{model.NoIndex}}})
	assert.False(t, ok, "negative first index has no key")

	_, ok = model.FirstActivityIndex(nil)
	assert.False(t, ok)
}

func TestJobKind_String(t *testing.T) {
	assert.Equal(t, "service", model.Service.String())
	assert.Equal(t, "pickup", model.Pickup.String())
	assert.Equal(t, "delivery", model.Delivery.String())
	assert.Equal(t, "unknown", model.JobKind(42).String())
}
