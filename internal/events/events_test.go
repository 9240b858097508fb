package events_test

import (
	"context"
	"testing"
	"time"

	intEvents "github.com/gxo-labs/routestate/internal/events"
	"github.com/gxo-labs/routestate/internal/logger"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

func TestChannelEventBus_DropsWhenFull(t *testing.T) {
	bus := intEvents.NewChannelEventBus(2, logger.NewDiscardLogger())
	for i := 0; i < 5; i++ {
		bus.Emit(events.Event{Type: events.JobInserted, RunID: "r"})
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Len(t, bus.GetChannel(), 2)

	bus.Close()
	var got []events.Event
	for e := range bus.GetChannel() {
		got = append(got, e)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, events.JobInserted, got[0].Type)
}

func TestChannelEventBus_DefaultBuffer(t *testing.T) {
	bus := intEvents.NewChannelEventBus(0, logger.NewDiscardLogger())
	assert.Equal(t, intEvents.DefaultBufferSize, cap(bus.GetChannel()))
	assert.Panics(t, func() { intEvents.NewChannelEventBus(1, nil) })
}

func TestNoOpEventBus(t *testing.T) {
	bus := intEvents.NewNoOpEventBus()
	assert.NotPanics(t, func() { bus.Emit(events.Event{Type: events.StatesCleared}) })
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_bus_events_total", Help: "test"}, []string{"type"})
}

func TestMetricsEventListener_CountsUntilClosed(t *testing.T) {
	bus := intEvents.NewChannelEventBus(16, logger.NewDiscardLogger())
	counter := newCounter()
	l := intEvents.NewMetricsEventListener(bus, counter, logger.NewDiscardLogger())

	bus.Emit(events.Event{Type: events.JobInserted})
	bus.Emit(events.Event{Type: events.JobInserted})
	bus.Emit(events.Event{Type: events.StatesCleared})
	bus.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Start(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("listener did not stop after the bus was closed")
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues(string(events.JobInserted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(string(events.StatesCleared))))
}

func TestMetricsEventListener_StopsOnCancel(t *testing.T) {
	bus := intEvents.NewChannelEventBus(16, logger.NewDiscardLogger())
	l := intEvents.NewMetricsEventListener(bus, newCounter(), logger.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Start(ctx)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("listener did not stop after cancellation")
	}
	require.NotPanics(t, bus.Close)
}

func TestNewMetricsEventListener_RequiresDependencies(t *testing.T) {
	bus := intEvents.NewChannelEventBus(1, logger.NewDiscardLogger())
	assert.Panics(t, func() { intEvents.NewMetricsEventListener(nil, newCounter(), logger.NewDiscardLogger()) })
	assert.Panics(t, func() { intEvents.NewMetricsEventListener(bus, nil, logger.NewDiscardLogger()) })
	assert.Panics(t, func() { intEvents.NewMetricsEventListener(bus, newCounter(), nil) })
}
