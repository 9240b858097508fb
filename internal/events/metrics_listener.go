package events

import (
	"context"

	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsEventListener drains a ChannelEventBus and counts the events it
// receives by type.
type MetricsEventListener struct {
	bus     *ChannelEventBus
	log     rslog.Logger
	counter *prometheus.CounterVec
}

// NewMetricsEventListener creates a listener incrementing counter, which must
// carry a single "type" label.
func NewMetricsEventListener(bus *ChannelEventBus, counter *prometheus.CounterVec, log rslog.Logger) *MetricsEventListener {
	if bus == nil || counter == nil || log == nil {
		panic("MetricsEventListener requires a non-nil ChannelEventBus, CounterVec, and Logger")
	}
	return &MetricsEventListener{
		bus:     bus,
		log:     log.With("component", "MetricsEventListener"),
		counter: counter,
	}
}

// Start consumes events until the bus is closed or ctx is done. It blocks;
// run it in its own goroutine.
func (l *MetricsEventListener) Start(ctx context.Context) {
	l.log.Debugf("Starting metrics event listener...")
	for {
		select {
		case event, ok := <-l.bus.GetChannel():
			if !ok {
				l.log.Debugf("Event bus channel closed, stopping listener.")
				return
			}
			l.handleEvent(event)
		case <-ctx.Done():
			l.log.Debugf("Context cancelled, stopping metrics event listener.")
			return
		}
	}
}

func (l *MetricsEventListener) handleEvent(event events.Event) {
	l.counter.WithLabelValues(string(event.Type)).Inc()
}
