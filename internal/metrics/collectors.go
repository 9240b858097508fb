package metrics

import (
	"errors"
	"time"

	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds the state manager's Prometheus instruments. Several
// managers may share one registry: instruments already registered by another
// manager are reused, so their values aggregate across runs.
type Collectors struct {
	clears           prometheus.Counter
	resizes          *prometheus.CounterVec
	mismatches       prometheus.Counter
	reservedErrors   prometheus.Counter
	droppedWrites    prometheus.Counter
	lifecycleEvents  *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	registeredStates prometheus.Gauge
	busEvents        *prometheus.CounterVec
}

// NewCollectors creates the instruments under namespace and registers them on
// reg. A nil reg yields unregistered but usable instruments.
func NewCollectors(reg prometheus.Registerer, namespace string, log rslog.Logger) *Collectors {
	c := &Collectors{
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "states_cleared_total",
			Help: "Total number of times every stored state value was wiped.",
		}),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "storage_resizes_total",
			Help: "Total number of value matrix reallocations by matrix.",
		}, []string{"matrix"}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "type_mismatches_total",
			Help: "Total number of typed reads whose stored value had another type.",
		}),
		reservedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reserved_state_violations_total",
			Help: "Total number of rejected public writes to built-in state kinds.",
		}),
		droppedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "empty_route_writes_dropped_total",
			Help: "Total number of route state writes dropped because the route was empty.",
		}),
		lifecycleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lifecycle_events_total",
			Help: "Total number of solver lifecycle callbacks by trigger.",
		}, []string{"trigger"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "visitor_dispatches_total",
			Help: "Total number of routes passed through the state visitors by trigger.",
		}, []string{"trigger"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "dispatch_duration_seconds",
			Help:    "Duration of state update dispatches in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"trigger"}),
		registeredStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "registered_states",
			Help: "Number of registered state kinds, built-ins included.",
		}),
		busEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bus_events_total",
			Help: "Total number of events received from the event bus by type.",
		}, []string{"type"}),
	}
	if reg == nil {
		return c
	}
	c.clears = register(reg, log, c.clears)
	c.resizes = register(reg, log, c.resizes)
	c.mismatches = register(reg, log, c.mismatches)
	c.reservedErrors = register(reg, log, c.reservedErrors)
	c.droppedWrites = register(reg, log, c.droppedWrites)
	c.lifecycleEvents = register(reg, log, c.lifecycleEvents)
	c.dispatches = register(reg, log, c.dispatches)
	c.dispatchDuration = register(reg, log, c.dispatchDuration)
	c.registeredStates = register(reg, log, c.registeredStates)
	c.busEvents = register(reg, log, c.busEvents)
	return c
}

// register adds col to reg, returning the already registered collector when
// an identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, log rslog.Logger, col C) C {
	err := reg.Register(col)
	if err == nil {
		return col
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	if log != nil {
		log.Warnf("Failed to register metric collector: %v", err)
	}
	return col
}

// StatesCleared counts a full wipe.
func (c *Collectors) StatesCleared() { c.clears.Inc() }

// StorageResized counts a reallocation of matrix.
func (c *Collectors) StorageResized(matrix string) { c.resizes.WithLabelValues(matrix).Inc() }

// TypeMismatch counts a typed read of the wrong type.
func (c *Collectors) TypeMismatch() { c.mismatches.Inc() }

// ReservedViolation counts a rejected write to a built-in kind.
func (c *Collectors) ReservedViolation() { c.reservedErrors.Inc() }

// WriteDropped counts a route write dropped on an empty route.
func (c *Collectors) WriteDropped() { c.droppedWrites.Inc() }

// RegisteredStates sets the number of registered state kinds.
func (c *Collectors) RegisteredStates(n int) { c.registeredStates.Set(float64(n)) }

// LifecycleEvent counts a lifecycle callback.
func (c *Collectors) LifecycleEvent(trigger string) { c.lifecycleEvents.WithLabelValues(trigger).Inc() }

// Dispatch records a visitor dispatch over routes routes.
func (c *Collectors) Dispatch(trigger string, routes int, elapsed time.Duration) {
	c.dispatches.WithLabelValues(trigger).Add(float64(routes))
	c.dispatchDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
}

// BusEvents returns the counter bus listeners increment, labelled by type.
func (c *Collectors) BusEvents() *prometheus.CounterVec { return c.busEvents }
