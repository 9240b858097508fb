// Package manager assembles the state registry, the typed value store, the
// lifecycle adapter and the ambient providers into a ManagerV1.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gxo-labs/routestate/internal/config"
	intEvents "github.com/gxo-labs/routestate/internal/events"
	"github.com/gxo-labs/routestate/internal/lifecycle"
	"github.com/gxo-labs/routestate/internal/logger"
	intMetrics "github.com/gxo-labs/routestate/internal/metrics"
	intState "github.com/gxo-labs/routestate/internal/state"
	intTracing "github.com/gxo-labs/routestate/internal/tracing"
	routestate "github.com/gxo-labs/routestate/pkg/routestate/v1"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/metrics"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
	rstracing "github.com/gxo-labs/routestate/pkg/routestate/v1/tracing"
)

// Manager is the route state manager of one solver run. It is not safe for
// concurrent use.
type Manager struct {
	problem model.Problem
	costs   model.TransportCosts
	runID   string
	log     rslog.Logger

	// Providers
	cfg             *config.Config
	eventBus        events.Bus
	metricsProvider metrics.RegistryProvider
	tracerProvider  rstracing.TracerProvider

	// Components
	store      *intState.Store
	adapter    *lifecycle.Adapter
	collectors *intMetrics.Collectors
	updaters   []listener.StateUpdater

	// Owned resources, released by Close
	ownedBus      *intEvents.ChannelEventBus
	ownedTracer   bool
	stopListener  context.CancelFunc
	listenerDone  chan struct{}
	initialized   bool
	loadsEnabled  bool
	windowEnabled bool
}

var (
	_ routestate.ManagerV1   = (*Manager)(nil)
	_ intState.Observer      = (*Manager)(nil)
	_ state.MismatchObserver = (*Manager)(nil)
)

// NewManager creates a manager for problem. Storage is sized from the
// problem's activity count and vehicle types. A nil log creates one from the
// logging section of the configuration.
func NewManager(problem model.Problem, costs model.TransportCosts, log rslog.Logger, opts ...routestate.ManagerOption) (*Manager, error) {
	if problem == nil {
		return nil, rserrors.NewConfigError("problem cannot be nil", nil)
	}
	if costs == nil {
		return nil, rserrors.NewConfigError("transport costs cannot be nil", nil)
	}

	m := &Manager{
		problem: problem,
		costs:   costs,
		runID:   uuid.NewString(),
		cfg:     config.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, rserrors.NewConfigError(fmt.Sprintf("failed to apply manager option: %v", err), err)
		}
	}

	if log == nil {
		log = logger.NewLogger(m.cfg.Logging.Level, m.cfg.Logging.Format, nil)
	}
	m.log = log.With("component", "RouteStateManager", "run_id", m.runID)

	if m.metricsProvider == nil {
		m.log.Debugf("No metrics provider provided, using default Prometheus provider.")
		m.metricsProvider = intMetrics.NewPrometheusRegistryProvider()
	}
	if m.tracerProvider == nil {
		m.log.Debugf("No tracer provider provided, using default NoOp provider.")
		m.tracerProvider = intTracing.NewNoOpProvider()
		m.ownedTracer = true
	}
	m.collectors = intMetrics.NewCollectors(m.metricsProvider.Registry(), m.cfg.Metrics.Namespace, m.log)
	if m.eventBus == nil {
		m.eventBus = m.defaultEventBus()
	}

	maxType := model.NoIndex
	for _, t := range problem.VehicleTypes() {
		if t != nil {
			maxType = max(maxType, t.Index())
		}
	}
	m.store = intState.NewStore(m.cfg.Storage, problem.ActivityCount(), maxType, m)
	m.adapter = lifecycle.NewAdapter(m.store, m.log,
		lifecycle.WithTracer(m.tracerProvider.GetTracer(intTracing.TracerName)),
		lifecycle.WithRecorder(m.collectors),
		lifecycle.WithEventBus(busRef{m}),
		lifecycle.WithRunID(m.runID),
	)
	m.collectors.RegisteredStates(m.store.Registry().Len())
	m.initialized = true

	stats := m.store.Stats()
	m.log.Debugf("State manager initialized: %d activity rows, %d vehicle types, %d slots",
		stats.ActivityRows, stats.VehicleTypes, stats.Slots)
	return m, nil
}

// defaultEventBus returns the channel bus with a metrics listener when events
// are enabled in the configuration, the NoOp bus otherwise.
func (m *Manager) defaultEventBus() events.Bus {
	if !m.cfg.Events.Enabled {
		return intEvents.NewNoOpEventBus()
	}
	bus := intEvents.NewChannelEventBus(m.cfg.Events.BufferSize, m.log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l := intEvents.NewMetricsEventListener(bus, m.collectors.BusEvents(), m.log)
	go func() {
		defer close(done)
		l.Start(ctx)
	}()
	m.ownedBus, m.stopListener, m.listenerDone = bus, cancel, done
	return bus
}

// busRef lets components built once keep emitting on the current bus after
// SetEventBus.
type busRef struct{ m *Manager }

func (b busRef) Emit(e events.Event) { b.m.eventBus.Emit(e) }

func (m *Manager) emit(typ events.EventType, payload map[string]interface{}) {
	m.eventBus.Emit(events.Event{Type: typ, Timestamp: time.Now(), RunID: m.runID, Payload: payload})
}

// RunID identifies this manager in logs and events.
func (m *Manager) RunID() string { return m.runID }

// Stats returns the current storage footprint.
func (m *Manager) Stats() intState.Stats { return m.store.Stats() }

func (m *Manager) MetricsRegistryProvider() metrics.RegistryProvider { return m.metricsProvider }

func (m *Manager) TracerProvider() rstracing.TracerProvider { return m.tracerProvider }

// Close stops the owned event bus listener and shuts down the owned tracer
// provider. It is safe to call more than once.
func (m *Manager) Close(ctx context.Context) error {
	if m.ownedBus != nil {
		m.eventBus = intEvents.NewNoOpEventBus()
		m.stopListener()
		<-m.listenerDone
		m.ownedBus.Close()
		m.ownedBus = nil
	}
	if m.ownedTracer {
		m.ownedTracer = false
		if err := m.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("close tracer provider: %w", err)
		}
	}
	return nil
}

// --- Setters ---

func (m *Manager) SetConfig(cfg *config.Config) error {
	if m.initialized {
		return rserrors.NewConfigError("config can only be set during construction", nil)
	}
	if cfg == nil {
		return rserrors.NewConfigError("config cannot be nil", nil)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	m.cfg = cfg.Clone()
	return nil
}

func (m *Manager) SetEventBus(bus events.Bus) error {
	if bus == nil {
		return rserrors.NewConfigError("event bus cannot be nil", nil)
	}
	m.eventBus = bus
	return nil
}

func (m *Manager) SetMetricsRegistryProvider(provider metrics.RegistryProvider) error {
	if m.initialized {
		return rserrors.NewConfigError("metrics provider can only be set during construction", nil)
	}
	if provider == nil || provider.Registry() == nil {
		return rserrors.NewConfigError("metrics registry provider cannot be nil", nil)
	}
	m.metricsProvider = provider
	return nil
}

func (m *Manager) SetTracerProvider(provider rstracing.TracerProvider) error {
	if m.initialized {
		return rserrors.NewConfigError("tracer provider can only be set during construction", nil)
	}
	if provider == nil {
		return rserrors.NewConfigError("tracer provider cannot be nil", nil)
	}
	m.tracerProvider = provider
	return nil
}

// --- Observers ---

// StorageResized is called by the store when a matrix was reallocated.
func (m *Manager) StorageResized(matrix string, rows, types, cols int) {
	m.collectors.StorageResized(matrix)
	m.log.Debugf("Resized %s matrix to %dx%dx%d", matrix, rows, types, cols)
	m.emit(events.StorageResized, map[string]interface{}{"matrix": matrix, "rows": rows, "types": types, "slots": cols})
}

// StatesCleared is called by the store after a full wipe.
func (m *Manager) StatesCleared() {
	m.collectors.StatesCleared()
	m.emit(events.StatesCleared, nil)
}

// WriteDropped is called by the store when a route write had no storage
// location because the route was empty.
func (m *Manager) WriteDropped(op string, id state.ID) {
	m.collectors.WriteDropped()
	m.log.Debugf("%s: route is empty, dropping value of state '%s'", op, id.Name())
}

// ObserveTypeMismatch is called by the typed accessors when the stored value
// of a state has another type than requested.
func (m *Manager) ObserveTypeMismatch(err *rserrors.TypeMismatchError) {
	m.collectors.TypeMismatch()
	m.log.Log(slog.LevelWarn, "state type mismatch", logger.ErrorAttrs(err)...)
}

// checked counts and logs rejected writes before handing err back.
func (m *Manager) checked(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, rserrors.ErrReservedState):
		m.collectors.ReservedViolation()
		m.log.Log(slog.LevelWarn, "write to reserved state rejected", logger.ErrorAttrs(err)...)
	case errors.Is(err, rserrors.ErrLegacyState):
		m.log.Log(slog.LevelWarn, "unknown state id rejected", logger.ErrorAttrs(err)...)
	}
	return err
}
