package v1

import (
	"context"

	"github.com/gxo-labs/routestate/internal/config"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/metrics"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/tracing"
)

// ManagerV1 defines the public interface of the route state manager.
//
// A manager is owned by exactly one solver run and is not safe for concurrent
// use. Independent runs construct independent managers.
type ManagerV1 interface {
	state.Reader
	state.Writer

	// The manager follows the solver's lifecycle. Iteration start wipes every
	// stored value, insertion start and job inserted recompute states through
	// the registered visitors, everything else is forwarded to listeners.
	listener.IterationStartsListener
	listener.InsertionStartsListener
	listener.JobInsertedListener
	listener.InsertionEndsListener
	listener.RuinListener

	// CreateStateID registers a state kind by name and returns its id.
	// Registering the same name again returns the same id.
	CreateStateID(name string) state.ID

	// AddDefaultActivityState sets the value returned for unset activity cells.
	AddDefaultActivityState(id state.ID, value any) error
	// AddDefaultRouteState sets the value returned for unset route cells.
	AddDefaultRouteState(id state.ID, value any) error
	// AddDefaultProblemState sets the value returned for an unset problem state.
	AddDefaultProblemState(id state.ID, value any) error

	// ClearStates resets every stored value. Defaults and updaters survive.
	ClearStates()

	// AddStateUpdater wires u into every dispatch path matching the
	// capabilities it implements.
	AddStateUpdater(u listener.StateUpdater) error
	// StateUpdaters returns the registered updaters in registration order.
	StateUpdaters() []listener.StateUpdater

	// UpdateLoadStates enables the canonical load tracking updaters. Calls
	// after the first are no-ops.
	UpdateLoadStates() error
	// UpdateTimeWindowStates enables the canonical practical time window
	// updaters. Calls after the first are no-ops. Besides the latest start
	// times it registers ActivityTimes, so EarliestOperationStartTime of
	// routed activities reads the computed arrival based start instead of
	// the theoretical earliest default.
	UpdateTimeWindowStates() error

	// RunID identifies this manager in logs and events.
	RunID() string

	// MetricsRegistryProvider returns the underlying metrics provider.
	MetricsRegistryProvider() metrics.RegistryProvider
	// TracerProvider returns the underlying tracing provider.
	TracerProvider() tracing.TracerProvider

	// Close stops the event bus and tracer provider the manager created
	// itself. Injected providers are left to their owners.
	Close(ctx context.Context) error

	// Setter methods for configuring the manager programmatically. Except for
	// SetEventBus they are only accepted during construction.
	SetConfig(cfg *config.Config) error
	SetEventBus(bus events.Bus) error
	SetMetricsRegistryProvider(provider metrics.RegistryProvider) error
	SetTracerProvider(provider tracing.TracerProvider) error
}

// ManagerOption is a function type used to configure the manager at creation.
type ManagerOption func(ManagerV1) error

// WithConfig is a manager option to provide storage sizing and ambient
// settings. It must be applied at construction; storage is sized from it.
func WithConfig(cfg *config.Config) ManagerOption {
	return func(m ManagerV1) error {
		if cfg == nil {
			return rserrors.NewConfigError("config cannot be nil", nil)
		}
		return m.SetConfig(cfg)
	}
}

// WithEventBus is a manager option to provide a custom event bus.
func WithEventBus(bus events.Bus) ManagerOption {
	return func(m ManagerV1) error {
		if bus == nil {
			return rserrors.NewConfigError("event bus cannot be nil", nil)
		}
		return m.SetEventBus(bus)
	}
}

// WithMetricsRegistryProvider is a manager option to provide a custom metrics provider.
func WithMetricsRegistryProvider(provider metrics.RegistryProvider) ManagerOption {
	return func(m ManagerV1) error {
		if provider == nil {
			return rserrors.NewConfigError("metrics registry provider cannot be nil", nil)
		}
		return m.SetMetricsRegistryProvider(provider)
	}
}

// WithTracerProvider is a manager option to provide a custom tracing provider.
func WithTracerProvider(provider tracing.TracerProvider) ManagerOption {
	return func(m ManagerV1) error {
		if provider == nil {
			return rserrors.NewConfigError("tracer provider cannot be nil", nil)
		}
		return m.SetTracerProvider(provider)
	}
}
