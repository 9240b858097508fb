// Package routestate is the entry point of the route state manager: a cache
// of derived per-route and per-activity quantities (loads, practical time
// windows, costs so far) for ruin-and-recreate vehicle routing solvers,
// refreshed incrementally as the solver mutates its routes.
//
// A manager is created per solver run with New. Reads go through the typed
// accessors of package state, e.g.
//
//	load, ok, err := state.ActivityState[model.Capacity](m, act, state.Load)
package routestate

import (
	"context"
	"fmt"

	"github.com/gxo-labs/routestate/internal/config"
	"github.com/gxo-labs/routestate/internal/manager"
	intTracing "github.com/gxo-labs/routestate/internal/tracing"
	v1 "github.com/gxo-labs/routestate/pkg/routestate/v1"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/tracing"
)

// New creates a state manager for problem. costs is used by the time window
// and cost updaters. A nil log creates a logger from the configuration.
func New(problem model.Problem, costs model.TransportCosts, log rslog.Logger, opts ...v1.ManagerOption) (v1.ManagerV1, error) {
	m, err := manager.NewManager(problem, costs, log, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewVariableCosts returns an updater maintaining the Costs and Duration
// states of m. Register it with m.AddStateUpdater.
func NewVariableCosts(m v1.ManagerV1) (listener.StateUpdater, error) {
	mm, ok := m.(*manager.Manager)
	if !ok {
		return nil, fmt.Errorf("variable costs: unsupported manager type %T", m)
	}
	return mm.NewVariableCosts(), nil
}

// LoadConfig reads a YAML or TOML configuration file, chosen by extension,
// after loading the optional .env files into the environment. ROUTESTATE_*
// variables override file values.
func LoadConfig(path string, dotenv ...string) (*config.Config, error) {
	if err := config.LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}
	return config.LoadFromFile(path)
}

// NewTracerProviderFromEnv builds a tracer provider from the OTEL_*
// environment, or a NoOp provider when tracing is not configured.
func NewTracerProviderFromEnv(ctx context.Context, log rslog.Logger) tracing.TracerProvider {
	return intTracing.NewProviderFromEnv(ctx, log)
}
