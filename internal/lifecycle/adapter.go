// Package lifecycle connects the state cache to the solver's event stream.
// Iteration start wipes the cache, insertion start and job inserted refresh
// it through the traversal pass, and every event is forwarded to the
// listeners registered for it.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gxo-labs/routestate/internal/tracing"
	"github.com/gxo-labs/routestate/internal/traversal"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/listener"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Trigger names, used in errors, metrics and span names.
const (
	TriggerIterationStarts = "iteration_starts"
	TriggerInsertionStarts = "insertion_starts"
	TriggerJobInserted     = "job_inserted"
	TriggerInsertionEnds   = "insertion_ends"
	TriggerRuinStarts      = "ruin_starts"
	TriggerRemoved         = "removed"
	TriggerRuinEnds        = "ruin_ends"
)

// Clearer wipes stored values.
type Clearer interface {
	Clear()
}

// Recorder receives lifecycle measurements.
type Recorder interface {
	LifecycleEvent(trigger string)
	Dispatch(trigger string, routes int, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) LifecycleEvent(string)               {}
func (noopRecorder) Dispatch(string, int, time.Duration) {}

// Adapter implements the solver lifecycle callbacks for one state cache.
// It is not safe for concurrent use.
type Adapter struct {
	store Clearer
	pass  traversal.Pass

	iterationListeners []listener.IterationStartsListener
	startsListeners    []listener.InsertionStartsListener
	insertedListeners  []listener.JobInsertedListener
	endsListeners      []listener.InsertionEndsListener
	ruinListeners      []listener.RuinListener

	log      rslog.Logger
	tracer   trace.Tracer
	recorder Recorder
	bus      events.Bus
	runID    string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithRecorder sets the measurement sink.
func WithRecorder(r Recorder) Option {
	return func(a *Adapter) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithEventBus sets the bus lifecycle events are emitted on.
func WithEventBus(bus events.Bus) Option {
	return func(a *Adapter) {
		if bus != nil {
			a.bus = bus
		}
	}
}

// WithRunID tags events and spans with runID.
func WithRunID(runID string) Option {
	return func(a *Adapter) { a.runID = runID }
}

// NewAdapter creates an adapter invalidating store. A nil logger panics.
func NewAdapter(store Clearer, log rslog.Logger, opts ...Option) *Adapter {
	if log == nil {
		panic("lifecycle.Adapter requires a non-nil logger")
	}
	a := &Adapter{
		store:    store,
		log:      log.With("component", "LifecycleAdapter"),
		tracer:   noop.NewTracerProvider().Tracer(""),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register wires u into every dispatch path it has a capability for and
// returns the capability names. An updater without any capability is
// rejected.
func (a *Adapter) Register(u listener.StateUpdater) ([]string, error) {
	if u == nil {
		return nil, rserrors.NewValidationError("state updater cannot be nil", nil)
	}
	roles := listener.Roles(u)
	_, isIter := u.(listener.IterationStartsListener)
	if len(roles) == 0 && !isIter {
		return nil, rserrors.NewValidationError(fmt.Sprintf("%T implements no state updater capability", u), nil)
	}
	if l, ok := u.(listener.IterationStartsListener); ok {
		a.iterationListeners = append(a.iterationListeners, l)
		roles = append(roles, "IterationStartsListener")
	}
	if l, ok := u.(listener.InsertionStartsListener); ok {
		a.startsListeners = append(a.startsListeners, l)
	}
	if l, ok := u.(listener.JobInsertedListener); ok {
		a.insertedListeners = append(a.insertedListeners, l)
	}
	if l, ok := u.(listener.InsertionEndsListener); ok {
		a.endsListeners = append(a.endsListeners, l)
	}
	if l, ok := u.(listener.RuinListener); ok {
		a.ruinListeners = append(a.ruinListeners, l)
	}
	a.pass.Register(u)
	return roles, nil
}

// InformIterationStarts clears every stored value, then tells iteration
// listeners.
func (a *Adapter) InformIterationStarts(i int, problem model.Problem, solutions []model.Solution) error {
	a.observe(TriggerIterationStarts, events.IterationStarted, map[string]interface{}{"iteration": i, "solutions": len(solutions)})
	a.store.Clear()
	for _, l := range a.iterationListeners {
		if err := l.InformIterationStarts(i, problem, solutions); err != nil {
			return a.fail(context.Background(), rserrors.NewDispatchError(TriggerIterationStarts, "IterationStartsListener", err))
		}
	}
	return nil
}

// InformInsertionStarts tells insertion listeners, then recomputes the
// states of every route.
func (a *Adapter) InformInsertionStarts(routes []model.Route, unassigned []model.Job) error {
	a.observe(TriggerInsertionStarts, events.InsertionStarted, map[string]interface{}{"routes": len(routes), "unassigned": len(unassigned)})
	ctx, span := a.tracer.Start(context.Background(), tracing.SpanName(TriggerInsertionStarts),
		trace.WithAttributes(tracing.RunAttributes(a.runID)...),
		trace.WithAttributes(attribute.Int("routes", len(routes)), attribute.Int("unassigned", len(unassigned))))
	defer span.End()
	start := time.Now()

	for _, l := range a.startsListeners {
		if err := l.InformInsertionStarts(routes, unassigned); err != nil {
			return a.failSpan(ctx, span, rserrors.NewDispatchError(TriggerInsertionStarts, "InsertionStartsListener", err))
		}
	}
	for _, r := range routes {
		if err := a.pass.Run(TriggerInsertionStarts, r); err != nil {
			return a.failSpan(ctx, span, err)
		}
	}
	a.recorder.Dispatch(TriggerInsertionStarts, len(routes), time.Since(start))
	return nil
}

// InformJobInserted tells insertion listeners, then recomputes the states of
// route.
func (a *Adapter) InformJobInserted(job model.Job, route model.Route, additionalCosts, additionalTime float64) error {
	if job == nil || route == nil {
		return rserrors.NewValidationError("job inserted: job and route cannot be nil", nil)
	}
	payload := map[string]interface{}{"job_id": job.ID(), "additional_costs": additionalCosts, "additional_time": additionalTime}
	a.observe(TriggerJobInserted, events.JobInserted, payload)
	ctx, span := a.tracer.Start(context.Background(), tracing.SpanName(TriggerJobInserted),
		trace.WithAttributes(tracing.RunAttributes(a.runID)...),
		trace.WithAttributes(attribute.Float64("additional_costs", additionalCosts), attribute.Float64("additional_time", additionalTime)))
	defer span.End()
	start := time.Now()

	for _, l := range a.insertedListeners {
		if err := l.InformJobInserted(job, route, additionalCosts, additionalTime); err != nil {
			return a.failSpan(ctx, span, rserrors.NewDispatchError(TriggerJobInserted, "JobInsertedListener", err))
		}
	}
	if err := a.pass.Run(TriggerJobInserted, route); err != nil {
		return a.failSpan(ctx, span, err)
	}
	a.recorder.Dispatch(TriggerJobInserted, 1, time.Since(start))
	return nil
}

// InformInsertionEnds tells insertion listeners.
func (a *Adapter) InformInsertionEnds(routes []model.Route) error {
	a.observe(TriggerInsertionEnds, events.InsertionEnded, map[string]interface{}{"routes": len(routes)})
	for _, l := range a.endsListeners {
		if err := l.InformInsertionEnds(routes); err != nil {
			return a.fail(context.Background(), rserrors.NewDispatchError(TriggerInsertionEnds, "InsertionEndsListener", err))
		}
	}
	return nil
}

// InformRuinStarts tells ruin listeners. Nothing is recomputed on ruin: the
// next insertion pass refreshes the affected routes.
func (a *Adapter) InformRuinStarts(routes []model.Route) error {
	a.observe(TriggerRuinStarts, events.RuinStarted, map[string]interface{}{"routes": len(routes)})
	for _, l := range a.ruinListeners {
		if err := l.InformRuinStarts(routes); err != nil {
			return a.fail(context.Background(), rserrors.NewDispatchError(TriggerRuinStarts, "RuinListener", err))
		}
	}
	return nil
}

// InformRemoved tells ruin listeners that job left from.
func (a *Adapter) InformRemoved(job model.Job, from model.Route) error {
	var payload map[string]interface{}
	if job != nil {
		payload = map[string]interface{}{"job_id": job.ID()}
	}
	a.observe(TriggerRemoved, events.JobRemoved, payload)
	for _, l := range a.ruinListeners {
		if err := l.InformRemoved(job, from); err != nil {
			return a.fail(context.Background(), rserrors.NewDispatchError(TriggerRemoved, "RuinListener", err))
		}
	}
	return nil
}

// InformRuinEnds tells ruin listeners.
func (a *Adapter) InformRuinEnds(routes []model.Route, unassigned []model.Job) error {
	a.observe(TriggerRuinEnds, events.RuinEnded, map[string]interface{}{"routes": len(routes), "unassigned": len(unassigned)})
	for _, l := range a.ruinListeners {
		if err := l.InformRuinEnds(routes, unassigned); err != nil {
			return a.fail(context.Background(), rserrors.NewDispatchError(TriggerRuinEnds, "RuinListener", err))
		}
	}
	return nil
}

func (a *Adapter) observe(trigger string, typ events.EventType, payload map[string]interface{}) {
	a.recorder.LifecycleEvent(trigger)
	if a.bus != nil {
		a.bus.Emit(events.Event{Type: typ, Timestamp: time.Now(), RunID: a.runID, Payload: payload})
	}
}

func (a *Adapter) fail(ctx context.Context, err error) error {
	a.log.LogCtx(ctx, slog.LevelError, "state update dispatch failed", "error", err)
	return err
}

func (a *Adapter) failSpan(ctx context.Context, span trace.Span, err error) error {
	tracing.RecordError(span, err)
	return a.fail(ctx, err)
}
