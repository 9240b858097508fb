package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gxo-labs/routestate/internal/lifecycle"
	"github.com/gxo-labs/routestate/internal/logger"
	"github.com/gxo-labs/routestate/internal/testkit"
	"github.com/gxo-labs/routestate/internal/tracing"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type journal struct{ entries []string }

func (j *journal) add(s string) { j.entries = append(j.entries, s) }

type clearer struct{ j *journal }

func (c clearer) Clear() { c.j.add("clear") }

// probe implements every listener capability plus forward visiting.
type probe struct {
	j    *journal
	fail string
}

func (p *probe) note(s string) error {
	p.j.add(s)
	if s == p.fail {
		return errors.New("probe failed at " + s)
	}
	return nil
}

func (p *probe) InformIterationStarts(int, model.Problem, []model.Solution) error {
	return p.note("iteration")
}

func (p *probe) InformInsertionStarts([]model.Route, []model.Job) error {
	return p.note("insertion_starts")
}

func (p *probe) InformJobInserted(model.Job, model.Route, float64, float64) error {
	return p.note("job_inserted")
}

func (p *probe) InformInsertionEnds([]model.Route) error {
	return p.note("insertion_ends")
}

func (p *probe) InformRuinStarts([]model.Route) error {
	return p.note("ruin_starts")
}

func (p *probe) InformRemoved(model.Job, model.Route) error {
	return p.note("removed")
}

func (p *probe) InformRuinEnds([]model.Route, []model.Job) error {
	return p.note("ruin_ends")
}

func (p *probe) Begin(model.Route) error {
	return p.note("begin")
}

func (p *probe) Visit(model.Activity) error {
	return p.note("visit")
}

func (p *probe) Finish() error {
	return p.note("finish")
}

type routeCounter struct {
	j *journal
}

func (r routeCounter) VisitRoute(model.Route) error {
	r.j.add("route")
	return nil
}

type recorder struct {
	triggers   []string
	dispatches map[string]int
}

func (r *recorder) LifecycleEvent(trigger string) { r.triggers = append(r.triggers, trigger) }

func (r *recorder) Dispatch(trigger string, routes int, _ time.Duration) {
	if r.dispatches == nil {
		r.dispatches = map[string]int{}
	}
	r.dispatches[trigger] += routes
}

type captureBus struct{ got []events.Event }

func (b *captureBus) Emit(e events.Event) { b.got = append(b.got, e) }

type fixture struct {
	j       *journal
	adapter *lifecycle.Adapter
	rec     *recorder
	bus     *captureBus
	spans   *tracetest.SpanRecorder
	route   *testkit.Route
	pkg     *testkit.Package
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	j := &journal{}
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	rec := &recorder{}
	bus := &captureBus{}
	a := lifecycle.NewAdapter(clearer{j}, logger.NewDiscardLogger(),
		lifecycle.WithTracer(tp.Tracer(tracing.TracerName)),
		lifecycle.WithRecorder(rec),
		lifecycle.WithEventBus(bus),
		lifecycle.WithRunID("run-7"),
	)
	truck := testkit.NewTruck(0, "t", 0, "hub", 10)
	pkg := testkit.NewDelivery(0, "p0", 1, "a", 2)
	return &fixture{
		j: j, adapter: a, rec: rec, bus: bus, spans: sr,
		route: testkit.NewRouteOf(truck, pkg, testkit.NewPickup(1, "p1", 2, "b", 1)),
		pkg:   pkg,
	}
}

func TestAdapter_Register(t *testing.T) {
	f := newFixture(t)
	roles, err := f.adapter.Register(&probe{j: f.j})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"InsertionStartsListener", "JobInsertedListener", "InsertionEndsListener",
		"ActivityVisitor", "RuinListener", "IterationStartsListener",
	}, roles)

	_, err = f.adapter.Register(struct{}{})
	var verr *rserrors.ValidationError
	assert.True(t, errors.As(err, &verr))
	_, err = f.adapter.Register(nil)
	assert.True(t, errors.As(err, &verr))
}

func TestAdapter_FullCycleOrdering(t *testing.T) {
	f := newFixture(t)
	_, err := f.adapter.Register(&probe{j: f.j})
	require.NoError(t, err)
	_, err = f.adapter.Register(routeCounter{j: f.j})
	require.NoError(t, err)
	routes := testkit.Routes(f.route)

	require.NoError(t, f.adapter.InformIterationStarts(1, nil, nil))
	require.NoError(t, f.adapter.InformRuinStarts(routes))
	require.NoError(t, f.adapter.InformRemoved(f.pkg, f.route))
	require.NoError(t, f.adapter.InformRuinEnds(routes, nil))
	require.NoError(t, f.adapter.InformInsertionStarts(routes, nil))
	require.NoError(t, f.adapter.InformJobInserted(f.pkg, f.route, 1.5, 2))
	require.NoError(t, f.adapter.InformInsertionEnds(routes))

	assert.Equal(t, []string{
		"clear", "iteration",
		"ruin_starts", "removed", "ruin_ends",
		"insertion_starts", "route", "begin", "visit", "visit", "finish",
		"job_inserted", "route", "begin", "visit", "visit", "finish",
		"insertion_ends",
	}, f.j.entries)

	assert.Equal(t, []string{
		lifecycle.TriggerIterationStarts, lifecycle.TriggerRuinStarts, lifecycle.TriggerRemoved,
		lifecycle.TriggerRuinEnds, lifecycle.TriggerInsertionStarts, lifecycle.TriggerJobInserted,
		lifecycle.TriggerInsertionEnds,
	}, f.rec.triggers)
	assert.Equal(t, 1, f.rec.dispatches[lifecycle.TriggerInsertionStarts])
	assert.Equal(t, 1, f.rec.dispatches[lifecycle.TriggerJobInserted])

	require.Len(t, f.bus.got, 7)
	assert.Equal(t, events.IterationStarted, f.bus.got[0].Type)
	assert.Equal(t, "run-7", f.bus.got[0].RunID)
	assert.Equal(t, "p0", f.bus.got[5].Payload["job_id"])
}

func TestAdapter_EmptyRoutesSkipActivityVisitors(t *testing.T) {
	f := newFixture(t)
	_, err := f.adapter.Register(&probe{j: f.j})
	require.NoError(t, err)
	empty := testkit.NewRoute(testkit.NewTruck(1, "u", 0, "hub"))

	require.NoError(t, f.adapter.InformInsertionStarts(testkit.Routes(empty), nil))
	assert.Equal(t, []string{"insertion_starts"}, f.j.entries)
}

func TestAdapter_DispatchErrors(t *testing.T) {
	tests := []struct {
		failAt  string
		trigger string
		run     func(f *fixture) error
	}{
		{"iteration", lifecycle.TriggerIterationStarts, func(f *fixture) error {
			return f.adapter.InformIterationStarts(0, nil, nil)
		}},
		{"insertion_starts", lifecycle.TriggerInsertionStarts, func(f *fixture) error {
			return f.adapter.InformInsertionStarts(testkit.Routes(f.route), nil)
		}},
		{"visit", lifecycle.TriggerJobInserted, func(f *fixture) error {
			return f.adapter.InformJobInserted(f.pkg, f.route, 0, 0)
		}},
		{"insertion_ends", lifecycle.TriggerInsertionEnds, func(f *fixture) error {
			return f.adapter.InformInsertionEnds(nil)
		}},
		{"removed", lifecycle.TriggerRemoved, func(f *fixture) error {
			return f.adapter.InformRemoved(f.pkg, f.route)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.adapter.Register(&probe{j: f.j, fail: tt.failAt})
			require.NoError(t, err)

			err = tt.run(f)
			var derr *rserrors.DispatchError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.trigger, derr.Trigger)
			assert.Equal(t, tt.failAt, f.j.entries[len(f.j.entries)-1], "dispatch stops at the failing updater")
		})
	}
}

func TestAdapter_Spans(t *testing.T) {
	f := newFixture(t)
	_, err := f.adapter.Register(&probe{j: f.j, fail: "finish"})
	require.NoError(t, err)

	require.NoError(t, f.adapter.InformInsertionStarts(nil, nil))
	require.Error(t, f.adapter.InformJobInserted(f.pkg, f.route, 3, 4))

	ended := f.spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, tracing.SpanName(lifecycle.TriggerInsertionStarts), ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, tracing.SpanName(lifecycle.TriggerJobInserted), ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	require.NotEmpty(t, ended[1].Events(), "the error is recorded on the span")

	var runID string
	for _, kv := range ended[1].Attributes() {
		if kv.Key == "routestate.run_id" {
			runID = kv.Value.AsString()
		}
	}
	assert.Equal(t, "run-7", runID)
}

func TestAdapter_JobInsertedRejectsNil(t *testing.T) {
	f := newFixture(t)
	var verr *rserrors.ValidationError
	assert.True(t, errors.As(f.adapter.InformJobInserted(nil, f.route, 0, 0), &verr))
	assert.True(t, errors.As(f.adapter.InformJobInserted(f.pkg, nil, 0, 0), &verr))
}

func TestNewAdapter_NilLoggerPanics(t *testing.T) {
	assert.Panics(t, func() { lifecycle.NewAdapter(clearer{&journal{}}, nil) })
}
