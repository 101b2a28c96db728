package simulation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

func testCapacity() *navigation.CapacityConfig {
	return &navigation.CapacityConfig{
		TotalWeightCapacity:       5000,
		MaxAllContainers:          10,
		MaxBasicContainers:        10,
		MaxHeavyContainers:        10,
		MaxRefrigeratedContainers: 10,
		MaxLiquidContainers:       10,
		FuelConsumptionPerKm:      1.0,
		MaxFuelCapacity:           1000,
	}
}

func fuel(v float64) *float64 {
	return &v
}

func testDocument() *types.WorldDocument {
	return &types.WorldDocument{
		Ports: []types.PortSpec{
			{ID: "A", Latitude: 0, Longitude: 0},
			{ID: "B", Latitude: 0, Longitude: 1},
			{ID: "C", Latitude: 0, Longitude: 2},
		},
		Containers: []types.ContainerSpec{
			{ID: "c1", Weight: 3000, Category: "basic", PortID: "A"},
			{ID: "c2", Weight: 2500, Category: "basic", PortID: "A"},
			{ID: "c3", Weight: 1000, Category: "refrigerated", PortID: "B"},
			{ID: "c4", Weight: 800, Category: "liquid", PortID: "B"},
		},
		Ships: []types.ShipSpec{
			{ID: "s1", PortID: "A", Capacity: testCapacity(), Fuel: fuel(100)},
			{ID: "s2", PortID: "B", Capacity: testCapacity(), Fuel: fuel(1000)},
		},
	}
}

func newController(t *testing.T, doc *types.WorldDocument) *simulation.Controller {
	t.Helper()
	w, err := world.BuildWorld(doc, world.Options{})
	require.NoError(t, err)
	c, err := simulation.NewController(w, simulation.WithRunID("test-run"))
	require.NoError(t, err)
	return c
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) Log(level, message string, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, level+" "+message)
}

func TestController_ApplyAllScenario(t *testing.T) {
	// Arrange
	controller := newController(t, testDocument())
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	actions := []types.Action{
		types.LoadAction("s1", "c1"),
		types.LoadAction("s1", "c2"),
		types.SailAction("s1", "B"),
		types.RefuelAction("s1", 50),
		types.SailAction("s1", "B"),
		types.UnloadAction("s1", "c1"),
		types.LoadAction("ghost", "c1"),
		types.SailAction("s1", "Z"),
		types.RefuelAction("s1", -5),
	}

	// Act
	report := controller.ApplyAll(ctx, actions)

	// Assert
	require.Len(t, report.Results, len(actions))
	assert.Equal(t, "test-run", report.RunID)
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, 3, report.Failed)

	for i, r := range report.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, actions[i], r.Action)
	}

	assert.True(t, report.Results[0].Success)
	assert.Equal(t, string(navigation.LoadRejectedWeight), report.Results[1].Reason)
	assert.Equal(t, string(navigation.SailRejectedInsufficient), report.Results[2].Reason)
	assert.True(t, report.Results[4].Success)
	assert.InDelta(t, 111.19, report.Results[4].Response.Distance, 0.01)
	assert.ErrorIs(t, report.Results[6].Err, shared.ErrNotFound)
	assert.ErrorIs(t, report.Results[7].Err, shared.ErrNotFound)
	assert.ErrorIs(t, report.Results[8].Err, shared.ErrInvalidArgument)

	state, err := controller.Snapshot(ctx)
	require.NoError(t, err)

	s1, ok := state.Ship("s1")
	require.True(t, ok)
	assert.Equal(t, "B", s1.PortID)
	assert.InDelta(t, 38.81, s1.Fuel, 0.01)
	assert.Empty(t, s1.Manifest)

	a, _ := state.Port("A")
	b, _ := state.Port("B")
	assert.Equal(t, []string{"s1"}, a.History)
	assert.Empty(t, a.DockedShips)
	assert.Equal(t, []string{"s1", "s2"}, b.DockedShips)
	require.Len(t, a.Containers, 1)
	assert.Equal(t, "c2", a.Containers[0].ID)
	assert.Len(t, b.Containers, 3)

	assert.Contains(t, logger.entries, "WARNING Action applied")
	assert.Contains(t, logger.entries, "ERROR Action applied")
	assert.Contains(t, logger.entries, "INFO Run finished")
}

func TestController_ApplySingleAction(t *testing.T) {
	controller := newController(t, testDocument())

	result := controller.Apply(context.Background(), types.LoadAction("s2", "c3"))

	assert.True(t, result.Success)
	assert.NoError(t, result.Err)
	assert.Equal(t, simulation.OutcomeSuccess, result.Outcome())
}

func TestController_UnknownActionType(t *testing.T) {
	controller := newController(t, testDocument())

	result := controller.Apply(context.Background(), types.Action{Type: "teleport", ShipID: "s1"})

	assert.ErrorIs(t, result.Err, shared.ErrInvalidArgument)
	assert.Equal(t, simulation.OutcomeError, result.Outcome())
}

func TestController_SnapshotRoundTrip(t *testing.T) {
	// Arrange: mutate a world so the snapshot carries history and manifests
	controller := newController(t, testDocument())
	report := controller.ApplyAll(context.Background(), []types.Action{
		types.LoadAction("s1", "c1"),
		types.RefuelAction("s1", 200),
		types.SailAction("s1", "B"),
		types.LoadAction("s1", "c3"),
	})
	require.Equal(t, 4, report.Succeeded)

	before, err := controller.Snapshot(context.Background())
	require.NoError(t, err)

	// Act
	doc := before.Document()
	reloaded := newController(t, &doc)
	after, err := reloaded.Snapshot(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Empty(t, doc.Actions)
	assert.Equal(t, before, after)
}

func TestController_SnapshotIsPure(t *testing.T) {
	controller := newController(t, testDocument())

	first, err := controller.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := controller.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestController_ParallelMatchesSequential(t *testing.T) {
	actions := []types.Action{
		types.LoadAction("s1", "c1"),
		types.LoadAction("s2", "c3"),
		types.RefuelAction("s1", 500),
		types.LoadAction("s2", "c4"),
		types.SailAction("s1", "C"),
		types.SailAction("s2", "C"),
		types.UnloadAction("s1", "c1"),
		types.UnloadAction("s2", "c3"),
		types.LoadAction("s1", "c2"),
	}

	sequential := newController(t, testDocument())
	parallel := newController(t, testDocument())

	seqReport := sequential.ApplyAll(context.Background(), actions)
	parReport := parallel.ApplyParallel(context.Background(), actions, 4)

	require.Len(t, parReport.Results, len(actions))
	for i := range actions {
		assert.Equal(t, i, parReport.Results[i].Index)
		assert.Equal(t, seqReport.Results[i].Success, parReport.Results[i].Success, "action %d", i)
		assert.Equal(t, seqReport.Results[i].Reason, parReport.Results[i].Reason, "action %d", i)
	}

	seqState, err := sequential.Snapshot(context.Background())
	require.NoError(t, err)
	parState, err := parallel.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seqState, parState)
}

func TestController_ParallelKeepsOrderForShipsSharingAPort(t *testing.T) {
	doc := testDocument()
	doc.Ships = append(doc.Ships, types.ShipSpec{ID: "s3", PortID: "A", Capacity: testCapacity(), Fuel: fuel(1000)})

	// s1 is busy long enough for s3 to win c1 if the two ran concurrently
	var actions []types.Action
	for i := 0; i < 500; i++ {
		actions = append(actions, types.RefuelAction("s1", 0))
	}
	actions = append(actions, types.LoadAction("s1", "c1"))
	actions = append(actions, types.LoadAction("s3", "c1"))
	actions = append(actions, types.LoadAction("s2", "c3"))

	sequential := newController(t, doc)
	seqReport := sequential.ApplyAll(context.Background(), actions)
	seqState, err := sequential.Snapshot(context.Background())
	require.NoError(t, err)

	last := len(actions) - 1
	require.True(t, seqReport.Results[last-2].Success)
	require.False(t, seqReport.Results[last-1].Success)

	for run := 0; run < 10; run++ {
		parallel := newController(t, doc)
		parReport := parallel.ApplyParallel(context.Background(), actions, 4)

		for i := range actions {
			require.Equal(t, seqReport.Results[i].Success, parReport.Results[i].Success, "run %d action %d", run, i)
			require.Equal(t, seqReport.Results[i].Reason, parReport.Results[i].Reason, "run %d action %d", run, i)
		}
		parState, err := parallel.Snapshot(context.Background())
		require.NoError(t, err)
		require.Equal(t, seqState, parState, "run %d", run)
	}
}

func TestController_SequenceCountsEveryAppliedAction(t *testing.T) {
	controller := newController(t, testDocument())

	first := controller.Apply(context.Background(), types.RefuelAction("s1", 1))
	second := controller.Apply(context.Background(), types.RefuelAction("s2", 1))
	report := controller.ApplyAll(context.Background(), []types.Action{
		types.RefuelAction("s1", 1),
		types.RefuelAction("s2", 1),
	})
	parallel := controller.ApplyParallel(context.Background(), []types.Action{
		types.RefuelAction("s1", 1),
	}, 2)

	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 1, second.Sequence)
	assert.Equal(t, 1, report.Results[1].Index)
	assert.Equal(t, 2, report.Results[0].Sequence)
	assert.Equal(t, 3, report.Results[1].Sequence)
	assert.Equal(t, 0, parallel.Results[0].Index)
	assert.Equal(t, 4, parallel.Results[0].Sequence)
}

func TestController_PacedRunHonoursCancellation(t *testing.T) {
	w, err := world.BuildWorld(testDocument(), world.Options{})
	require.NoError(t, err)
	controller, err := simulation.NewController(w, simulation.WithActionsPerSecond(0.001))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := controller.ApplyAll(ctx, []types.Action{types.RefuelAction("s1", 1)})

	require.Len(t, report.Results, 1)
	assert.Error(t, report.Results[0].Err)
	assert.Equal(t, 1, report.Failed)
}

func TestController_RefuelingSailStrategy(t *testing.T) {
	doc := testDocument()
	small := testCapacity()
	small.MaxFuelCapacity = 150
	doc.Ships = []types.ShipSpec{{ID: "s1", PortID: "A", Capacity: small, Fuel: fuel(120)}}

	w, err := world.BuildWorld(doc, world.Options{SailStrategy: navigation.RefuelingSail{MaxHops: 2}})
	require.NoError(t, err)
	controller, err := simulation.NewController(w)
	require.NoError(t, err)

	result := controller.Apply(context.Background(), types.SailAction("s1", "C"))

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"B"}, result.Response.Hops)
}

func TestController_WithLoggerReceivesEntriesAlongsideContextLogger(t *testing.T) {
	w, err := world.BuildWorld(testDocument(), world.Options{})
	require.NoError(t, err)
	extra := &recordingLogger{}
	controller, err := simulation.NewController(w, simulation.WithLogger(extra))
	require.NoError(t, err)

	fromCtx := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), fromCtx)

	controller.ApplyAll(ctx, []types.Action{types.SailAction("s1", "C")})

	assert.Equal(t, []string{"WARNING Action applied", "INFO Run finished"}, extra.entries)
	assert.Equal(t, extra.entries, fromCtx.entries)
}

func TestController_OpensSpanPerAction(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	controller := newController(t, testDocument())
	controller.ApplyAll(context.Background(), []types.Action{
		types.LoadAction("s1", "c1"),
		types.SailAction("s1", "C"),
		types.LoadAction("ghost", "c1"),
	})

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "simulation.load", spans[0].Name())
	assert.Equal(t, "simulation.sail", spans[1].Name())

	attrs := func(i int) map[string]string {
		out := map[string]string{}
		for _, kv := range spans[i].Attributes() {
			out[string(kv.Key)] = kv.Value.Emit()
		}
		return out
	}
	assert.Equal(t, "success", attrs(0)["outcome"])
	assert.Equal(t, "rejected", attrs(1)["outcome"])
	assert.Equal(t, "insufficient fuel", attrs(1)["reason"])
	assert.Equal(t, "test-run", attrs(2)["run_id"])
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
