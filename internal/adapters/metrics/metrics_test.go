package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/application/common"
)

func withRegistry(t *testing.T) {
	t.Helper()
	InitRegistry()
	t.Cleanup(func() {
		Registry = nil
		SetGlobalSimulationCollector(nil)
	})
}

func TestSimulationMetricsCollector_RecordsThroughGlobals(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalSimulationCollector(collector)

	// Act
	RecordAction("load", "success")
	RecordAction("load", "success")
	RecordAction("sail", "rejected")
	RecordVoyage("A", "B", 111.19, 111.19)

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.actionsTotal.WithLabelValues("load", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.actionsTotal.WithLabelValues("sail", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.voyagesTotal.WithLabelValues("A", "B")))
	assert.InDelta(t, 111.19, testutil.ToFloat64(collector.distanceSailed), 1e-9)
	assert.InDelta(t, 111.19, testutil.ToFloat64(collector.fuelConsumed), 1e-9)
}

func TestRecordAction_NoCollectorIsNoOp(t *testing.T) {
	SetGlobalSimulationCollector(nil)

	assert.NotPanics(t, func() {
		RecordAction("load", "success")
		RecordVoyage("A", "B", 1, 1)
	})
	assert.False(t, IsEnabled())
}

func TestHandler_ExposesRegistry(t *testing.T) {
	withRegistry(t)
	collector := NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())
	collector.RecordAction("refuel", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "portsim_simulation_actions_total"))
}

type fakeCommand struct{}

type fakeResponse struct{ ok bool }

func (r fakeResponse) Accepted() bool { return r.ok }

func TestPrometheusMiddleware_RecordsCommandOutcome(t *testing.T) {
	withRegistry(t)
	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	mw := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request common.Request) (common.Response, error) {
		return fakeResponse{ok: true}, nil
	}
	rejected := func(ctx context.Context, request common.Request) (common.Response, error) { return fakeResponse{}, nil }
	plain := func(ctx context.Context, request common.Request) (common.Response, error) { return "done", nil }
	fail := func(ctx context.Context, request common.Request) (common.Response, error) {
		return nil, errors.New("boom")
	}

	for _, handler := range []common.HandlerFunc{ok, rejected, plain, fail} {
		_, _ = mw(context.Background(), &fakeCommand{}, handler)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("fakeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("fakeCommand", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("fakeCommand", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.commandsInFlight))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := PrometheusMiddleware(nil)

	resp, err := mw(context.Background(), &fakeCommand{}, func(ctx context.Context, request common.Request) (common.Response, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", resp)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "fakeCommand", commandName(&fakeCommand{}))
	assert.Equal(t, "UnknownCommand", commandName(nil))
}
