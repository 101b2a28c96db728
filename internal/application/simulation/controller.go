package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/portsim-go/internal/adapters/metrics"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/commands"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/queries"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
	"github.com/andrescamacho/portsim-go/pkg/utils"
)

// Outcome labels used in logs, metrics and reports
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ActionResult is the result of applying one action. Success false with a nil
// Err is an ordinary rejection (capacity, fuel, not aboard). A non-nil Err is
// a lookup or argument failure; the world is unchanged either way.
// Index is the position in the batch; Sequence counts every action the
// controller has applied, so single Apply calls stay distinguishable.
type ActionResult struct {
	Index    int
	Sequence int
	Action   types.Action
	Success  bool
	Reason   string
	Err      error
	Response *types.ActionResponse
}

// Outcome classifies the result as success, rejected or error
func (r ActionResult) Outcome() string {
	switch {
	case r.Err != nil:
		return OutcomeError
	case r.Success:
		return OutcomeSuccess
	default:
		return OutcomeRejected
	}
}

// Report summarises a batch of applied actions
type Report struct {
	RunID     string
	Results   []ActionResult
	Succeeded int
	Rejected  int
	Failed    int
	Duration  time.Duration
}

func (r *Report) add(result ActionResult) {
	switch result.Outcome() {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeRejected:
		r.Rejected++
	default:
		r.Failed++
	}
}

// Option configures a Controller
type Option func(*Controller)

// WithMediator replaces the default mediator, e.g. to install middleware
// before handlers are registered
func WithMediator(m common.Mediator) Option {
	return func(c *Controller) {
		c.mediator = m
	}
}

// WithActionsPerSecond paces action application. Zero or less means unpaced.
func WithActionsPerSecond(perSecond float64) Option {
	return func(c *Controller) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRunID sets the id stamped on reports; one is generated otherwise
func WithRunID(runID string) Option {
	return func(c *Controller) {
		c.runID = runID
	}
}

// WithLogger adds a logger that receives every entry alongside the
// logger carried in the context
func WithLogger(logger common.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller applies actions to a world and renders its state. Calls are
// serialised; a controller can be shared between RPC callers.
type Controller struct {
	mu       sync.Mutex
	world    *world.World
	mediator common.Mediator
	limiter  *rate.Limiter
	logger   common.Logger
	runID    string
	applied  int
}

// NewController registers the simulation handlers for w and returns a controller
func NewController(w *world.World, opts ...Option) (*Controller, error) {
	if w == nil {
		return nil, fmt.Errorf("world cannot be nil")
	}

	c := &Controller{world: w}
	for _, opt := range opts {
		opt(c)
	}
	if c.mediator == nil {
		c.mediator = common.NewMediator()
	}
	if c.runID == "" {
		c.runID = utils.GenerateRunID()
	}

	if err := commands.RegisterHandlers(c.mediator, w); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	if err := queries.RegisterHandlers(c.mediator, w); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}

	return c, nil
}

func (c *Controller) RunID() string {
	return c.runID
}

// World exposes the underlying world for read-only inspection
func (c *Controller) World() *world.World {
	return c.world
}

// Apply applies a single action. Its Index is the controller-wide sequence
// number.
func (c *Controller) Apply(ctx context.Context, action types.Action) ActionResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.applied
	c.applied++
	return c.apply(ctx, seq, seq, action)
}

// ApplyAll applies actions strictly in order. A failed or rejected action
// does not stop the batch and nothing is rolled back.
func (c *Controller) ApplyAll(ctx context.Context, actions []types.Action) Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	report := Report{RunID: c.runID, Results: make([]ActionResult, 0, len(actions))}
	base := c.applied
	c.applied += len(actions)

	for i, action := range actions {
		result := c.apply(ctx, i, base+i, action)
		report.Results = append(report.Results, result)
		report.add(result)
	}

	report.Duration = time.Since(start)
	c.logReport(ctx, report, "sequential")
	return report
}

// ApplyParallel runs independent groups of ships on separate workers.
// Ships that can meet at a port during the batch share a group, and each
// group applies its actions in their original order, so the outcome equals
// ApplyAll on the same input. Results are returned in the original order.
func (c *Controller) ApplyParallel(ctx context.Context, actions []types.Action, workers int) Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	results := make([]ActionResult, len(actions))
	base := c.applied
	c.applied += len(actions)

	groups := partitionByPort(c.world, actions)

	// no point starting more workers than there are groups
	g := new(errgroup.Group)
	g.SetLimit(utils.MaxInt(1, utils.MinInt(workers, len(groups))))
	for _, indexes := range groups {
		g.Go(func() error {
			for _, i := range indexes {
				results[i] = c.apply(ctx, i, base+i, actions[i])
			}
			return nil
		})
	}
	// workers never return errors; results carry them
	_ = g.Wait()

	report := Report{RunID: c.runID, Results: results}
	for _, result := range results {
		report.add(result)
	}
	report.Duration = time.Since(start)
	c.logReport(ctx, report, "parallel")
	return report
}

// Snapshot renders the current world state
func (c *Controller) Snapshot(ctx context.Context) (types.WorldState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.mediator.Send(ctx, &types.GetSnapshotQuery{})
	if err != nil {
		return types.WorldState{}, err
	}
	snapshot, ok := resp.(*types.GetSnapshotResponse)
	if !ok {
		return types.WorldState{}, fmt.Errorf("unexpected snapshot response %T", resp)
	}
	return snapshot.State, nil
}

// tracerName scopes the spans the controller opens per action
const tracerName = "github.com/andrescamacho/portsim-go/internal/application/simulation"

func (c *Controller) apply(ctx context.Context, index, seq int, action types.Action) ActionResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulation."+string(action.Type),
		trace.WithAttributes(
			attribute.String("run_id", c.runID),
			attribute.Int("index", index),
			attribute.Int("sequence", seq),
			attribute.String("ship_id", action.ShipID),
		),
	)
	defer span.End()

	result := c.dispatch(ctx, index, action)
	result.Sequence = seq

	span.SetAttributes(attribute.String("outcome", result.Outcome()))
	if result.Reason != "" {
		span.SetAttributes(attribute.String("reason", result.Reason))
	}
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}

	c.record(ctx, result)
	return result
}

func (c *Controller) dispatch(ctx context.Context, index int, action types.Action) ActionResult {
	result := ActionResult{Index: index, Action: action}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}
	}

	request, err := toRequest(action)
	if err != nil {
		result.Err = err
		return result
	}

	resp, err := c.mediator.Send(ctx, request)
	if err != nil {
		result.Err = err
		return result
	}

	response, ok := resp.(*types.ActionResponse)
	if !ok {
		result.Err = fmt.Errorf("unexpected response %T for %s", resp, action.Type)
		return result
	}

	result.Response = response
	result.Success = response.Success
	result.Reason = response.Reason
	return result
}

func toRequest(action types.Action) (common.Request, error) {
	switch action.Type {
	case types.ActionLoad:
		return &types.LoadContainerCommand{ShipID: action.ShipID, ContainerID: action.ContainerID}, nil
	case types.ActionUnload:
		return &types.UnloadContainerCommand{ShipID: action.ShipID, ContainerID: action.ContainerID}, nil
	case types.ActionRefuel:
		return &types.RefuelShipCommand{ShipID: action.ShipID, Amount: action.Amount}, nil
	case types.ActionSail:
		return &types.SailShipCommand{ShipID: action.ShipID, DestinationPortID: action.PortID}, nil
	default:
		return nil, shared.NewValidationError("type", fmt.Sprintf("unknown action type: %q", action.Type))
	}
}

func (c *Controller) record(ctx context.Context, result ActionResult) {
	outcome := result.Outcome()
	metrics.RecordAction(string(result.Action.Type), outcome)

	level := common.LevelInfo
	metadata := map[string]interface{}{
		"run_id":   c.runID,
		"index":    result.Index,
		"sequence": result.Sequence,
		"action":   result.Action.String(),
		"outcome":  outcome,
	}
	switch outcome {
	case OutcomeRejected:
		level = common.LevelWarn
		metadata["reason"] = result.Reason
	case OutcomeError:
		level = common.LevelError
		metadata["error"] = result.Err.Error()
	}
	if result.Response != nil {
		metadata["fuel_after"] = utils.Round(result.Response.FuelAfter, 2)
	}

	c.loggerFor(ctx).Log(level, "Action applied", metadata)
}

func (c *Controller) logReport(ctx context.Context, report Report, mode string) {
	c.loggerFor(ctx).Log(common.LevelInfo, "Run finished", map[string]interface{}{
		"run_id":      report.RunID,
		"mode":        mode,
		"actions":     len(report.Results),
		"succeeded":   report.Succeeded,
		"rejected":    report.Rejected,
		"failed":      report.Failed,
		"duration_ms": report.Duration.Milliseconds(),
	})
}

func (c *Controller) loggerFor(ctx context.Context) common.Logger {
	logger := common.LoggerFromContext(ctx)
	if c.logger == nil {
		return logger
	}
	return common.MultiLogger{logger, c.logger}
}
