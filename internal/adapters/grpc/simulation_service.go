package grpc

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/portsim-go/internal/adapters/persistence"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// ControllerFactory builds a controller around a freshly loaded world
type ControllerFactory func(w *world.World) (*simulation.Controller, error)

// ServiceOptions configures a SimulationService
type ServiceOptions struct {
	WorldOptions  world.Options
	NewController ControllerFactory
	Snapshots     persistence.SnapshotRepository
	Logger        common.Logger
	Workers       int
	Parallel      bool
	AutoSnapshot  bool
}

// SimulationService bridges gRPC requests to a simulation controller
type SimulationService struct {
	mu         sync.RWMutex
	controller *simulation.Controller
	opts       ServiceOptions
}

// NewSimulationService creates a service. controller may be nil until a
// world is loaded through LoadWorld.
func NewSimulationService(controller *simulation.Controller, opts ServiceOptions) *SimulationService {
	if opts.NewController == nil {
		opts.NewController = func(w *world.World) (*simulation.Controller, error) {
			return simulation.NewController(w)
		}
	}
	if opts.Logger == nil {
		opts.Logger = common.LoggerFromContext(context.Background())
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &SimulationService{controller: controller, opts: opts}
}

func (s *SimulationService) current() (*simulation.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.controller == nil {
		return nil, status.Error(codes.FailedPrecondition, "no world loaded")
	}
	return s.controller, nil
}

// Apply runs a batch of actions
func (s *SimulationService) Apply(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ApplyRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	controller, err := s.current()
	if err != nil {
		return nil, err
	}

	var report simulation.Report
	if req.Parallel || s.opts.Parallel {
		report = controller.ApplyParallel(ctx, req.Actions, s.opts.Workers)
	} else {
		report = controller.ApplyAll(ctx, req.Actions)
	}

	if s.opts.AutoSnapshot && s.opts.Snapshots != nil {
		if _, err := s.saveSnapshot(ctx, controller, "auto"); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Auto snapshot failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return toStruct(toApplyReply(report))
}

// Snapshot renders the current world state
func (s *SimulationService) Snapshot(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	controller, err := s.current()
	if err != nil {
		return nil, err
	}
	state, err := controller.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(state)
}

// LoadWorld replaces the served world with the given document
func (s *SimulationService) LoadWorld(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var doc types.WorldDocument
	if err := fromStruct(in, &doc); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.load(ctx, &doc); err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, nil)
}

// SaveSnapshot persists the current world state
func (s *SimulationService) SaveSnapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SnapshotRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if s.opts.Snapshots == nil {
		return nil, status.Error(codes.FailedPrecondition, "snapshot storage is not configured")
	}

	controller, err := s.current()
	if err != nil {
		return nil, err
	}
	record, err := s.saveSnapshot(ctx, controller, req.Label)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(SnapshotReply{ID: record.ID, RunID: record.RunID})
}

// RestoreSnapshot loads a stored snapshot as the served world
func (s *SimulationService) RestoreSnapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SnapshotRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if s.opts.Snapshots == nil {
		return nil, status.Error(codes.FailedPrecondition, "snapshot storage is not configured")
	}

	var (
		record *persistence.SnapshotRecord
		err    error
	)
	if req.ID == "" {
		record, err = s.opts.Snapshots.Latest(ctx)
	} else {
		record, err = s.opts.Snapshots.Get(ctx, req.ID)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	doc := record.State.Document()
	if err := s.load(ctx, &doc); err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, nil)
}

func (s *SimulationService) load(ctx context.Context, doc *types.WorldDocument) error {
	w, err := world.BuildWorld(doc, s.opts.WorldOptions)
	if err != nil {
		return toStatus(err)
	}
	controller, err := s.opts.NewController(w)
	if err != nil {
		return toStatus(err)
	}

	s.mu.Lock()
	s.controller = controller
	s.mu.Unlock()

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "World loaded", map[string]interface{}{
		"run_id":     controller.RunID(),
		"ports":      len(w.Ports()),
		"ships":      len(w.Ships()),
		"containers": w.ContainerCount(),
	})
	return nil
}

func (s *SimulationService) saveSnapshot(ctx context.Context, controller *simulation.Controller, label string) (*persistence.SnapshotRecord, error) {
	state, err := controller.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.opts.Snapshots.Save(ctx, controller.RunID(), label, state)
}

// LoggingInterceptor puts the service logger in the request context and
// logs each call with its duration
func (s *SimulationService) LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx = common.WithLogger(ctx, s.opts.Logger)
		start := time.Now()

		resp, err := handler(ctx, req)

		level := common.LevelDebug
		metadata := map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			level = common.LevelError
			metadata["error"] = err.Error()
		}
		s.opts.Logger.Log(level, "RPC handled", metadata)
		return resp, err
	}
}
