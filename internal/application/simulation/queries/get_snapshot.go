package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// GetSnapshotHandler handles the GetSnapshot query
type GetSnapshotHandler struct {
	world *world.World
}

// NewGetSnapshotHandler creates a new GetSnapshotHandler
func NewGetSnapshotHandler(w *world.World) *GetSnapshotHandler {
	return &GetSnapshotHandler{world: w}
}

// Handle executes the GetSnapshot query
func (h *GetSnapshotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*types.GetSnapshotQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetSnapshotQuery")
	}

	return &types.GetSnapshotResponse{
		State: h.world.Snapshot(),
	}, nil
}

// RegisterHandlers wires the simulation query handlers for w into m
func RegisterHandlers(m common.Mediator, w *world.World) error {
	return common.RegisterHandler[*types.GetSnapshotQuery](m, NewGetSnapshotHandler(w))
}
