package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// ReasonNotAboard is reported when an unload names a container the ship does not carry
const ReasonNotAboard = "container not aboard"

// UnloadContainerHandler - Handles unload container commands
type UnloadContainerHandler struct {
	world *world.World
}

// NewUnloadContainerHandler creates a new unload container handler
func NewUnloadContainerHandler(w *world.World) *UnloadContainerHandler {
	return &UnloadContainerHandler{world: w}
}

// Handle executes the unload container command
func (h *UnloadContainerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.UnloadContainerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.world.Ship(cmd.ShipID)
	if err != nil {
		return nil, err
	}
	container, err := h.world.Container(cmd.ContainerID)
	if err != nil {
		return nil, err
	}

	response := &types.ActionResponse{Success: ship.Unload(container)}
	if !response.Success {
		response.Reason = ReasonNotAboard
	}
	response.FuelAfter = ship.Fuel()

	return response, nil
}
