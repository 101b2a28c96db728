package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
)

// LoadContainerHandler - Handles load container commands
type LoadContainerHandler struct {
	world *world.World
}

// NewLoadContainerHandler creates a new load container handler
func NewLoadContainerHandler(w *world.World) *LoadContainerHandler {
	return &LoadContainerHandler{world: w}
}

// Handle executes the load container command
func (h *LoadContainerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.LoadContainerCommand)
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

	reason := ship.TryLoad(container)
	if reason != navigation.LoadAccepted {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Load rejected", map[string]interface{}{
			"ship":      ship.ID(),
			"container": container.ID(),
			"port":      ship.CurrentPort().ID(),
			"reason":    string(reason),
		})
	}

	return &types.ActionResponse{
		Success:   reason == navigation.LoadAccepted,
		Reason:    string(reason),
		FuelAfter: ship.Fuel(),
	}, nil
}
