package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// RefuelShipHandler - Handles refuel ship commands
type RefuelShipHandler struct {
	world *world.World
}

// NewRefuelShipHandler creates a new refuel ship handler
func NewRefuelShipHandler(w *world.World) *RefuelShipHandler {
	return &RefuelShipHandler{world: w}
}

// Handle executes the refuel ship command. A negative amount is an
// InvalidArgument error and leaves the tank untouched.
func (h *RefuelShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.RefuelShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.world.Ship(cmd.ShipID)
	if err != nil {
		return nil, err
	}

	fuelBefore := ship.Fuel()
	if err := ship.Refuel(cmd.Amount); err != nil {
		return nil, fmt.Errorf("refuel ship %s: %w", ship.ID(), err)
	}

	return &types.ActionResponse{
		Success:   true,
		FuelAfter: ship.Fuel(),
		Refueled:  ship.Fuel() - fuelBefore,
	}, nil
}
