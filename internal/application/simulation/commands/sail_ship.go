package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/adapters/metrics"
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// SailShipHandler - Handles sail ship commands using the world's sail strategy
type SailShipHandler struct {
	world *world.World
}

// NewSailShipHandler creates a new sail ship handler
func NewSailShipHandler(w *world.World) *SailShipHandler {
	return &SailShipHandler{world: w}
}

// Handle executes the sail ship command
func (h *SailShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.SailShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.world.Ship(cmd.ShipID)
	if err != nil {
		return nil, err
	}
	destination, err := h.world.Port(cmd.DestinationPortID)
	if err != nil {
		return nil, err
	}

	origin := ship.CurrentPort()
	distance := origin.DistanceTo(destination)

	outcome := h.world.SailStrategy().Sail(ship, destination, h.world.Ports())

	if outcome.Success {
		metrics.RecordVoyage(origin.ID(), destination.ID(), distance, outcome.FuelUsed)
	}
	if len(outcome.Hops) > 0 {
		common.LoggerFromContext(ctx).Log(common.LevelInfo, "Ship refuelled en route", map[string]interface{}{
			"ship":        ship.ID(),
			"destination": destination.ID(),
			"hops":        outcome.Hops,
			"refueled":    outcome.Refueled,
			"success":     outcome.Success,
		})
	}

	return &types.ActionResponse{
		Success:   outcome.Success,
		Reason:    string(outcome.Reason),
		FuelAfter: ship.Fuel(),
		FuelUsed:  outcome.FuelUsed,
		Refueled:  outcome.Refueled,
		Distance:  distance,
		Hops:      outcome.Hops,
	}, nil
}
