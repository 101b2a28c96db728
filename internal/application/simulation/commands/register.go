package commands

import (
	"github.com/andrescamacho/portsim-go/internal/application/common"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
)

// RegisterHandlers wires every simulation command handler for w into m
func RegisterHandlers(m common.Mediator, w *world.World) error {
	if err := common.RegisterHandler[*types.LoadContainerCommand](m, NewLoadContainerHandler(w)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*types.UnloadContainerCommand](m, NewUnloadContainerHandler(w)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*types.RefuelShipCommand](m, NewRefuelShipHandler(w)); err != nil {
		return err
	}
	return common.RegisterHandler[*types.SailShipCommand](m, NewSailShipHandler(w))
}
