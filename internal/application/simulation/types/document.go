package types

import (
	"fmt"

	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
)

// WorldDocument is the static world description a run starts from: ports,
// containers, ships and the ordered action list. Written snapshots use the
// same shape with no actions. FuelPolicy, when set, overrides the policy
// the world is built with.
type WorldDocument struct {
	FuelPolicy string          `json:"fuel_policy,omitempty" yaml:"fuel_policy,omitempty"`
	Ports      []PortSpec      `json:"ports" yaml:"ports" validate:"required,min=1,dive"`
	Containers []ContainerSpec `json:"containers,omitempty" yaml:"containers,omitempty" validate:"dive"`
	Ships      []ShipSpec      `json:"ships,omitempty" yaml:"ships,omitempty" validate:"dive"`
	Actions    []Action        `json:"actions,omitempty" yaml:"actions,omitempty" validate:"dive"`
}

// PortSpec describes one port
type PortSpec struct {
	ID        string   `json:"id" yaml:"id" validate:"required"`
	Latitude  float64  `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	History   []string `json:"history,omitempty" yaml:"history,omitempty"`
}

// ContainerSpec describes one container and where it starts: stored at a
// port or aboard a ship, never both. An empty category is classified from
// weight and contents.
type ContainerSpec struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Weight   float64 `json:"weight" yaml:"weight" validate:"gt=0"`
	Category string  `json:"category,omitempty" yaml:"category,omitempty"`
	Contents string  `json:"contents,omitempty" yaml:"contents,omitempty"`
	PortID   string  `json:"port_id,omitempty" yaml:"port_id,omitempty" validate:"required_without=ShipID,excluded_with=ShipID"`
	ShipID   string  `json:"ship_id,omitempty" yaml:"ship_id,omitempty"`
}

// ShipSpec describes one ship. Capacity comes from a named preset or an
// explicit config; an explicit config wins. A missing fuel level means a
// full tank.
type ShipSpec struct {
	ID       string                     `json:"id" yaml:"id" validate:"required"`
	PortID   string                     `json:"port_id" yaml:"port_id" validate:"required"`
	Preset   string                     `json:"preset,omitempty" yaml:"preset,omitempty"`
	Capacity *navigation.CapacityConfig `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Fuel     *float64                   `json:"fuel,omitempty" yaml:"fuel,omitempty" validate:"omitempty,gte=0"`
}

// ResolveCapacity returns the explicit capacity or the named preset
func (s ShipSpec) ResolveCapacity() (navigation.CapacityConfig, error) {
	if s.Capacity != nil {
		return *s.Capacity, nil
	}
	cfg, err := navigation.PresetConfig(s.Preset)
	if err != nil {
		return navigation.CapacityConfig{}, fmt.Errorf("ship %s: %w", s.ID, err)
	}
	return cfg, nil
}

// ActionType is one of the four world-mutating actions
type ActionType string

const (
	ActionLoad   ActionType = "load"
	ActionUnload ActionType = "unload"
	ActionRefuel ActionType = "refuel"
	ActionSail   ActionType = "sail"
)

// Action is one step of a run. Which fields matter depends on Type:
// load/unload use ContainerID, refuel uses Amount, sail uses PortID.
type Action struct {
	Type        ActionType `json:"type" yaml:"type" validate:"required,oneof=load unload refuel sail"`
	ShipID      string     `json:"ship_id" yaml:"ship_id" validate:"required"`
	ContainerID string     `json:"container_id,omitempty" yaml:"container_id,omitempty" validate:"required_if=Type load,required_if=Type unload"`
	PortID      string     `json:"port_id,omitempty" yaml:"port_id,omitempty" validate:"required_if=Type sail"`
	Amount      float64    `json:"amount,omitempty" yaml:"amount,omitempty"`
}

func LoadAction(shipID, containerID string) Action {
	return Action{Type: ActionLoad, ShipID: shipID, ContainerID: containerID}
}

func UnloadAction(shipID, containerID string) Action {
	return Action{Type: ActionUnload, ShipID: shipID, ContainerID: containerID}
}

func RefuelAction(shipID string, amount float64) Action {
	return Action{Type: ActionRefuel, ShipID: shipID, Amount: amount}
}

func SailAction(shipID, destinationPortID string) Action {
	return Action{Type: ActionSail, ShipID: shipID, PortID: destinationPortID}
}

func (a Action) String() string {
	switch a.Type {
	case ActionLoad, ActionUnload:
		return fmt.Sprintf("%s(%s, %s)", a.Type, a.ShipID, a.ContainerID)
	case ActionRefuel:
		return fmt.Sprintf("%s(%s, %.2f)", a.Type, a.ShipID, a.Amount)
	case ActionSail:
		return fmt.Sprintf("%s(%s, %s)", a.Type, a.ShipID, a.PortID)
	default:
		return fmt.Sprintf("%s(%s)", a.Type, a.ShipID)
	}
}
