package types

import "github.com/andrescamacho/portsim-go/internal/domain/navigation"

// WorldState is a side-effect-free rendering of a world for external
// serialization. Every list is sorted by id so two equivalent worlds render
// identically.
type WorldState struct {
	FuelPolicy string      `json:"fuel_policy" yaml:"fuel_policy"`
	Ports      []PortState `json:"ports" yaml:"ports"`
	Ships      []ShipState `json:"ships" yaml:"ships"`
}

type PortState struct {
	ID          string           `json:"id" yaml:"id"`
	Latitude    float64          `json:"latitude" yaml:"latitude"`
	Longitude   float64          `json:"longitude" yaml:"longitude"`
	Containers  []ContainerState `json:"containers" yaml:"containers"`
	DockedShips []string         `json:"docked_ships" yaml:"docked_ships"`
	History     []string         `json:"history" yaml:"history"`
}

type ContainerState struct {
	ID          string  `json:"id" yaml:"id"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Category    string  `json:"category" yaml:"category"`
	Consumption float64 `json:"consumption" yaml:"consumption"`
}

type ShipState struct {
	ID       string                    `json:"id" yaml:"id"`
	PortID   string                    `json:"port_id" yaml:"port_id"`
	Fuel     float64                   `json:"fuel" yaml:"fuel"`
	Capacity navigation.CapacityConfig `json:"capacity" yaml:"capacity"`
	Manifest []ContainerState          `json:"manifest" yaml:"manifest"`
}

// Document converts the state back into a world document with no actions.
// Building a world from it reproduces an equivalent state.
func (s WorldState) Document() WorldDocument {
	doc := WorldDocument{FuelPolicy: s.FuelPolicy}

	for _, p := range s.Ports {
		doc.Ports = append(doc.Ports, PortSpec{
			ID:        p.ID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			History:   append([]string(nil), p.History...),
		})
		for _, c := range p.Containers {
			doc.Containers = append(doc.Containers, ContainerSpec{
				ID:       c.ID,
				Weight:   c.Weight,
				Category: c.Category,
				PortID:   p.ID,
			})
		}
	}

	for _, sh := range s.Ships {
		capacity := sh.Capacity
		fuel := sh.Fuel
		doc.Ships = append(doc.Ships, ShipSpec{
			ID:       sh.ID,
			PortID:   sh.PortID,
			Capacity: &capacity,
			Fuel:     &fuel,
		})
		for _, c := range sh.Manifest {
			doc.Containers = append(doc.Containers, ContainerSpec{
				ID:       c.ID,
				Weight:   c.Weight,
				Category: c.Category,
				ShipID:   sh.ID,
			})
		}
	}

	return doc
}

// Ship finds a ship by id in the state
func (s WorldState) Ship(id string) (ShipState, bool) {
	for _, sh := range s.Ships {
		if sh.ID == id {
			return sh, true
		}
	}
	return ShipState{}, false
}

// Port finds a port by id in the state
func (s WorldState) Port(id string) (PortState, bool) {
	for _, p := range s.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return PortState{}, false
}
