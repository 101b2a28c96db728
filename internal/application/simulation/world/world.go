package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/domain/port"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
	"github.com/andrescamacho/portsim-go/pkg/utils"
)

// Options control how a world is built from a document
type Options struct {
	FuelPolicy   navigation.FuelPolicy
	SailStrategy navigation.SailStrategy
}

// World is the in-memory registry of ports, ships and containers a run
// mutates. The registries are fixed after BuildWorld, so lookups are safe
// from several workers; entity state is guarded by the entities themselves
// (ports) or by ship ownership (ships).
type World struct {
	ports      map[string]*port.Port
	ships      map[string]*navigation.Ship
	containers map[string]*cargo.Container

	portList []*port.Port
	shipList []*navigation.Ship

	fuelPolicy   navigation.FuelPolicy
	sailStrategy navigation.SailStrategy
}

// BuildWorld validates a document and constructs every entity it names.
// On any error no world is returned.
func BuildWorld(doc *types.WorldDocument, opts Options) (*World, error) {
	if err := types.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if doc.FuelPolicy != "" {
		policy, err := navigation.ParseFuelPolicy(doc.FuelPolicy)
		if err != nil {
			return nil, err
		}
		opts.FuelPolicy = policy
	}
	if opts.FuelPolicy == "" {
		opts.FuelPolicy = navigation.DefaultFuelPolicy
	}
	if opts.SailStrategy == nil {
		opts.SailStrategy = navigation.DirectSail{}
	}

	w := &World{
		ports:        make(map[string]*port.Port, len(doc.Ports)),
		ships:        make(map[string]*navigation.Ship, len(doc.Ships)),
		containers:   make(map[string]*cargo.Container, len(doc.Containers)),
		fuelPolicy:   opts.FuelPolicy,
		sailStrategy: opts.SailStrategy,
	}

	if err := w.buildPorts(doc.Ports); err != nil {
		return nil, err
	}
	if err := w.buildShips(doc.Ships); err != nil {
		return nil, err
	}
	if err := w.buildContainers(doc.Containers); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *World) buildPorts(specs []types.PortSpec) error {
	for _, spec := range specs {
		if _, exists := w.ports[spec.ID]; exists {
			return shared.NewValidationError("port_id", fmt.Sprintf("duplicate port id: %s", spec.ID))
		}

		location, err := shared.NewCoordinate(spec.Latitude, spec.Longitude)
		if err != nil {
			return fmt.Errorf("port %s: %w", spec.ID, err)
		}

		p, err := port.NewPort(spec.ID, location)
		if err != nil {
			return err
		}
		if len(spec.History) > 0 {
			p.RestoreHistory(spec.History)
		}

		w.ports[spec.ID] = p
		w.portList = append(w.portList, p)
	}

	sort.Slice(w.portList, func(i, j int) bool { return w.portList[i].ID() < w.portList[j].ID() })
	return nil
}

func (w *World) buildShips(specs []types.ShipSpec) error {
	for _, spec := range specs {
		if _, exists := w.ships[spec.ID]; exists {
			return shared.NewValidationError("ship_id", fmt.Sprintf("duplicate ship id: %s", spec.ID))
		}

		home, ok := w.ports[spec.PortID]
		if !ok {
			return shared.NewNotFoundError("port", spec.PortID)
		}

		capacity, err := spec.ResolveCapacity()
		if err != nil {
			return err
		}

		fuel := capacity.MaxFuelCapacity
		if spec.Fuel != nil {
			fuel = *spec.Fuel
		}

		ship, err := navigation.NewShip(spec.ID, home, capacity, fuel, navigation.WithFuelPolicy(w.fuelPolicy))
		if err != nil {
			return fmt.Errorf("ship %s: %w", spec.ID, err)
		}

		w.ships[spec.ID] = ship
		w.shipList = append(w.shipList, ship)
	}

	sort.Slice(w.shipList, func(i, j int) bool { return w.shipList[i].ID() < w.shipList[j].ID() })
	return nil
}

func (w *World) buildContainers(specs []types.ContainerSpec) error {
	for _, spec := range specs {
		id := spec.ID
		if id == "" {
			id = utils.GenerateEntityID("container")
		}
		if _, exists := w.containers[id]; exists {
			return shared.NewValidationError("container_id", fmt.Sprintf("duplicate container id: %s", id))
		}

		category := cargo.Classify(spec.Weight, spec.Contents)
		if strings.TrimSpace(spec.Category) != "" {
			parsed, err := cargo.ParseCategory(spec.Category)
			if err != nil {
				return err
			}
			category = parsed
		}

		c, err := cargo.NewContainer(id, spec.Weight, category)
		if err != nil {
			return fmt.Errorf("container %s: %w", id, err)
		}

		if spec.ShipID != "" {
			ship, ok := w.ships[spec.ShipID]
			if !ok {
				return shared.NewNotFoundError("ship", spec.ShipID)
			}
			if err := ship.Stow(c); err != nil {
				return err
			}
		} else {
			p, ok := w.ports[spec.PortID]
			if !ok {
				return shared.NewNotFoundError("port", spec.PortID)
			}
			p.StoreContainer(c)
		}

		w.containers[id] = c
	}

	return nil
}

// Lookups

func (w *World) Port(id string) (*port.Port, error) {
	p, ok := w.ports[id]
	if !ok {
		return nil, shared.NewNotFoundError("port", id)
	}
	return p, nil
}

func (w *World) Ship(id string) (*navigation.Ship, error) {
	s, ok := w.ships[id]
	if !ok {
		return nil, shared.NewNotFoundError("ship", id)
	}
	return s, nil
}

func (w *World) Container(id string) (*cargo.Container, error) {
	c, ok := w.containers[id]
	if !ok {
		return nil, shared.NewNotFoundError("container", id)
	}
	return c, nil
}

// Ports returns every port sorted by id
func (w *World) Ports() []*port.Port {
	return append([]*port.Port(nil), w.portList...)
}

// Ships returns every ship sorted by id
func (w *World) Ships() []*navigation.Ship {
	return append([]*navigation.Ship(nil), w.shipList...)
}

func (w *World) ContainerCount() int {
	return len(w.containers)
}

func (w *World) FuelPolicy() navigation.FuelPolicy {
	return w.fuelPolicy
}

func (w *World) SailStrategy() navigation.SailStrategy {
	return w.sailStrategy
}

// Snapshot renders the current state without mutating anything
func (w *World) Snapshot() types.WorldState {
	state := types.WorldState{
		FuelPolicy: string(w.fuelPolicy),
		Ports:      make([]types.PortState, 0, len(w.portList)),
		Ships:      make([]types.ShipState, 0, len(w.shipList)),
	}

	for _, p := range w.portList {
		state.Ports = append(state.Ports, types.PortState{
			ID:          p.ID(),
			Latitude:    p.Location().Latitude,
			Longitude:   p.Location().Longitude,
			Containers:  renderContainers(p.Containers()),
			DockedShips: p.DockedShips(),
			History:     p.History(),
		})
	}

	for _, s := range w.shipList {
		state.Ships = append(state.Ships, types.ShipState{
			ID:       s.ID(),
			PortID:   s.CurrentPort().ID(),
			Fuel:     s.Fuel(),
			Capacity: s.Config(),
			Manifest: renderContainers(s.Manifest()),
		})
	}

	return state
}

func renderContainers(containers []*cargo.Container) []types.ContainerState {
	out := make([]types.ContainerState, 0, len(containers))
	for _, c := range containers {
		out = append(out, types.ContainerState{
			ID:          c.ID(),
			Weight:      c.Weight(),
			Category:    c.Category().String(),
			Consumption: c.Consumption(),
		})
	}
	return out
}
