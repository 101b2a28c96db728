package navigation

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/port"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// NavStatus represents ship navigation status
type NavStatus string

const (
	NavStatusDocked    NavStatus = "DOCKED"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

// LoadRejection names the first precondition a load failed on.
// LoadAccepted means the container was loaded.
type LoadRejection string

const (
	LoadAccepted                LoadRejection = ""
	LoadRejectedAlreadyAboard   LoadRejection = "container already aboard"
	LoadRejectedNotAtPort       LoadRejection = "container not at current port"
	LoadRejectedContainerCount  LoadRejection = "container count limit reached"
	LoadRejectedWeight          LoadRejection = "weight capacity exceeded"
	LoadRejectedHeavyCap        LoadRejection = "heavy container limit reached"
	LoadRejectedBasicCap        LoadRejection = "basic container limit reached"
	LoadRejectedRefrigeratedCap LoadRejection = "refrigerated container limit reached"
	LoadRejectedLiquidCap       LoadRejection = "liquid container limit reached"
)

// SailRejection names why a sail did not happen. SailAccepted means it did.
type SailRejection string

const (
	SailAccepted             SailRejection = ""
	SailRejectedInsufficient SailRejection = "insufficient fuel"
	SailRejectedNoRoute      SailRejection = "no reachable port to refuel at"
)

// ShipOption customises a ship at construction time
type ShipOption func(*Ship)

// WithFuelPolicy sets the policy used to charge sailing fuel
func WithFuelPolicy(policy FuelPolicy) ShipOption {
	return func(s *Ship) {
		s.fuelService = NewShipFuelService(policy)
	}
}

// Ship entity - a mobile agent that carries containers between ports
//
// Invariants:
// - id is non-empty
// - Σ manifest weight <= TotalWeightCapacity
// - len(manifest) <= MaxAllContainers
// - per-category counts <= their caps (refrigerated and liquid also count as heavy)
// - 0 <= fuel <= MaxFuelCapacity
// - docked at exactly one port; the port lists the ship as docked
//
// Navigation state machine:
// - DOCKED(port) -> SailTo() -> IN_TRANSIT -> DOCKED(destination)
// IN_TRANSIT only exists inside SailTo and is never observable.
//
// A ship is not safe for concurrent use. Parallel runs give each ship to a
// single worker.
type Ship struct {
	id          string
	currentPort *port.Port
	fuel        *shared.Fuel
	config      CapacityConfig
	manifest    map[string]*cargo.Container
	counts      map[cargo.Category]int
	totalWeight float64
	navStatus   NavStatus
	fuelService *ShipFuelService
}

// NewShip creates a ship docked at currentPort and registers it there
func NewShip(
	id string,
	currentPort *port.Port,
	config CapacityConfig,
	fuel float64,
	opts ...ShipOption,
) (*Ship, error) {
	if id == "" {
		return nil, shared.NewInvalidShipDataError("ship_id cannot be empty")
	}
	if currentPort == nil {
		return nil, shared.NewInvalidShipDataError("current port cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(fuel) || fuel < 0 {
		return nil, shared.NewInvalidShipDataError(fmt.Sprintf("fuel must be non-negative, got %v", fuel))
	}
	if fuel > config.MaxFuelCapacity {
		return nil, shared.NewInvalidShipDataError(fmt.Sprintf("fuel %.2f exceeds max fuel capacity %.2f", fuel, config.MaxFuelCapacity))
	}

	tank, err := shared.NewFuel(fuel, config.MaxFuelCapacity)
	if err != nil {
		return nil, err
	}

	s := &Ship{
		id:          id,
		currentPort: currentPort,
		fuel:        tank,
		config:      config,
		manifest:    make(map[string]*cargo.Container),
		counts:      make(map[cargo.Category]int),
		navStatus:   NavStatusDocked,
		fuelService: NewShipFuelService(DefaultFuelPolicy),
	}
	for _, opt := range opts {
		opt(s)
	}

	currentPort.IncomingShip(id)
	return s, nil
}

// Getters

func (s *Ship) ID() string {
	return s.id
}

func (s *Ship) CurrentPort() *port.Port {
	return s.currentPort
}

func (s *Ship) Fuel() float64 {
	return s.fuel.Current
}

func (s *Ship) FuelState() *shared.Fuel {
	return s.fuel
}

func (s *Ship) Config() CapacityConfig {
	return s.config
}

func (s *Ship) NavStatus() NavStatus {
	return s.navStatus
}

func (s *Ship) FuelPolicy() FuelPolicy {
	return s.fuelService.Policy()
}

func (s *Ship) IsDocked() bool {
	return s.navStatus == NavStatusDocked
}

func (s *Ship) IsAt(p *port.Port) bool {
	return s.currentPort != nil && p != nil && s.currentPort.ID() == p.ID()
}

// Manifest returns the containers aboard sorted by id
func (s *Ship) Manifest() []*cargo.Container {
	out := make([]*cargo.Container, 0, len(s.manifest))
	for _, c := range s.manifest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *Ship) HasContainer(containerID string) bool {
	_, ok := s.manifest[containerID]
	return ok
}

func (s *Ship) ContainerCount() int {
	return len(s.manifest)
}

func (s *Ship) TotalWeight() float64 {
	return s.totalWeight
}

// CountOf returns how many containers of exactly this category are aboard
func (s *Ship) CountOf(category cargo.Category) int {
	return s.counts[category]
}

// HeavyCount returns heavy, refrigerated and liquid containers combined
func (s *Ship) HeavyCount() int {
	return s.counts[cargo.CategoryHeavy] + s.counts[cargo.CategoryRefrigerated] + s.counts[cargo.CategoryLiquid]
}

// Cargo Management

// TryLoad loads a container from the current port and reports the first
// failed precondition. A rejected load leaves ship and port untouched.
func (s *Ship) TryLoad(c *cargo.Container) LoadRejection {
	if s.HasContainer(c.ID()) {
		return LoadRejectedAlreadyAboard
	}
	if !s.currentPort.HasContainer(c.ID()) {
		return LoadRejectedNotAtPort
	}
	if reason := s.checkCapacity(c); reason != LoadAccepted {
		return reason
	}

	// another worker may have taken it between the membership check and now
	if _, ok := s.currentPort.TakeContainer(c.ID()); !ok {
		return LoadRejectedNotAtPort
	}
	s.stow(c)
	return LoadAccepted
}

// Load is TryLoad reduced to a boolean
func (s *Ship) Load(c *cargo.Container) bool {
	return s.TryLoad(c) == LoadAccepted
}

// Stow places a container aboard without taking it from a port. Used when a
// world is rebuilt with containers already in a manifest. Capacity limits
// still apply.
func (s *Ship) Stow(c *cargo.Container) error {
	if s.HasContainer(c.ID()) {
		return shared.NewValidationError("container_id", fmt.Sprintf("container %s already aboard ship %s", c.ID(), s.id))
	}
	if reason := s.checkCapacity(c); reason != LoadAccepted {
		return shared.NewValidationError("manifest", fmt.Sprintf("ship %s cannot carry container %s: %s", s.id, c.ID(), reason))
	}
	s.stow(c)
	return nil
}

func (s *Ship) checkCapacity(c *cargo.Container) LoadRejection {
	if len(s.manifest) >= s.config.MaxAllContainers {
		return LoadRejectedContainerCount
	}
	if s.totalWeight+c.Weight() > s.config.TotalWeightCapacity {
		return LoadRejectedWeight
	}

	category := c.Category()
	if category.IsHeavy() && s.HeavyCount() >= s.config.MaxHeavyContainers {
		return LoadRejectedHeavyCap
	}

	switch category {
	case cargo.CategoryBasic:
		if s.counts[category] >= s.config.MaxBasicContainers {
			return LoadRejectedBasicCap
		}
	case cargo.CategoryRefrigerated:
		if s.counts[category] >= s.config.MaxRefrigeratedContainers {
			return LoadRejectedRefrigeratedCap
		}
	case cargo.CategoryLiquid:
		if s.counts[category] >= s.config.MaxLiquidContainers {
			return LoadRejectedLiquidCap
		}
	}

	return LoadAccepted
}

func (s *Ship) stow(c *cargo.Container) {
	s.manifest[c.ID()] = c
	s.counts[c.Category()]++
	s.totalWeight += c.Weight()
}

// Unload moves a container from the manifest into the current port.
// Returns false if the container is not aboard.
func (s *Ship) Unload(c *cargo.Container) bool {
	aboard, ok := s.manifest[c.ID()]
	if !ok {
		return false
	}

	delete(s.manifest, aboard.ID())
	s.counts[aboard.Category()]--
	s.totalWeight -= aboard.Weight()
	if len(s.manifest) == 0 {
		// keep float drift from accumulating across many load/unload cycles
		s.totalWeight = 0
	}

	s.currentPort.StoreContainer(aboard)
	return true
}

// Fuel Management

// RequiredFuel returns the fuel needed to sail to destination under the
// ship's fuel policy
func (s *Ship) RequiredFuel(destination *port.Port) float64 {
	return s.fuelService.CalculateTripFuel(s.currentPort, destination, s.config.FuelConsumptionPerKm, s.Manifest())
}

// CanReach checks whether the current tank covers the trip to destination
func (s *Ship) CanReach(destination *port.Port) bool {
	return s.fuelService.CanCover(s.fuel, s.RequiredFuel(destination))
}

// Refuel adds fuel to the tank, clamped at MaxFuelCapacity
func (s *Ship) Refuel(amount float64) error {
	newFuel, err := s.fuel.Add(amount)
	if err != nil {
		return err
	}
	s.fuel = newFuel
	return nil
}

// RefuelToFull refuels ship to full capacity and returns amount added
func (s *Ship) RefuelToFull() float64 {
	needed := s.fuelService.CalculateFuelNeededToFull(s.fuel)
	if needed > 0 {
		// amount is never negative here
		_ = s.Refuel(needed)
	}
	return needed
}

// Navigation

// TrySail sails to destination if the tank covers the trip. On success the
// ship leaves its port (which logs it in history) and docks at destination.
// Sailing to the current port costs nothing and still logs the departure.
// On rejection nothing changes.
func (s *Ship) TrySail(destination *port.Port) SailRejection {
	required := s.RequiredFuel(destination)
	if !s.fuel.CanCover(required) {
		return SailRejectedInsufficient
	}

	newFuel, err := s.fuel.Consume(required)
	if err != nil {
		return SailRejectedInsufficient
	}

	s.navStatus = NavStatusInTransit
	s.fuel = newFuel
	s.currentPort.OutgoingShip(s.id)
	s.currentPort = destination
	destination.IncomingShip(s.id)
	s.navStatus = NavStatusDocked

	return SailAccepted
}

// SailTo is TrySail reduced to a boolean
func (s *Ship) SailTo(destination *port.Port) bool {
	return s.TrySail(destination) == SailAccepted
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship(id=%s, port=%s, status=%s, fuel=%s, containers=%d)",
		s.id, s.currentPort.ID(), s.navStatus, s.fuel, len(s.manifest))
}
