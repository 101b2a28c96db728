package port

import (
	"sort"
	"sync"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// Port entity - a located container yard where ships dock
//
// Invariants:
// - id is non-empty
// - a container id appears at most once in the inventory
// - history is append-only; a ship is appended when it departs
//
// All methods are safe for concurrent use. The mutex is the single-writer
// guard for inventory and docked set when ships are processed in parallel.
type Port struct {
	mu sync.Mutex

	id        string
	location  shared.Coordinate
	inventory map[string]*cargo.Container
	docked    map[string]struct{}
	history   []string
}

// NewPort creates an empty port at the given location
func NewPort(id string, location shared.Coordinate) (*Port, error) {
	if id == "" {
		return nil, shared.NewValidationError("port_id", "cannot be empty")
	}

	return &Port{
		id:        id,
		location:  location,
		inventory: make(map[string]*cargo.Container),
		docked:    make(map[string]struct{}),
	}, nil
}

func (p *Port) ID() string {
	return p.id
}

func (p *Port) Location() shared.Coordinate {
	return p.location
}

// DistanceTo returns the great-circle distance to another port in kilometers
func (p *Port) DistanceTo(other *Port) float64 {
	return p.location.DistanceTo(other.location)
}

// Ship registry

// IncomingShip registers a ship as docked. Returns false if it already was.
func (p *Port) IncomingShip(shipID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.docked[shipID]; ok {
		return false
	}
	p.docked[shipID] = struct{}{}
	return true
}

// OutgoingShip removes a docked ship and appends it to the history.
// Returns false without touching the history if the ship was not docked.
func (p *Port) OutgoingShip(shipID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.docked[shipID]; !ok {
		return false
	}
	delete(p.docked, shipID)
	p.history = append(p.history, shipID)
	return true
}

func (p *Port) IsDocked(shipID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.docked[shipID]
	return ok
}

// DockedShips returns the ids of currently docked ships, sorted
func (p *Port) DockedShips() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.docked))
	for id := range p.docked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// History returns a copy of the departure log in departure order
func (p *Port) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// RestoreHistory replaces the departure log. Only used when rebuilding a
// port from a previously written snapshot.
func (p *Port) RestoreHistory(shipIDs []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.history = append([]string(nil), shipIDs...)
}

// Container inventory

func (p *Port) HasContainer(containerID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.inventory[containerID]
	return ok
}

// Container looks up a container stored at this port
func (p *Port) Container(containerID string) (*cargo.Container, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.inventory[containerID]
	return c, ok
}

// Containers returns the stored containers sorted by id
func (p *Port) Containers() []*cargo.Container {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*cargo.Container, 0, len(p.inventory))
	for _, c := range p.inventory {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (p *Port) ContainerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.inventory)
}

// StoreContainer adds a container to the inventory. Storing a container that
// is already present is a no-op and returns false.
func (p *Port) StoreContainer(c *cargo.Container) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inventory[c.ID()]; ok {
		return false
	}
	p.inventory[c.ID()] = c
	return true
}

// TakeContainer removes a container from the inventory in one step
func (p *Port) TakeContainer(containerID string) (*cargo.Container, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.inventory[containerID]
	if !ok {
		return nil, false
	}
	delete(p.inventory, containerID)
	return c, true
}

func (p *Port) String() string {
	return "Port(" + p.id + " " + p.location.String() + ")"
}
