package navigation

import (
	"github.com/andrescamacho/portsim-go/internal/domain/port"
)

// Sail strategy names accepted in configuration
const (
	SailStrategyDirect    = "direct"
	SailStrategyRefueling = "refueling"
)

// DefaultMaxRefuelHops bounds RefuelingSail when no limit is configured
const DefaultMaxRefuelHops = 3

// SailOutcome describes what a strategy did
type SailOutcome struct {
	Success  bool
	Reason   SailRejection
	Hops     []string // intermediate ports visited to refuel, in order
	FuelUsed float64
	Refueled float64
}

// SailStrategy decides how a ship gets to a destination. ports is the full
// set of ports a strategy may route through.
type SailStrategy interface {
	Sail(ship *Ship, destination *port.Port, ports []*port.Port) SailOutcome
}

// DirectSail sails straight to the destination or not at all
type DirectSail struct{}

func (DirectSail) Sail(ship *Ship, destination *port.Port, _ []*port.Port) SailOutcome {
	return sailDirect(ship, destination)
}

func sailDirect(ship *Ship, destination *port.Port) SailOutcome {
	before := ship.Fuel()
	reason := ship.TrySail(destination)
	if reason != SailAccepted {
		return SailOutcome{Reason: reason}
	}
	return SailOutcome{Success: true, FuelUsed: before - ship.Fuel()}
}

// RefuelingSail tries the direct sail first. When the tank is short it hops
// to the nearest port it can still reach, refuels to capacity there and tries
// again, at most MaxHops times. Hops already made are kept if the final sail
// still fails.
type RefuelingSail struct {
	MaxHops int
}

func (r RefuelingSail) Sail(ship *Ship, destination *port.Port, ports []*port.Port) SailOutcome {
	maxHops := r.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxRefuelHops
	}

	var outcome SailOutcome
	visited := map[string]bool{ship.CurrentPort().ID(): true}

	for {
		attempt := sailDirect(ship, destination)
		outcome.FuelUsed += attempt.FuelUsed
		if attempt.Success || attempt.Reason != SailRejectedInsufficient {
			outcome.Success = attempt.Success
			outcome.Reason = attempt.Reason
			return outcome
		}

		if len(outcome.Hops) >= maxHops {
			outcome.Reason = SailRejectedInsufficient
			return outcome
		}

		exclude := make(map[string]bool, len(visited)+1)
		for id := range visited {
			exclude[id] = true
		}
		exclude[destination.ID()] = true

		next := FindNearestReachablePort(ship, ports, exclude)
		if next == nil {
			outcome.Reason = SailRejectedNoRoute
			return outcome
		}

		hop := sailDirect(ship, next)
		if !hop.Success {
			outcome.Reason = hop.Reason
			return outcome
		}
		outcome.FuelUsed += hop.FuelUsed
		outcome.Hops = append(outcome.Hops, next.ID())
		outcome.Refueled += ship.RefuelToFull()
		visited[next.ID()] = true
	}
}

// FindNearestReachablePort returns the closest port the ship can reach with
// its current fuel, skipping its own port and any id in exclude. Ties go to
// the lower id. Returns nil when nothing is reachable.
func FindNearestReachablePort(ship *Ship, ports []*port.Port, exclude map[string]bool) *port.Port {
	var (
		nearest  *port.Port
		bestDist float64
	)

	for _, p := range ports {
		if p == nil || ship.IsAt(p) || exclude[p.ID()] {
			continue
		}
		if !ship.CanReach(p) {
			continue
		}

		dist := ship.CurrentPort().DistanceTo(p)
		if nearest == nil || dist < bestDist || (dist == bestDist && p.ID() < nearest.ID()) {
			nearest = p
			bestDist = dist
		}
	}

	return nearest
}

// NewSailStrategy builds a strategy from its configured name
func NewSailStrategy(name string, maxHops int) SailStrategy {
	if name == SailStrategyRefueling {
		return RefuelingSail{MaxHops: maxHops}
	}
	return DirectSail{}
}
