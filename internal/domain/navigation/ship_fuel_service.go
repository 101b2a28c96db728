package navigation

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/port"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// FuelPolicy selects how sailing fuel is charged
type FuelPolicy string

const (
	// FuelPolicyShipOnly charges distance × ship rate
	FuelPolicyShipOnly FuelPolicy = "ship_only"
	// FuelPolicyCargoWeighted charges distance × (ship rate + Σ container consumption)
	FuelPolicyCargoWeighted FuelPolicy = "cargo_weighted"
)

// DefaultFuelPolicy is used when no policy is configured
const DefaultFuelPolicy = FuelPolicyShipOnly

// ParseFuelPolicy converts a config value into a FuelPolicy. Empty means default.
func ParseFuelPolicy(value string) (FuelPolicy, error) {
	switch FuelPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return DefaultFuelPolicy, nil
	case FuelPolicyShipOnly:
		return FuelPolicyShipOnly, nil
	case FuelPolicyCargoWeighted:
		return FuelPolicyCargoWeighted, nil
	default:
		return "", shared.NewValidationError("fuel_policy", fmt.Sprintf("unknown fuel policy: %q", value))
	}
}

// ShipFuelService holds the stateless fuel calculations for ships.
// All sailing fuel decisions go through it so the policy is applied consistently.
type ShipFuelService struct {
	policy FuelPolicy
}

// NewShipFuelService creates a fuel service for the given policy
func NewShipFuelService(policy FuelPolicy) *ShipFuelService {
	if policy == "" {
		policy = DefaultFuelPolicy
	}
	return &ShipFuelService{policy: policy}
}

func (s *ShipFuelService) Policy() FuelPolicy {
	return s.policy
}

// CalculateFuelRequired returns the fuel needed to cover distance with the
// given ship rate and manifest
func (s *ShipFuelService) CalculateFuelRequired(distance, ratePerKm float64, manifest []*cargo.Container) float64 {
	rate := ratePerKm
	if s.policy == FuelPolicyCargoWeighted {
		for _, c := range manifest {
			rate += c.Consumption()
		}
	}
	return distance * rate
}

// CalculateTripFuel returns the fuel needed between two ports
func (s *ShipFuelService) CalculateTripFuel(from, to *port.Port, ratePerKm float64, manifest []*cargo.Container) float64 {
	return s.CalculateFuelRequired(from.DistanceTo(to), ratePerKm, manifest)
}

// CanCover checks whether the tank covers the required amount
func (s *ShipFuelService) CanCover(fuel *shared.Fuel, required float64) bool {
	return fuel.CanCover(required)
}

// CalculateFuelNeededToFull returns the amount needed to top up the tank
func (s *ShipFuelService) CalculateFuelNeededToFull(fuel *shared.Fuel) float64 {
	return fuel.Missing()
}
