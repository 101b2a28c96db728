package navigation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// CapacityConfig is the static configuration of a ship: what it may carry and
// how it burns fuel. Ship classes are presets of this struct, not types.
type CapacityConfig struct {
	TotalWeightCapacity       float64 `json:"total_weight_capacity" yaml:"total_weight_capacity" mapstructure:"total_weight_capacity"`
	MaxAllContainers          int     `json:"max_all_containers" yaml:"max_all_containers" mapstructure:"max_all_containers"`
	MaxBasicContainers        int     `json:"max_basic_containers" yaml:"max_basic_containers" mapstructure:"max_basic_containers"`
	MaxHeavyContainers        int     `json:"max_heavy_containers" yaml:"max_heavy_containers" mapstructure:"max_heavy_containers"`
	MaxRefrigeratedContainers int     `json:"max_refrigerated_containers" yaml:"max_refrigerated_containers" mapstructure:"max_refrigerated_containers"`
	MaxLiquidContainers       int     `json:"max_liquid_containers" yaml:"max_liquid_containers" mapstructure:"max_liquid_containers"`
	FuelConsumptionPerKm      float64 `json:"fuel_consumption_per_km" yaml:"fuel_consumption_per_km" mapstructure:"fuel_consumption_per_km"`
	MaxFuelCapacity           float64 `json:"max_fuel_capacity" yaml:"max_fuel_capacity" mapstructure:"max_fuel_capacity"`
}

// Validate rejects negative or non-finite limits
func (c CapacityConfig) Validate() error {
	floats := []struct {
		field string
		value float64
	}{
		{"total_weight_capacity", c.TotalWeightCapacity},
		{"fuel_consumption_per_km", c.FuelConsumptionPerKm},
		{"max_fuel_capacity", c.MaxFuelCapacity},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return shared.NewValidationError(f.field, fmt.Sprintf("must be a non-negative number, got %v", f.value))
		}
	}

	ints := []struct {
		field string
		value int
	}{
		{"max_all_containers", c.MaxAllContainers},
		{"max_basic_containers", c.MaxBasicContainers},
		{"max_heavy_containers", c.MaxHeavyContainers},
		{"max_refrigerated_containers", c.MaxRefrigeratedContainers},
		{"max_liquid_containers", c.MaxLiquidContainers},
	}
	for _, f := range ints {
		if f.value < 0 {
			return shared.NewValidationError(f.field, fmt.Sprintf("cannot be negative, got %d", f.value))
		}
	}

	return nil
}

// CategoryCap returns the category-specific container cap
func (c CapacityConfig) CategoryCap(category cargo.Category) int {
	switch category {
	case cargo.CategoryBasic:
		return c.MaxBasicContainers
	case cargo.CategoryHeavy:
		return c.MaxHeavyContainers
	case cargo.CategoryRefrigerated:
		return c.MaxRefrigeratedContainers
	case cargo.CategoryLiquid:
		return c.MaxLiquidContainers
	default:
		return 0
	}
}

// Presets

const (
	PresetLight  = "light"
	PresetMedium = "medium"
	PresetHeavy  = "heavy"
)

// LightShipConfig is a small feeder ship
func LightShipConfig() CapacityConfig {
	return CapacityConfig{
		TotalWeightCapacity:       20000,
		MaxAllContainers:          15,
		MaxHeavyContainers:        3,
		MaxRefrigeratedContainers: 4,
		MaxLiquidContainers:       3,
		MaxBasicContainers:        5,
		FuelConsumptionPerKm:      1.2,
		MaxFuelCapacity:           20200,
	}
}

// MediumShipConfig is a general purpose carrier
func MediumShipConfig() CapacityConfig {
	return CapacityConfig{
		TotalWeightCapacity:       25000,
		MaxAllContainers:          20,
		MaxHeavyContainers:        5,
		MaxRefrigeratedContainers: 7,
		MaxLiquidContainers:       3,
		MaxBasicContainers:        5,
		FuelConsumptionPerKm:      1.5,
		MaxFuelCapacity:           25000,
	}
}

// HeavyShipConfig is a large bulk carrier
func HeavyShipConfig() CapacityConfig {
	return CapacityConfig{
		TotalWeightCapacity:       35000,
		MaxAllContainers:          30,
		MaxHeavyContainers:        7,
		MaxRefrigeratedContainers: 6,
		MaxLiquidContainers:       8,
		MaxBasicContainers:        9,
		FuelConsumptionPerKm:      2.2,
		MaxFuelCapacity:           35000,
	}
}

var presets = map[string]func() CapacityConfig{
	PresetLight:  LightShipConfig,
	PresetMedium: MediumShipConfig,
	PresetHeavy:  HeavyShipConfig,
}

// PresetConfig returns the named preset (case-insensitive)
func PresetConfig(name string) (CapacityConfig, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CapacityConfig{}, shared.NewValidationError("preset", fmt.Sprintf("unknown ship preset: %q", name))
	}
	return build(), nil
}

// PresetNames lists the known presets sorted by name
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
