package config

// SimulationConfig holds the knobs for a simulation run
type SimulationConfig struct {
	// Fuel policy: ship_only (hull burn only) or cargo_weighted
	FuelPolicy string `mapstructure:"fuel_policy" validate:"required,oneof=ship_only cargo_weighted"`

	// Sail strategy: direct or refueling
	SailStrategy string `mapstructure:"sail_strategy" validate:"required,oneof=direct refueling"`

	// Upper bound on intermediate stops for the refueling strategy
	MaxRefuelHops int `mapstructure:"max_refuel_hops" validate:"min=1,max=32"`

	// Run actions concurrently, partitioned by ship
	Parallel bool `mapstructure:"parallel"`

	// Worker pool size for parallel runs
	Workers int `mapstructure:"workers" validate:"min=1,max=256"`

	// Pace runs to this many actions per second (0 = unpaced)
	ActionsPerSecond float64 `mapstructure:"actions_per_second" validate:"min=0"`
}
