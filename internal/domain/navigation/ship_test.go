package navigation_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/domain/port"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

func roomyConfig() navigation.CapacityConfig {
	return navigation.CapacityConfig{
		TotalWeightCapacity:       5000,
		MaxAllContainers:          10,
		MaxBasicContainers:        10,
		MaxHeavyContainers:        10,
		MaxRefrigeratedContainers: 10,
		MaxLiquidContainers:       10,
		FuelConsumptionPerKm:      1.0,
		MaxFuelCapacity:           1000,
	}
}

func newTestPort(t *testing.T, id string, lat, lon float64) *port.Port {
	t.Helper()
	p, err := port.NewPort(id, shared.Coordinate{Latitude: lat, Longitude: lon})
	require.NoError(t, err)
	return p
}

func storeContainer(t *testing.T, p *port.Port, id string, weight float64, category cargo.Category) *cargo.Container {
	t.Helper()
	c, err := cargo.NewContainer(id, weight, category)
	require.NoError(t, err)
	require.True(t, p.StoreContainer(c))
	return c
}

func TestNewShip_RegistersAtPort(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)

	ship, err := navigation.NewShip("s1", a, roomyConfig(), 100)
	require.NoError(t, err)

	assert.True(t, ship.IsDocked())
	assert.True(t, ship.IsAt(a))
	assert.Equal(t, []string{"s1"}, a.DockedShips())
}

func TestNewShip_Validation(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)

	_, err := navigation.NewShip("", a, roomyConfig(), 0)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = navigation.NewShip("s1", a, roomyConfig(), -1)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = navigation.NewShip("s1", a, roomyConfig(), 1001)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	bad := roomyConfig()
	bad.MaxHeavyContainers = -1
	_, err = navigation.NewShip("s1", a, bad, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestShip_LoadRespectsWeightCapacity(t *testing.T) {
	// Arrange
	a := newTestPort(t, "A", 0, 0)
	first := storeContainer(t, a, "c1", 3000, cargo.CategoryBasic)
	second := storeContainer(t, a, "c2", 2500, cargo.CategoryBasic)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 0)
	require.NoError(t, err)

	// Act & Assert
	assert.True(t, ship.Load(first))
	assert.Equal(t, 1, ship.ContainerCount())

	assert.Equal(t, navigation.LoadRejectedWeight, ship.TryLoad(second))
	assert.Equal(t, 1, ship.ContainerCount())
	assert.Equal(t, 3000.0, ship.TotalWeight())
	assert.True(t, a.HasContainer("c2"), "rejected container stays at port")
	assert.False(t, a.HasContainer("c1"))
}

func TestShip_LoadRejectsContainerElsewhere(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	b := newTestPort(t, "B", 0, 1)
	c := storeContainer(t, b, "c1", 100, cargo.CategoryBasic)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 0)
	require.NoError(t, err)

	assert.Equal(t, navigation.LoadRejectedNotAtPort, ship.TryLoad(c))
	assert.True(t, b.HasContainer("c1"))
}

func TestShip_LoadRejectsDuplicate(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	c := storeContainer(t, a, "c1", 100, cargo.CategoryBasic)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 0)
	require.NoError(t, err)

	require.True(t, ship.Load(c))
	// even if the same container were somehow back at the port
	a.StoreContainer(c)

	assert.Equal(t, navigation.LoadRejectedAlreadyAboard, ship.TryLoad(c))
	assert.Equal(t, 1, ship.ContainerCount())
}

func TestShip_LoadRespectsContainerCount(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	cfg := roomyConfig()
	cfg.MaxAllContainers = 1
	first := storeContainer(t, a, "c1", 10, cargo.CategoryBasic)
	second := storeContainer(t, a, "c2", 10, cargo.CategoryBasic)
	ship, err := navigation.NewShip("s1", a, cfg, 0)
	require.NoError(t, err)

	assert.True(t, ship.Load(first))
	assert.Equal(t, navigation.LoadRejectedContainerCount, ship.TryLoad(second))
}

func TestShip_RefrigeratedCountsAgainstHeavyCap(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	cfg := roomyConfig()
	cfg.MaxHeavyContainers = 1
	fridge := storeContainer(t, a, "c1", 500, cargo.CategoryRefrigerated)
	heavy := storeContainer(t, a, "c2", 500, cargo.CategoryHeavy)
	ship, err := navigation.NewShip("s1", a, cfg, 0)
	require.NoError(t, err)

	assert.True(t, ship.Load(fridge))
	assert.Equal(t, navigation.LoadRejectedHeavyCap, ship.TryLoad(heavy))
	assert.Equal(t, 1, ship.HeavyCount())
	assert.Equal(t, 1, ship.CountOf(cargo.CategoryRefrigerated))
	assert.Equal(t, 0, ship.CountOf(cargo.CategoryHeavy))
}

func TestShip_CategoryCaps(t *testing.T) {
	tests := []struct {
		category cargo.Category
		mutate   func(*navigation.CapacityConfig)
		reason   navigation.LoadRejection
	}{
		{cargo.CategoryBasic, func(c *navigation.CapacityConfig) { c.MaxBasicContainers = 1 }, navigation.LoadRejectedBasicCap},
		{cargo.CategoryRefrigerated, func(c *navigation.CapacityConfig) { c.MaxRefrigeratedContainers = 1 }, navigation.LoadRejectedRefrigeratedCap},
		{cargo.CategoryLiquid, func(c *navigation.CapacityConfig) { c.MaxLiquidContainers = 1 }, navigation.LoadRejectedLiquidCap},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			a := newTestPort(t, "A", 0, 0)
			cfg := roomyConfig()
			tt.mutate(&cfg)
			first := storeContainer(t, a, "c1", 100, tt.category)
			second := storeContainer(t, a, "c2", 100, tt.category)
			ship, err := navigation.NewShip("s1", a, cfg, 0)
			require.NoError(t, err)

			assert.True(t, ship.Load(first))
			assert.Equal(t, tt.reason, ship.TryLoad(second))
		})
	}
}

func TestShip_LoadUnloadRoundTrip(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	c := storeContainer(t, a, "c1", 1200, cargo.CategoryLiquid)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 0)
	require.NoError(t, err)

	require.True(t, ship.Load(c))
	require.True(t, ship.Unload(c))

	assert.Equal(t, 0, ship.ContainerCount())
	assert.Equal(t, 0.0, ship.TotalWeight())
	assert.Equal(t, 0, ship.HeavyCount())
	assert.True(t, a.HasContainer("c1"))
	assert.False(t, ship.Unload(c), "second unload has nothing to do")
}

func TestShip_UnloadGoesToCurrentPort(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	b := newTestPort(t, "B", 0, 1)
	c := storeContainer(t, a, "c1", 100, cargo.CategoryBasic)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 500)
	require.NoError(t, err)

	require.True(t, ship.Load(c))
	require.True(t, ship.SailTo(b))
	require.True(t, ship.Unload(c))

	assert.False(t, a.HasContainer("c1"))
	assert.True(t, b.HasContainer("c1"))
}

func TestShip_SailRequiresFuelThenSucceedsAfterRefuel(t *testing.T) {
	// Arrange
	a := newTestPort(t, "A", 0, 0)
	b := newTestPort(t, "B", 0, 1)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 100)
	require.NoError(t, err)

	// Act: not enough fuel for 111.19 km
	ok := ship.SailTo(b)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, 100.0, ship.Fuel())
	assert.True(t, ship.IsAt(a))
	assert.Equal(t, []string{"s1"}, a.DockedShips())

	// Act: refuel and retry
	require.NoError(t, ship.Refuel(50))
	ok = ship.SailTo(b)

	// Assert
	assert.True(t, ok)
	assert.InDelta(t, 38.81, ship.Fuel(), 0.01)
	assert.True(t, ship.IsAt(b))
	assert.True(t, ship.IsDocked())
	assert.Empty(t, a.DockedShips())
	assert.Equal(t, []string{"s1"}, a.History())
	assert.Equal(t, []string{"s1"}, b.DockedShips())
	assert.Empty(t, b.History(), "history is written on departure")
}

func TestShip_SailToCurrentPortRedocks(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 100)
	require.NoError(t, err)

	assert.Equal(t, navigation.SailAccepted, ship.TrySail(a))
	assert.Equal(t, 100.0, ship.Fuel())
	assert.True(t, ship.IsAt(a))
	assert.True(t, ship.IsDocked())
	assert.Equal(t, []string{"s1"}, a.History())
	assert.Equal(t, []string{"s1"}, a.DockedShips())
}

func TestShip_SailToCurrentPortWithEmptyTank(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 0, navigation.WithFuelPolicy(navigation.FuelPolicyCargoWeighted))
	require.NoError(t, err)

	assert.True(t, ship.SailTo(a))
	assert.Equal(t, 0.0, ship.Fuel())
	assert.Equal(t, []string{"s1"}, a.History())
}

func TestShip_CargoWeightedFuelPolicy(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	b := newTestPort(t, "B", 0, 1)
	c := storeContainer(t, a, "c1", 1000, cargo.CategoryBasic)
	cfg := roomyConfig()
	cfg.MaxFuelCapacity = 1_000_000

	plain, err := navigation.NewShip("plain", a, cfg, 0)
	require.NoError(t, err)
	weighted, err := navigation.NewShip("weighted", a, cfg, 0, navigation.WithFuelPolicy(navigation.FuelPolicyCargoWeighted))
	require.NoError(t, err)
	require.True(t, weighted.Load(c))

	distance := a.DistanceTo(b)
	assert.InDelta(t, distance*1.0, plain.RequiredFuel(b), 1e-9)
	assert.InDelta(t, distance*(1.0+2500), weighted.RequiredFuel(b), 1e-6)
	assert.Equal(t, navigation.FuelPolicyCargoWeighted, weighted.FuelPolicy())
}

func TestShip_RefuelClampsAndRejectsNegative(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 900)
	require.NoError(t, err)

	require.NoError(t, ship.Refuel(500))
	assert.Equal(t, 1000.0, ship.Fuel())

	err = ship.Refuel(-10)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	assert.Equal(t, 1000.0, ship.Fuel())
}

func TestShip_RefuelToFull(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	ship, err := navigation.NewShip("s1", a, roomyConfig(), 250)
	require.NoError(t, err)

	added := ship.RefuelToFull()

	assert.Equal(t, 750.0, added)
	assert.True(t, ship.FuelState().IsFull())
}

func TestShip_StowEnforcesCapacity(t *testing.T) {
	a := newTestPort(t, "A", 0, 0)
	cfg := roomyConfig()
	cfg.TotalWeightCapacity = 100
	ship, err := navigation.NewShip("s1", a, cfg, 0)
	require.NoError(t, err)

	light, err := cargo.NewContainer("c1", 60, cargo.CategoryBasic)
	require.NoError(t, err)
	heavy, err := cargo.NewContainer("c2", 60, cargo.CategoryBasic)
	require.NoError(t, err)

	require.NoError(t, ship.Stow(light))
	assert.ErrorIs(t, ship.Stow(heavy), shared.ErrInvalidArgument)
	assert.ErrorIs(t, ship.Stow(light), shared.ErrInvalidArgument)
}

// Random load/unload sequences never break the capacity invariants, and a
// container is always in exactly one place.
func TestShip_InvariantsHoldUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	categories := cargo.Categories()

	for round := 0; round < 20; round++ {
		a := newTestPort(t, "A", 0, 0)
		cfg := navigation.CapacityConfig{
			TotalWeightCapacity:       float64(2000 + rng.Intn(8000)),
			MaxAllContainers:          1 + rng.Intn(8),
			MaxBasicContainers:        rng.Intn(5),
			MaxHeavyContainers:        rng.Intn(5),
			MaxRefrigeratedContainers: rng.Intn(3),
			MaxLiquidContainers:       rng.Intn(3),
			FuelConsumptionPerKm:      1,
			MaxFuelCapacity:           100,
		}
		ship, err := navigation.NewShip("s1", a, cfg, 0)
		require.NoError(t, err)

		var containers []*cargo.Container
		for i := 0; i < 15; i++ {
			weight := float64(100 + rng.Intn(2500))
			containers = append(containers, storeContainer(t, a, fmt.Sprintf("c%02d", i), weight, categories[rng.Intn(len(categories))]))
		}

		for step := 0; step < 200; step++ {
			c := containers[rng.Intn(len(containers))]
			if rng.Intn(2) == 0 {
				ship.Load(c)
			} else {
				ship.Unload(c)
			}

			assert.LessOrEqual(t, ship.TotalWeight(), cfg.TotalWeightCapacity)
			assert.LessOrEqual(t, ship.ContainerCount(), cfg.MaxAllContainers)
			assert.LessOrEqual(t, ship.HeavyCount(), cfg.MaxHeavyContainers)
			assert.LessOrEqual(t, ship.CountOf(cargo.CategoryBasic), cfg.MaxBasicContainers)
			assert.LessOrEqual(t, ship.CountOf(cargo.CategoryRefrigerated), cfg.MaxRefrigeratedContainers)
			assert.LessOrEqual(t, ship.CountOf(cargo.CategoryLiquid), cfg.MaxLiquidContainers)
			assert.NotEqual(t, ship.HasContainer(c.ID()), a.HasContainer(c.ID()))
		}
	}
}
