package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

func TestPresetConfig(t *testing.T) {
	light, err := navigation.PresetConfig("Light")
	require.NoError(t, err)
	assert.Equal(t, navigation.LightShipConfig(), light)
	assert.Equal(t, 20000.0, light.TotalWeightCapacity)

	heavy, err := navigation.PresetConfig("heavy")
	require.NoError(t, err)
	assert.Equal(t, 30, heavy.MaxAllContainers)
	assert.Equal(t, 2.2, heavy.FuelConsumptionPerKm)

	_, err = navigation.PresetConfig("submarine")
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"heavy", "light", "medium"}, navigation.PresetNames())
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range navigation.PresetNames() {
		cfg, err := navigation.PresetConfig(name)
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestParseFuelPolicy(t *testing.T) {
	p, err := navigation.ParseFuelPolicy("")
	require.NoError(t, err)
	assert.Equal(t, navigation.FuelPolicyShipOnly, p)

	p, err = navigation.ParseFuelPolicy("CARGO_WEIGHTED")
	require.NoError(t, err)
	assert.Equal(t, navigation.FuelPolicyCargoWeighted, p)

	_, err = navigation.ParseFuelPolicy("free")
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}
