package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

func TestNewFuel_RejectsInvalidState(t *testing.T) {
	_, err := shared.NewFuel(-1, 100)
	assert.Error(t, err)

	_, err = shared.NewFuel(10, -5)
	assert.Error(t, err)

	_, err = shared.NewFuel(150, 100)
	assert.Error(t, err)
}

func TestFuel_AddClampsAtCapacity(t *testing.T) {
	fuel, err := shared.NewFuel(90, 100)
	require.NoError(t, err)

	refueled, err := fuel.Add(50)
	require.NoError(t, err)

	assert.Equal(t, 100.0, refueled.Current)
	assert.True(t, refueled.IsFull())
	// original value is untouched
	assert.Equal(t, 90.0, fuel.Current)
}

func TestFuel_ConsumeFloorsAtZero(t *testing.T) {
	fuel, err := shared.NewFuel(10, 100)
	require.NoError(t, err)

	drained, err := fuel.Consume(25)
	require.NoError(t, err)

	assert.Equal(t, 0.0, drained.Current)
}

func TestFuel_NegativeAmountsAreRejected(t *testing.T) {
	fuel, err := shared.NewFuel(10, 100)
	require.NoError(t, err)

	_, err = fuel.Add(-1)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = fuel.Consume(-1)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestFuel_PercentageAndMissing(t *testing.T) {
	fuel, err := shared.NewFuel(25, 200)
	require.NoError(t, err)

	assert.InDelta(t, 12.5, fuel.Percentage(), 1e-9)
	assert.Equal(t, 175.0, fuel.Missing())
	assert.True(t, fuel.CanCover(25))
	assert.False(t, fuel.CanCover(25.01))
	assert.Equal(t, "Fuel(25.00/200.00)", fuel.String())
}
