package port_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/domain/cargo"
	"github.com/andrescamacho/portsim-go/internal/domain/port"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

func newPort(t *testing.T, id string, lat, lon float64) *port.Port {
	t.Helper()
	p, err := port.NewPort(id, shared.Coordinate{Latitude: lat, Longitude: lon})
	require.NoError(t, err)
	return p
}

func TestNewPort_RejectsEmptyID(t *testing.T) {
	_, err := port.NewPort("", shared.Coordinate{})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestPort_IncomingShipIsIdempotent(t *testing.T) {
	p := newPort(t, "A", 0, 0)

	assert.True(t, p.IncomingShip("s1"))
	assert.False(t, p.IncomingShip("s1"))
	assert.Equal(t, []string{"s1"}, p.DockedShips())
	assert.Empty(t, p.History())
}

func TestPort_OutgoingShipAppendsHistory(t *testing.T) {
	p := newPort(t, "A", 0, 0)
	p.IncomingShip("s1")

	assert.True(t, p.OutgoingShip("s1"))
	assert.False(t, p.OutgoingShip("s1"))

	assert.Empty(t, p.DockedShips())
	assert.Equal(t, []string{"s1"}, p.History())
}

func TestPort_OutgoingUnknownShipIsNoOp(t *testing.T) {
	p := newPort(t, "A", 0, 0)

	assert.False(t, p.OutgoingShip("ghost"))
	assert.Empty(t, p.History())
}

func TestPort_DistanceTo(t *testing.T) {
	a := newPort(t, "A", 0, 0)
	b := newPort(t, "B", 0, 1)

	assert.InDelta(t, 111.19, a.DistanceTo(b), 0.01)
	assert.Equal(t, a.DistanceTo(b), b.DistanceTo(a))
}

func TestPort_StoreAndTakeContainer(t *testing.T) {
	p := newPort(t, "A", 0, 0)
	c, err := cargo.NewContainer("c1", 100, cargo.CategoryBasic)
	require.NoError(t, err)

	assert.True(t, p.StoreContainer(c))
	assert.False(t, p.StoreContainer(c), "double insert is guarded")
	assert.Equal(t, 1, p.ContainerCount())
	assert.True(t, p.HasContainer("c1"))

	taken, ok := p.TakeContainer("c1")
	require.True(t, ok)
	assert.Same(t, c, taken)
	assert.False(t, p.HasContainer("c1"))

	_, ok = p.TakeContainer("c1")
	assert.False(t, ok)
}

func TestPort_ContainersSortedByID(t *testing.T) {
	p := newPort(t, "A", 0, 0)
	for _, id := range []string{"c3", "c1", "c2"} {
		c, err := cargo.NewContainer(id, 10, cargo.CategoryBasic)
		require.NoError(t, err)
		p.StoreContainer(c)
	}

	containers := p.Containers()
	require.Len(t, containers, 3)
	assert.Equal(t, "c1", containers[0].ID())
	assert.Equal(t, "c2", containers[1].ID())
	assert.Equal(t, "c3", containers[2].ID())
}

func TestPort_TakeContainerConcurrently(t *testing.T) {
	p := newPort(t, "A", 0, 0)
	c, err := cargo.NewContainer("c1", 100, cargo.CategoryBasic)
	require.NoError(t, err)
	p.StoreContainer(c)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := p.TakeContainer("c1"); ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, taken)
}
