package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
)

func partitionWorld(t *testing.T, opts world.Options) *world.World {
	t.Helper()
	doc := &types.WorldDocument{
		Ports: []types.PortSpec{
			{ID: "A", Latitude: 0, Longitude: 0},
			{ID: "B", Latitude: 0, Longitude: 1},
			{ID: "C", Latitude: 0, Longitude: 2},
			{ID: "D", Latitude: 0, Longitude: 3},
		},
		Ships: []types.ShipSpec{
			{ID: "s1", PortID: "A", Preset: "light"},
			{ID: "s2", PortID: "B", Preset: "light"},
			{ID: "s3", PortID: "A", Preset: "light"},
			{ID: "s4", PortID: "C", Preset: "light"},
			{ID: "s5", PortID: "D", Preset: "light"},
		},
	}
	w, err := world.BuildWorld(doc, opts)
	require.NoError(t, err)
	return w
}

func TestPartitionByPort(t *testing.T) {
	tests := []struct {
		name    string
		actions []types.Action
		want    [][]int
	}{
		{
			name:    "empty batch",
			actions: nil,
			want:    nil,
		},
		{
			name: "ships at different ports run apart",
			actions: []types.Action{
				types.RefuelAction("s1", 1),
				types.RefuelAction("s2", 1),
				types.RefuelAction("s1", 1),
			},
			want: [][]int{{0, 2}, {1}},
		},
		{
			name: "ships starting at the same port share a group",
			actions: []types.Action{
				types.LoadAction("s1", "c1"),
				types.RefuelAction("s2", 1),
				types.LoadAction("s3", "c1"),
			},
			want: [][]int{{0, 2}, {1}},
		},
		{
			name: "sailing joins the destination's group",
			actions: []types.Action{
				types.SailAction("s2", "C"),
				types.RefuelAction("s4", 1),
				types.RefuelAction("s5", 1),
				types.SailAction("s1", "A"),
			},
			want: [][]int{{0, 1}, {2}, {3}},
		},
		{
			name: "unknown ships keep their own group",
			actions: []types.Action{
				types.RefuelAction("ghost", 1),
				types.RefuelAction("s5", 1),
				types.RefuelAction("ghost", 2),
			},
			want: [][]int{{0, 2}, {1}},
		},
	}

	w := partitionWorld(t, world.Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, partitionByPort(w, tt.actions))
		})
	}
}

func TestPartitionByPort_RefuelingStrategyRunsAsOneGroup(t *testing.T) {
	w := partitionWorld(t, world.Options{SailStrategy: navigation.RefuelingSail{MaxHops: 2}})

	groups := partitionByPort(w, []types.Action{
		types.RefuelAction("s1", 1),
		types.RefuelAction("s5", 1),
		types.RefuelAction("s2", 1),
	})

	assert.Equal(t, [][]int{{0, 1, 2}}, groups)
}
