package simulation

import (
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/world"
	"github.com/andrescamacho/portsim-go/internal/domain/navigation"
)

// partitionByPort groups action indexes so that ships able to meet at a port
// during the batch end up in one group. A ship is tied to the port it starts
// at and to every port it is told to sail to. Each group keeps the original
// action order; groups are ordered by their first action.
//
// Refuelling hops can land a ship at any port, so with a strategy other than
// DirectSail the whole batch is one group.
func partitionByPort(w *world.World, actions []types.Action) [][]int {
	if len(actions) == 0 {
		return nil
	}

	if _, direct := w.SailStrategy().(navigation.DirectSail); !direct {
		all := make([]int, len(actions))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	sets := newDisjointSets()
	for _, action := range actions {
		shipKey := "ship:" + action.ShipID
		sets.add(shipKey)
		if ship, err := w.Ship(action.ShipID); err == nil {
			sets.union(shipKey, "port:"+ship.CurrentPort().ID())
		}
		if action.Type == types.ActionSail {
			sets.union(shipKey, "port:"+action.PortID)
		}
	}

	var groups [][]int
	groupOf := make(map[string]int)
	for i, action := range actions {
		root := sets.find("ship:" + action.ShipID)
		g, ok := groupOf[root]
		if !ok {
			g = len(groups)
			groupOf[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// disjointSets is a union-find over string keys
type disjointSets struct {
	parent map[string]string
}

func newDisjointSets() *disjointSets {
	return &disjointSets{parent: make(map[string]string)}
}

func (d *disjointSets) add(key string) {
	if _, ok := d.parent[key]; !ok {
		d.parent[key] = key
	}
}

func (d *disjointSets) find(key string) string {
	d.add(key)
	root := key
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for key != root {
		next := d.parent[key]
		d.parent[key] = root
		key = next
	}
	return root
}

func (d *disjointSets) union(a, b string) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	// the lower key becomes the root
	if rb < ra {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
}
