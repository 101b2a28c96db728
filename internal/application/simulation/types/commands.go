package types

// Simulation command types - shared between handlers and the controller to avoid circular imports

// LoadContainerCommand - Load a container from the ship's current port
type LoadContainerCommand struct {
	ShipID      string
	ContainerID string
}

// UnloadContainerCommand - Unload a container into the ship's current port
type UnloadContainerCommand struct {
	ShipID      string
	ContainerID string
}

// RefuelShipCommand - Add fuel to a ship's tank
type RefuelShipCommand struct {
	ShipID string
	Amount float64
}

// SailShipCommand - Sail a ship to another port using the world's sail strategy
type SailShipCommand struct {
	ShipID            string
	DestinationPortID string
}

// ActionResponse - Response shared by every simulation command.
// Success false with a Reason is an ordinary outcome, not an error.
type ActionResponse struct {
	Success   bool
	Reason    string
	FuelAfter float64
	FuelUsed  float64
	Refueled  float64
	Distance  float64
	Hops      []string
}

// Accepted reports whether the action changed the world
func (r *ActionResponse) Accepted() bool {
	return r.Success
}

// GetSnapshotQuery - Render the current world state
type GetSnapshotQuery struct{}

// GetSnapshotResponse - Response from get snapshot query
type GetSnapshotResponse struct {
	State WorldState
}
