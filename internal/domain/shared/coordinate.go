package shared

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula
const EarthRadiusKm = 6371.0

// Coordinate represents an immutable geographic position in degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// NewCoordinate creates a coordinate with range validation
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return Coordinate{}, NewValidationError("latitude", fmt.Sprintf("must be within [-90, 90], got %v", latitude))
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return Coordinate{}, NewValidationError("longitude", fmt.Sprintf("must be within [-180, 180], got %v", longitude))
	}

	return Coordinate{Latitude: latitude, Longitude: longitude}, nil
}

// DistanceTo calculates the great-circle distance to another coordinate in kilometers
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return Distance(c, other)
}

// Distance returns the Haversine distance between a and b in kilometers
func Distance(a, b Coordinate) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}
