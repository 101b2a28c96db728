package shared

import (
	"fmt"
	"math"
)

// Fuel represents an immutable fuel state
type Fuel struct {
	Current  float64
	Capacity float64
}

// NewFuel creates a new fuel value object with validation
func NewFuel(current, capacity float64) (*Fuel, error) {
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return nil, NewValidationError("fuel", "must be a finite number")
	}
	if math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return nil, NewValidationError("fuel_capacity", "must be a finite number")
	}
	if current < 0 {
		return nil, NewValidationError("fuel", "current fuel cannot be negative")
	}
	if capacity < 0 {
		return nil, NewValidationError("fuel_capacity", "fuel capacity cannot be negative")
	}
	if current > capacity {
		return nil, NewValidationError("fuel", "current fuel cannot exceed capacity")
	}

	return &Fuel{
		Current:  current,
		Capacity: capacity,
	}, nil
}

// Percentage returns fuel as percentage of capacity
func (f *Fuel) Percentage() float64 {
	if f.Capacity == 0 {
		return 0.0
	}
	return f.Current / f.Capacity * 100.0
}

// Consume returns new Fuel with amount consumed, floored at zero
func (f *Fuel) Consume(amount float64) (*Fuel, error) {
	if amount < 0 || math.IsNaN(amount) {
		return nil, NewValidationError("amount", "fuel amount cannot be negative")
	}
	newCurrent := f.Current - amount
	if newCurrent < 0 {
		newCurrent = 0
	}
	return &Fuel{
		Current:  newCurrent,
		Capacity: f.Capacity,
	}, nil
}

// Add returns new Fuel with amount added, clamped to capacity
func (f *Fuel) Add(amount float64) (*Fuel, error) {
	if amount < 0 || math.IsNaN(amount) {
		return nil, NewValidationError("amount", "add amount cannot be negative")
	}
	newCurrent := f.Current + amount
	if newCurrent > f.Capacity {
		newCurrent = f.Capacity
	}
	return &Fuel{
		Current:  newCurrent,
		Capacity: f.Capacity,
	}, nil
}

// CanCover checks whether the tank holds at least the required amount
func (f *Fuel) CanCover(required float64) bool {
	return f.Current >= required
}

// Missing returns how much fuel is needed to fill the tank
func (f *Fuel) Missing() float64 {
	missing := f.Capacity - f.Current
	if missing < 0 {
		return 0
	}
	return missing
}

// IsFull checks if fuel is at capacity
func (f *Fuel) IsFull() bool {
	return f.Current == f.Capacity
}

func (f *Fuel) String() string {
	return fmt.Sprintf("Fuel(%.2f/%.2f)", f.Current, f.Capacity)
}
