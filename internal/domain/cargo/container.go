package cargo

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// Category is the closed classification of a container. It determines the
// fuel coefficient and which capacity caps a container counts against.
type Category string

const (
	CategoryBasic        Category = "BASIC"
	CategoryHeavy        Category = "HEAVY"
	CategoryRefrigerated Category = "REFRIGERATED"
	CategoryLiquid       Category = "LIQUID"
)

// BasicWeightLimit is the heaviest container that still classifies as basic
const BasicWeightLimit = 3000.0

var unitCoefficients = map[Category]float64{
	CategoryBasic:        2.5,
	CategoryHeavy:        3.0,
	CategoryRefrigerated: 5.0,
	CategoryLiquid:       4.0,
}

// Categories lists every category in a stable order
func Categories() []Category {
	return []Category{CategoryBasic, CategoryHeavy, CategoryRefrigerated, CategoryLiquid}
}

// ParseCategory converts a case-insensitive name into a Category
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := unitCoefficients[c]; !ok {
		return "", shared.NewValidationError("category", fmt.Sprintf("unknown container category: %q", name))
	}
	return c, nil
}

// IsValid checks if the category is one of the known variants
func (c Category) IsValid() bool {
	_, ok := unitCoefficients[c]
	return ok
}

// UnitCoefficient returns fuel consumed per unit of weight
func (c Category) UnitCoefficient() float64 {
	return unitCoefficients[c]
}

// IsHeavy reports whether the category counts against the heavy-container cap.
// Refrigerated and liquid containers are heavy containers too.
func (c Category) IsHeavy() bool {
	return c == CategoryHeavy || c == CategoryRefrigerated || c == CategoryLiquid
}

func (c Category) String() string {
	return string(c)
}

// Classify picks a category from the container weight and a contents hint.
// Anything up to BasicWeightLimit is basic regardless of contents.
func Classify(weight float64, contents string) Category {
	if weight <= BasicWeightLimit {
		return CategoryBasic
	}

	switch strings.ToLower(strings.TrimSpace(contents)) {
	case "liquid":
		return CategoryLiquid
	case "refrigerated":
		return CategoryRefrigerated
	default:
		return CategoryHeavy
	}
}

// Container is a typed cargo unit. It is immutable after construction.
//
// Invariants:
// - id is non-empty
// - weight is positive and finite
// - category is one of the four known variants
type Container struct {
	id       string
	weight   float64
	category Category
}

// NewContainer creates a container with validation
func NewContainer(id string, weight float64, category Category) (*Container, error) {
	if id == "" {
		return nil, shared.NewValidationError("container_id", "cannot be empty")
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return nil, shared.NewValidationError("weight", fmt.Sprintf("must be a positive number, got %v", weight))
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("category", fmt.Sprintf("unknown container category: %q", category))
	}

	return &Container{
		id:       id,
		weight:   weight,
		category: category,
	}, nil
}

func (c *Container) ID() string {
	return c.id
}

func (c *Container) Weight() float64 {
	return c.weight
}

func (c *Container) Category() Category {
	return c.category
}

// Consumption returns weight times the category coefficient
func (c *Container) Consumption() float64 {
	return c.weight * c.category.UnitCoefficient()
}

// Equals compares category and weight only. Ids are ignored, so two distinct
// containers can be equal; collections key on ID() instead.
func (c *Container) Equals(other *Container) bool {
	if other == nil {
		return false
	}
	return c.category == other.category && c.weight == other.weight
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(%s, %s, %.2f)", c.id, c.category, c.weight)
}
