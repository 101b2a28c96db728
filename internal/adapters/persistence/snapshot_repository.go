package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
	"github.com/andrescamacho/portsim-go/pkg/utils"
)

// SnapshotRecord is a stored world snapshot
type SnapshotRecord struct {
	ID             string
	RunID          string
	Label          string
	FuelPolicy     string
	PortCount      int
	ShipCount      int
	ContainerCount int
	CreatedAt      time.Time
	State          types.WorldState
}

// SnapshotRepository stores world snapshots so a run can be resumed later
type SnapshotRepository interface {
	Save(ctx context.Context, runID, label string, state types.WorldState) (*SnapshotRecord, error)
	Get(ctx context.Context, id string) (*SnapshotRecord, error)
	List(ctx context.Context, limit int) ([]SnapshotRecord, error)
	Latest(ctx context.Context) (*SnapshotRecord, error)
}

// GormSnapshotRepository is a GORM-based implementation
type GormSnapshotRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSnapshotRepository creates a snapshot repository.
// If clock is nil, uses RealClock.
func NewGormSnapshotRepository(db *gorm.DB, clock shared.Clock) *GormSnapshotRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSnapshotRepository{db: db, clock: clock}
}

// Save stores the state under a fresh snapshot id
func (r *GormSnapshotRepository) Save(ctx context.Context, runID, label string, state types.WorldState) (*SnapshotRecord, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal world state: %w", err)
	}

	containers := 0
	for _, p := range state.Ports {
		containers += len(p.Containers)
	}
	for _, s := range state.Ships {
		containers += len(s.Manifest)
	}

	model := SnapshotModel{
		ID:             utils.GenerateEntityID("snapshot"),
		RunID:          runID,
		Label:          label,
		FuelPolicy:     state.FuelPolicy,
		PortCount:      len(state.Ports),
		ShipCount:      len(state.Ships),
		ContainerCount: containers,
		State:          string(stateJSON),
		CreatedAt:      r.clock.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return toSnapshotRecord(model, state), nil
}

// Get loads one snapshot with its full state
func (r *GormSnapshotRepository) Get(ctx context.Context, id string) (*SnapshotRecord, error) {
	var model SnapshotModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("snapshot", id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decodeSnapshot(model)
}

// Latest returns the most recent snapshot
func (r *GormSnapshotRepository) Latest(ctx context.Context) (*SnapshotRecord, error) {
	var model SnapshotModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("snapshot", "latest")
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return decodeSnapshot(model)
}

// List returns snapshot headers, newest first. State is left empty.
func (r *GormSnapshotRepository) List(ctx context.Context, limit int) ([]SnapshotRecord, error) {
	var models []SnapshotModel

	query := r.db.WithContext(ctx).
		Omit("state").
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	records := make([]SnapshotRecord, len(models))
	for i, m := range models {
		records[i] = *toSnapshotRecord(m, types.WorldState{})
	}
	return records, nil
}

func decodeSnapshot(model SnapshotModel) (*SnapshotRecord, error) {
	var state types.WorldState
	if err := json.Unmarshal([]byte(model.State), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", model.ID, err)
	}
	return toSnapshotRecord(model, state), nil
}

func toSnapshotRecord(model SnapshotModel, state types.WorldState) *SnapshotRecord {
	return &SnapshotRecord{
		ID:             model.ID,
		RunID:          model.RunID,
		Label:          model.Label,
		FuelPolicy:     model.FuelPolicy,
		PortCount:      model.PortCount,
		ShipCount:      model.ShipCount,
		ContainerCount: model.ContainerCount,
		CreatedAt:      model.CreatedAt,
		State:          state,
	}
}
