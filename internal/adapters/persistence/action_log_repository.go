package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// ActionLogRepository manages per-run action log persistence
type ActionLogRepository interface {
	// Log writes a log entry for a run
	Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error

	// GetLogs retrieves logs for a run, oldest first, with optional level filtering
	GetLogs(ctx context.Context, runID string, limit int, level *string) ([]ActionLogEntry, error)
}

// ActionLogEntry represents a log entry
type ActionLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormActionLogRepository is a GORM-based implementation
type GormActionLogRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormActionLogRepository creates a new action log repository.
// If clock is nil, uses RealClock.
func NewGormActionLogRepository(db *gorm.DB, clock shared.Clock) *GormActionLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormActionLogRepository{db: db, clock: clock}
}

// Log writes a log entry
func (r *GormActionLogRepository) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	// Metadata is optional; an unencodable map is stored as empty
	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &ActionLogModel{
		RunID:     runID,
		Timestamp: r.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write action log: %w", err)
	}
	return nil
}

// GetLogs retrieves logs for a run
func (r *GormActionLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string) ([]ActionLogEntry, error) {
	var models []ActionLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	query = query.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get action logs: %w", err)
	}

	entries := make([]ActionLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = ActionLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}

// RunLogger writes every entry of one run through the repository.
// It satisfies common.Logger; write failures are dropped.
type RunLogger struct {
	repo  ActionLogRepository
	runID string
}

// NewRunLogger binds a repository to a run id
func NewRunLogger(repo ActionLogRepository, runID string) *RunLogger {
	return &RunLogger{repo: repo, runID: runID}
}

func (l *RunLogger) Log(level, message string, metadata map[string]interface{}) {
	_ = l.repo.Log(context.Background(), l.runID, level, message, metadata)
}
