package persistence

import "time"

// SnapshotModel represents the world_snapshots table
type SnapshotModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	RunID          string    `gorm:"column:run_id;index"`
	Label          string    `gorm:"column:label"`
	FuelPolicy     string    `gorm:"column:fuel_policy;not null"`
	PortCount      int       `gorm:"column:port_count;not null"`
	ShipCount      int       `gorm:"column:ship_count;not null"`
	ContainerCount int       `gorm:"column:container_count;not null"`
	State          string    `gorm:"column:state;type:text;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index"`
}

func (SnapshotModel) TableName() string {
	return "world_snapshots"
}

// ActionLogModel represents the action_logs table
type ActionLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"`
}

func (ActionLogModel) TableName() string {
	return "action_logs"
}
