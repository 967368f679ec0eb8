package persistence

import (
	"time"
)

// TaskModel represents the tasks table
type TaskModel struct {
	ID          string     `gorm:"column:id;primaryKey;not null"`
	ShipSymbol  string     `gorm:"column:ship_symbol;not null;index"`
	Kind        string     `gorm:"column:kind;not null"`
	State       string     `gorm:"column:state;not null"`
	Destination string     `gorm:"column:destination"`
	ContractID  string     `gorm:"column:contract_id;index"`
	ItemSymbol  string     `gorm:"column:item_symbol"`
	Retries     int        `gorm:"column:retries;default:0"`
	LastError   string     `gorm:"column:last_error;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	FinishedAt  *time.Time `gorm:"column:finished_at"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

// TaskEventModel represents the task_events table
type TaskEventModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID     string    `gorm:"column:task_id;not null;index"`
	ShipSymbol string    `gorm:"column:ship_symbol;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;not null"`
	Level      string    `gorm:"column:level;not null;default:'INFO'"`
	Message    string    `gorm:"column:message;type:text;not null"`
}

func (TaskEventModel) TableName() string {
	return "task_events"
}

// WaypointModel represents the waypoints table (API response cache)
type WaypointModel struct {
	WaypointSymbol string  `gorm:"column:waypoint_symbol;primaryKey"`
	SystemSymbol   string  `gorm:"column:system_symbol;not null;index"`
	Type           string  `gorm:"column:type;not null"`
	X              float64 `gorm:"column:x;not null"`
	Y              float64 `gorm:"column:y;not null"`
	Traits         string  `gorm:"column:traits;type:text"` // JSON array as text
	SyncedAt       string  `gorm:"column:synced_at"`        // ISO timestamp string
}

func (WaypointModel) TableName() string {
	return "waypoints"
}
