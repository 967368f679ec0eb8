package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TaskEventRepositoryGORM implements the per-task event log using GORM
type TaskEventRepositoryGORM struct {
	db *gorm.DB
}

// NewTaskEventRepository creates a new GORM-based task event repository
func NewTaskEventRepository(db *gorm.DB) *TaskEventRepositoryGORM {
	return &TaskEventRepositoryGORM{db: db}
}

// Append records one event for a task
func (r *TaskEventRepositoryGORM) Append(ctx context.Context, taskID, shipSymbol, level, message string, at time.Time) error {
	model := &TaskEventModel{
		TaskID:     taskID,
		ShipSymbol: shipSymbol,
		Timestamp:  at,
		Level:      level,
		Message:    message,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append task event: %w", err)
	}
	return nil
}

// ListByTask retrieves events for a task in chronological order
func (r *TaskEventRepositoryGORM) ListByTask(ctx context.Context, taskID string, limit int) ([]*TaskEventModel, error) {
	query := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("timestamp ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []*TaskEventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list task events: %w", err)
	}
	return models, nil
}

// PruneBefore deletes events older than the cutoff
func (r *TaskEventRepositoryGORM) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&TaskEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune task events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
