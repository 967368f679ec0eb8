package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mvaldes/fleetcore-go/internal/domain/task"
)

// TaskRepositoryGORM implements task persistence using GORM
type TaskRepositoryGORM struct {
	db *gorm.DB
}

// NewTaskRepository creates a new GORM-based task repository
func NewTaskRepository(db *gorm.DB) *TaskRepositoryGORM {
	return &TaskRepositoryGORM{db: db}
}

// Add creates a new task record in the database
func (r *TaskRepositoryGORM) Add(ctx context.Context, t *task.Task) error {
	model := taskToModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// UpdateState updates the persisted state, retry count and last error of a task
func (r *TaskRepositoryGORM) UpdateState(ctx context.Context, t *task.Task) error {
	updates := map[string]interface{}{
		"state":      string(t.State()),
		"retries":    t.Retries(),
		"updated_at": t.UpdatedAt(),
	}
	if t.LastError() != nil {
		updates["last_error"] = t.LastError().Error()
	}
	if t.IsTerminal() {
		now := t.UpdatedAt()
		updates["finished_at"] = &now
	}

	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", t.ID()).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update task state: %w", result.Error)
	}
	return nil
}

// MarkFinished stamps a completion time on the task record
func (r *TaskRepositoryGORM) MarkFinished(ctx context.Context, taskID string, finishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"finished_at": &finishedAt,
			"updated_at":  finishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark task finished: %w", result.Error)
	}
	return nil
}

// Get retrieves a single task record by ID
func (r *TaskRepositoryGORM) Get(ctx context.Context, taskID string) (*TaskModel, error) {
	var model TaskModel
	result := r.db.WithContext(ctx).Where("id = ?", taskID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", result.Error)
	}
	return &model, nil
}

// ListByShip retrieves all task records for a ship, newest first
func (r *TaskRepositoryGORM) ListByShip(ctx context.Context, shipSymbol string) ([]*TaskModel, error) {
	var models []*TaskModel
	result := r.db.WithContext(ctx).
		Where("ship_symbol = ?", shipSymbol).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tasks for ship %s: %w", shipSymbol, result.Error)
	}
	return models, nil
}

// ListUnfinished retrieves all task records without a finish timestamp
func (r *TaskRepositoryGORM) ListUnfinished(ctx context.Context) ([]*TaskModel, error) {
	var models []*TaskModel
	result := r.db.WithContext(ctx).
		Where("finished_at IS NULL").
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list unfinished tasks: %w", result.Error)
	}
	return models, nil
}

func taskToModel(t *task.Task) *TaskModel {
	model := &TaskModel{
		ID:          t.ID(),
		ShipSymbol:  t.ShipSymbol(),
		Kind:        string(t.Kind()),
		State:       string(t.State()),
		Destination: t.Destination(),
		ContractID:  t.ContractID(),
		ItemSymbol:  t.ItemSymbol(),
		Retries:     t.Retries(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
	if t.LastError() != nil {
		model.LastError = t.LastError().Error()
	}
	return model
}
