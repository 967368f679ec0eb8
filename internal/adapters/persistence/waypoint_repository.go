package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

// GormWaypointRepository caches waypoint snapshots so that system scans
// don't hit the API on every route computation.
type GormWaypointRepository struct {
	db *gorm.DB
}

// NewGormWaypointRepository creates a new GORM waypoint repository
func NewGormWaypointRepository(db *gorm.DB) *GormWaypointRepository {
	return &GormWaypointRepository{db: db}
}

// SaveAll upserts a batch of waypoints for a system
func (r *GormWaypointRepository) SaveAll(ctx context.Context, waypoints []*shared.Waypoint, syncedAt time.Time) error {
	if len(waypoints) == 0 {
		return nil
	}

	models := make([]WaypointModel, 0, len(waypoints))
	for _, w := range waypoints {
		traitsJSON, err := json.Marshal(w.Traits)
		if err != nil {
			return fmt.Errorf("failed to serialize traits for %s: %w", w.Symbol, err)
		}
		models = append(models, WaypointModel{
			WaypointSymbol: w.Symbol,
			SystemSymbol:   w.SystemSymbol,
			Type:           w.Type,
			X:              w.X,
			Y:              w.Y,
			Traits:         string(traitsJSON),
			SyncedAt:       syncedAt.UTC().Format(time.RFC3339),
		})
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "waypoint_symbol"}},
			UpdateAll: true,
		}).
		Create(&models)
	if result.Error != nil {
		return fmt.Errorf("failed to save waypoints: %w", result.Error)
	}
	return nil
}

// FindBySymbol retrieves a cached waypoint by symbol
func (r *GormWaypointRepository) FindBySymbol(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	var model WaypointModel
	result := r.db.WithContext(ctx).Where("waypoint_symbol = ?", symbol).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("waypoint not found: %s", symbol)
		}
		return nil, fmt.Errorf("failed to find waypoint: %w", result.Error)
	}
	return r.modelToWaypoint(&model)
}

// ListBySystem retrieves all cached waypoints in a system
func (r *GormWaypointRepository) ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	var models []WaypointModel
	result := r.db.WithContext(ctx).Where("system_symbol = ?", systemSymbol).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list waypoints: %w", result.Error)
	}

	waypoints := make([]*shared.Waypoint, 0, len(models))
	for i := range models {
		waypoint, err := r.modelToWaypoint(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert waypoint %s: %w", models[i].WaypointSymbol, err)
		}
		waypoints = append(waypoints, waypoint)
	}
	return waypoints, nil
}

// ListBySystemWithTrait retrieves cached waypoints filtered by trait
func (r *GormWaypointRepository) ListBySystemWithTrait(ctx context.Context, systemSymbol, trait string) ([]*shared.Waypoint, error) {
	// Traits are stored as a JSON array string; match the quoted trait
	pattern := fmt.Sprintf("%%\"%s\"%%", trait)
	var models []WaypointModel
	result := r.db.WithContext(ctx).
		Where("system_symbol = ? AND traits LIKE ?", systemSymbol, pattern).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list waypoints by trait: %w", result.Error)
	}

	waypoints := make([]*shared.Waypoint, 0, len(models))
	for i := range models {
		waypoint, err := r.modelToWaypoint(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert waypoint %s: %w", models[i].WaypointSymbol, err)
		}
		waypoints = append(waypoints, waypoint)
	}
	return waypoints, nil
}

func (r *GormWaypointRepository) modelToWaypoint(model *WaypointModel) (*shared.Waypoint, error) {
	var traits []string
	if model.Traits != "" {
		if err := json.Unmarshal([]byte(model.Traits), &traits); err != nil {
			return nil, fmt.Errorf("failed to parse traits: %w", err)
		}
	}

	waypoint, err := shared.NewWaypoint(model.WaypointSymbol, model.X, model.Y, traits...)
	if err != nil {
		return nil, err
	}
	waypoint.Type = model.Type
	return waypoint, nil
}
