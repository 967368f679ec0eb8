package automation

import (
	"context"
	"sync"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// CachedWaypointSource resolves waypoints from an in-memory map, falling
// back to a full system scan through the API on a miss. Scanned systems
// are kept for the life of the process; waypoint charts don't move.
type CachedWaypointSource struct {
	mu      sync.RWMutex
	api     ports.GameAPI
	systems map[string][]*shared.Waypoint
	bySymbol map[string]*shared.Waypoint
	persist func(ctx context.Context, waypoints []*shared.Waypoint)
}

// NewCachedWaypointSource creates a waypoint source backed by the API.
// persist, if non-nil, is invoked with each freshly scanned system so the
// batch can be written to durable storage.
func NewCachedWaypointSource(api ports.GameAPI, persist func(ctx context.Context, waypoints []*shared.Waypoint)) *CachedWaypointSource {
	return &CachedWaypointSource{
		api:      api,
		systems:  make(map[string][]*shared.Waypoint),
		bySymbol: make(map[string]*shared.Waypoint),
		persist:  persist,
	}
}

// Waypoint resolves a single waypoint by symbol
func (c *CachedWaypointSource) Waypoint(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	c.mu.RLock()
	if waypoint, ok := c.bySymbol[symbol]; ok {
		c.mu.RUnlock()
		return waypoint, nil
	}
	c.mu.RUnlock()

	if _, err := c.SystemWaypoints(ctx, shared.ExtractSystemSymbol(symbol)); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if waypoint, ok := c.bySymbol[symbol]; ok {
		return waypoint, nil
	}
	return nil, &ports.NotFoundError{Resource: "waypoint", Symbol: symbol}
}

// SystemWaypoints returns every waypoint of a system, scanning the API
// the first time a system is requested.
func (c *CachedWaypointSource) SystemWaypoints(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	c.mu.RLock()
	if waypoints, ok := c.systems[systemSymbol]; ok {
		c.mu.RUnlock()
		return waypoints, nil
	}
	c.mu.RUnlock()

	snapshots, err := c.api.GetWaypoints(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}

	waypoints := make([]*shared.Waypoint, 0, len(snapshots))
	for _, snapshot := range snapshots {
		waypoint, err := shared.NewWaypoint(snapshot.Symbol, snapshot.X, snapshot.Y, snapshot.Traits...)
		if err != nil {
			return nil, err
		}
		waypoint.Type = snapshot.Type
		waypoints = append(waypoints, waypoint)
	}

	c.mu.Lock()
	c.systems[systemSymbol] = waypoints
	for _, waypoint := range waypoints {
		c.bySymbol[waypoint.Symbol] = waypoint
	}
	c.mu.Unlock()

	if c.persist != nil {
		c.persist(ctx, waypoints)
	}
	return waypoints, nil
}

// StaticWaypointSource serves a fixed chart. Used in tests.
type StaticWaypointSource struct {
	waypoints map[string]*shared.Waypoint
}

// NewStaticWaypointSource builds a source over a fixed set of waypoints
func NewStaticWaypointSource(waypoints ...*shared.Waypoint) *StaticWaypointSource {
	byName := make(map[string]*shared.Waypoint, len(waypoints))
	for _, waypoint := range waypoints {
		byName[waypoint.Symbol] = waypoint
	}
	return &StaticWaypointSource{waypoints: byName}
}

func (s *StaticWaypointSource) Waypoint(_ context.Context, symbol string) (*shared.Waypoint, error) {
	if waypoint, ok := s.waypoints[symbol]; ok {
		return waypoint, nil
	}
	return nil, &ports.NotFoundError{Resource: "waypoint", Symbol: symbol}
}

func (s *StaticWaypointSource) SystemWaypoints(_ context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	var waypoints []*shared.Waypoint
	for _, waypoint := range s.waypoints {
		if waypoint.SystemSymbol == systemSymbol {
			waypoints = append(waypoints, waypoint)
		}
	}
	return waypoints, nil
}
