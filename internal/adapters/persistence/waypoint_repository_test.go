package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes/fleetcore-go/internal/adapters/persistence"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

func testWaypoint(t *testing.T, symbol string, x, y float64, traits ...string) *shared.Waypoint {
	t.Helper()
	wp, err := shared.NewWaypoint(symbol, x, y, traits...)
	require.NoError(t, err)
	return wp
}

func TestWaypointRepository_SaveAllAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	wp := testWaypoint(t, "X1-TC4-A1", 10.5, 20.25, "MARKETPLACE", "SHIPYARD")
	wp.Type = "PLANET"

	require.NoError(t, repo.SaveAll(context.Background(), []*shared.Waypoint{wp}, syncedAt))

	found, err := repo.FindBySymbol(context.Background(), "X1-TC4-A1")
	require.NoError(t, err)
	assert.Equal(t, "X1-TC4-A1", found.Symbol)
	assert.Equal(t, "X1-TC4", found.SystemSymbol)
	assert.Equal(t, "PLANET", found.Type)
	assert.Equal(t, 10.5, found.X)
	assert.Equal(t, []string{"MARKETPLACE", "SHIPYARD"}, found.Traits)
	assert.True(t, found.HasMarketplace())
}

func TestWaypointRepository_SaveAllUpserts(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	wp := testWaypoint(t, "X1-TC4-A1", 10, 20)
	require.NoError(t, repo.SaveAll(context.Background(), []*shared.Waypoint{wp}, syncedAt))

	// Re-sync with an added trait; the row is replaced, not duplicated
	updated := testWaypoint(t, "X1-TC4-A1", 10, 20, "MARKETPLACE")
	require.NoError(t, repo.SaveAll(context.Background(), []*shared.Waypoint{updated}, syncedAt.Add(time.Hour)))

	all, err := repo.ListBySystem(context.Background(), "X1-TC4")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].HasMarketplace())
}

func TestWaypointRepository_FindMissing(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)

	_, err := repo.FindBySymbol(context.Background(), "X1-TC4-ZZ")

	assert.Error(t, err)
}

func TestWaypointRepository_ListBySystemWithTrait(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	waypoints := []*shared.Waypoint{
		testWaypoint(t, "X1-TC4-A1", 0, 0, "MARKETPLACE"),
		testWaypoint(t, "X1-TC4-B2", 10, 0, "MINERAL_DEPOSITS"),
		testWaypoint(t, "X1-GZ7-C3", 20, 0, "MARKETPLACE"),
	}
	require.NoError(t, repo.SaveAll(context.Background(), waypoints, syncedAt))

	markets, err := repo.ListBySystemWithTrait(context.Background(), "X1-TC4", "MARKETPLACE")
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "X1-TC4-A1", markets[0].Symbol)
}
