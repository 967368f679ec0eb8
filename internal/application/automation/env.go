package automation

import (
	"context"
	"fmt"

	"github.com/mvaldes/fleetcore-go/internal/domain/navigation"
	"github.com/mvaldes/fleetcore-go/internal/domain/resource"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/config"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// WaypointSource resolves waypoints for route planning. Backed by the
// persistence cache with API fallback in production, by fixtures in tests.
type WaypointSource interface {
	Waypoint(ctx context.Context, symbol string) (*shared.Waypoint, error)
	SystemWaypoints(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error)
}

// Env bundles the collaborators every stepper needs
type Env struct {
	API       ports.GameAPI
	Waypoints WaypointSource
	Planner   *navigation.Planner
	Clock     shared.Clock
	Config    config.AutomationConfig
}

// snapshotToShip converts a wire snapshot into the Ship domain entity
func snapshotToShip(snapshot *ports.ShipSnapshot, location *shared.Waypoint) (*navigation.Ship, error) {
	fuel, err := shared.NewFuel(snapshot.FuelCurrent, snapshot.FuelCapacity)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", snapshot.Symbol, err)
	}

	inventory := make([]*shared.CargoItem, 0, len(snapshot.Inventory))
	for _, item := range snapshot.Inventory {
		cargoItem, err := shared.NewCargoItem(item.Symbol, item.Units)
		if err != nil {
			return nil, fmt.Errorf("ship %s: %w", snapshot.Symbol, err)
		}
		inventory = append(inventory, cargoItem)
	}
	cargo, err := shared.NewCargo(snapshot.CargoCapacity, snapshot.CargoUnits, inventory)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", snapshot.Symbol, err)
	}

	ship, err := navigation.NewShip(snapshot.Symbol, location, navigation.NavStatus(snapshot.NavStatus), fuel, cargo, snapshot.Mounts, snapshot.Role)
	if err != nil {
		return nil, err
	}
	if snapshot.ArrivalTime != nil {
		ship.SetArrivalTime(*snapshot.ArrivalTime)
	}
	if snapshot.CooldownExpiresAt != nil {
		ship.SetCooldown(*snapshot.CooldownExpiresAt)
	}
	return ship, nil
}

// LoadShip fetches the current ship snapshot and rebuilds the domain entity
func (e *Env) LoadShip(ctx context.Context, shipSymbol string) (*navigation.Ship, error) {
	snapshot, err := e.API.GetShip(ctx, shipSymbol)
	if err != nil {
		return nil, err
	}

	location, err := e.Waypoints.Waypoint(ctx, snapshot.WaypointSymbol)
	if err != nil {
		return nil, err
	}
	return snapshotToShip(snapshot, location)
}

// EnsureInOrbit moves the ship to orbit if it is docked. The domain entity
// guards the transition so an orbit call is never issued redundantly or
// while the ship is in transit.
func (e *Env) EnsureInOrbit(ctx context.Context, ship *navigation.Ship) error {
	changed, err := ship.EnsureInOrbit()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.API.Orbit(ctx, ship.Symbol()); err != nil {
		ship.SetNavStatus(navigation.NavStatusDocked)
		return err
	}
	return nil
}

// EnsureDocked docks the ship if it is in orbit
func (e *Env) EnsureDocked(ctx context.Context, ship *navigation.Ship) error {
	changed, err := ship.EnsureDocked()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := e.API.Dock(ctx, ship.Symbol()); err != nil {
		ship.SetNavStatus(navigation.NavStatusInOrbit)
		return err
	}
	return nil
}

// RefuelHere docks the ship at its current waypoint and fills the tank
func (e *Env) RefuelHere(ctx context.Context, ship *navigation.Ship) error {
	if err := e.EnsureDocked(ctx, ship); err != nil {
		return err
	}
	result, err := e.API.Refuel(ctx, ship.Symbol())
	if err != nil {
		return err
	}
	ship.SetFuel(result.FuelCurrent, result.FuelCapacity)
	return nil
}

// BeginTravel plans a route to the destination and issues the first leg.
// Refuel steps in the plan are executed immediately; the navigate call
// leaves the ship in transit with an arrival time recorded.
func (e *Env) BeginTravel(ctx context.Context, ship *navigation.Ship, destinationSymbol string) (*navigation.Route, error) {
	destination, err := e.Waypoints.Waypoint(ctx, destinationSymbol)
	if err != nil {
		return nil, err
	}

	fuelStops, err := e.Waypoints.SystemWaypoints(ctx, destination.SystemSymbol)
	if err != nil {
		return nil, err
	}

	route, err := e.Planner.Plan(ship, destination, fuelStops)
	if err != nil {
		return nil, err
	}
	if route.IsEmpty() {
		return route, nil
	}

	for _, step := range route.Steps {
		switch step.Kind {
		case navigation.StepRefuel:
			if err := e.RefuelHere(ctx, ship); err != nil {
				return nil, err
			}

		case navigation.StepTravel:
			if err := e.EnsureInOrbit(ctx, ship); err != nil {
				return nil, err
			}
			result, err := e.API.Navigate(ctx, ship.Symbol(), step.Waypoint.Symbol)
			if err != nil {
				return nil, err
			}
			if err := ship.ConsumeFuel(step.FuelRequired); err != nil {
				return nil, err
			}
			if err := ship.StartTransit(step.Waypoint); err != nil {
				return nil, err
			}
			ship.SetArrivalTime(result.ArrivalTime)
			// Only the first navigate is issued now; later legs run on
			// subsequent steps once the ship arrives
			return route, nil
		}
	}

	return route, nil
}

// Arrived reports whether the ship has reached its waypoint. In-transit
// ships with a future arrival time are still traveling.
func (e *Env) Arrived(ship *navigation.Ship) bool {
	if !ship.IsInTransit() {
		return true
	}
	arrival := ship.ArrivalTime()
	return arrival != nil && !e.Clock.Now().Before(*arrival)
}

// FreeCargoSpace sells or jettisons surplus cargo to make room for
// neededSpace essential units. Sellable surplus goes to the local market
// first; jettison is the last resort for items no market accepts.
func (e *Env) FreeCargoSpace(ctx context.Context, ship *navigation.Ship, requirements []resource.Requirement, neededSpace int) error {
	var marketAccepts func(itemSymbol string) bool

	location := ship.Location()
	if location.HasMarketplace() {
		market, err := e.API.GetMarket(ctx, location.SystemSymbol, location.Symbol)
		if err == nil {
			marketAccepts = market.Accepts
		}
	}

	actions, planErr := resource.PlanDisposal(ship.Symbol(), ship.Cargo(), requirements, neededSpace, marketAccepts)

	for _, action := range actions {
		switch action.Kind {
		case resource.ActionSell:
			if err := e.EnsureDocked(ctx, ship); err != nil {
				return err
			}
			result, err := e.API.Sell(ctx, ship.Symbol(), action.ItemSymbol, action.Units)
			if err != nil {
				return err
			}
			if err := ship.RemoveCargo(action.ItemSymbol, result.Units); err != nil {
				return err
			}

		case resource.ActionJettison:
			if err := e.API.Jettison(ctx, ship.Symbol(), action.ItemSymbol, action.Units); err != nil {
				return err
			}
			if err := ship.RemoveCargo(action.ItemSymbol, action.Units); err != nil {
				return err
			}
		}
	}

	return planErr
}
