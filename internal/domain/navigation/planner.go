package navigation

import (
	"fmt"
	"math"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

const (
	// DefaultFuelSafetyMargin is the fuel reserve (in units) kept when
	// deciding whether a leg is flyable without refueling first.
	DefaultFuelSafetyMargin = 4

	// fuelPerDistanceUnit scales distance into fuel consumption.
	fuelPerDistanceUnit = 10.0
)

// FuelCost returns the fuel required to travel the given distance.
// Zero distance costs nothing; any positive distance costs at least one
// unit, and cost never decreases as distance grows.
func FuelCost(distance float64) int {
	if distance <= 0 {
		return 0
	}
	cost := int(math.Ceil(distance / fuelPerDistanceUnit))
	if cost < 1 {
		return 1
	}
	return cost
}

// StepKind identifies what a route step does
type StepKind string

const (
	// StepRefuel docks at the step's waypoint and fills the tanks
	StepRefuel StepKind = "REFUEL"

	// StepTravel orbits and navigates to the step's waypoint
	StepTravel StepKind = "TRAVEL"
)

// Step is one leg of a travel plan
type Step struct {
	Kind         StepKind
	Waypoint     *shared.Waypoint
	FuelRequired int
}

// Route is an ordered travel plan toward a destination. Refuel steps
// always precede the travel leg that needs them.
type Route struct {
	Steps []Step
}

// RequiresRefuel reports whether the plan contains a refuel stop
func (r *Route) RequiresRefuel() bool {
	for _, step := range r.Steps {
		if step.Kind == StepRefuel {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the ship is already at the destination
func (r *Route) IsEmpty() bool {
	return len(r.Steps) == 0
}

// Planner builds fuel-aware travel plans. Plans guarantee that every
// travel leg is issued from orbit and that a refuel stop is inserted
// ahead of departure whenever current fuel cannot cover the leg plus
// the safety margin.
type Planner struct {
	safetyMargin int
}

// NewPlanner creates a planner with the given fuel safety margin.
// Negative margins are treated as zero.
func NewPlanner(safetyMargin int) *Planner {
	if safetyMargin < 0 {
		safetyMargin = 0
	}
	return &Planner{safetyMargin: safetyMargin}
}

// SafetyMargin returns the configured fuel reserve
func (p *Planner) SafetyMargin() int {
	return p.safetyMargin
}

// Plan computes a route from the ship's current location to destination.
// fuelStops are waypoints in the system where refueling is possible; they
// are only consulted when the current waypoint cannot sell fuel.
func (p *Planner) Plan(ship *Ship, destination *shared.Waypoint, fuelStops []*shared.Waypoint) (*Route, error) {
	if destination == nil {
		return nil, fmt.Errorf("destination cannot be nil")
	}

	if ship.IsAt(destination) {
		return &Route{}, nil
	}

	directCost := FuelCost(ship.Location().DistanceTo(destination))
	if ship.Fuel().CanTravel(directCost, p.safetyMargin) {
		return &Route{Steps: []Step{
			{Kind: StepTravel, Waypoint: destination, FuelRequired: directCost},
		}}, nil
	}

	// Not enough fuel for a direct run. Prefer topping up where the ship
	// already is; otherwise divert through the nearest reachable stop.
	if ship.Location().SellsFuel() {
		return &Route{Steps: []Step{
			{Kind: StepRefuel, Waypoint: ship.Location()},
			{Kind: StepTravel, Waypoint: destination, FuelRequired: directCost},
		}}, nil
	}

	stop, err := p.nearestReachableFuelStop(ship, fuelStops)
	if err != nil {
		return nil, err
	}

	stopCost := FuelCost(ship.Location().DistanceTo(stop))
	finalCost := FuelCost(stop.DistanceTo(destination))
	return &Route{Steps: []Step{
		{Kind: StepTravel, Waypoint: stop, FuelRequired: stopCost},
		{Kind: StepRefuel, Waypoint: stop},
		{Kind: StepTravel, Waypoint: destination, FuelRequired: finalCost},
	}}, nil
}

// nearestReachableFuelStop finds the closest fuel-selling waypoint the
// ship can reach on its remaining fuel.
func (p *Planner) nearestReachableFuelStop(ship *Ship, fuelStops []*shared.Waypoint) (*shared.Waypoint, error) {
	var reachable []*shared.Waypoint
	for _, stop := range fuelStops {
		if !stop.SellsFuel() || stop.Symbol == ship.Location().Symbol {
			continue
		}
		if FuelCost(ship.Location().DistanceTo(stop)) > ship.Fuel().Current {
			continue
		}
		reachable = append(reachable, stop)
	}

	stop, _ := shared.NearestWaypoint(ship.Location(), reachable)
	if stop == nil {
		return nil, fmt.Errorf("ship %s: no fuel stop reachable with %d fuel",
			ship.Symbol(), ship.Fuel().Current)
	}
	return stop, nil
}

// NearestMatching returns the closest candidate satisfying match, its
// distance, and whether any candidate matched.
func NearestMatching(
	from *shared.Waypoint,
	candidates []*shared.Waypoint,
	match func(*shared.Waypoint) bool,
) (*shared.Waypoint, float64, bool) {
	var best *shared.Waypoint
	bestDistance := math.MaxFloat64

	for _, candidate := range candidates {
		if !match(candidate) {
			continue
		}
		distance := from.DistanceTo(candidate)
		if distance < bestDistance {
			bestDistance = distance
			best = candidate
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestDistance, true
}
