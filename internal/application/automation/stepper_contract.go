package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvaldes/fleetcore-go/internal/domain/navigation"
	"github.com/mvaldes/fleetcore-go/internal/domain/resource"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/domain/task"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// ContractStepper works a delivery contract end to end: acquire the
// required item (extraction for procurement contracts, market purchase
// otherwise), haul it to the contract destination, deliver, and loop
// until nothing is outstanding.
type ContractStepper struct{}

func (s *ContractStepper) Step(ctx context.Context, env *Env, input *StepInput) (*StepOutcome, error) {
	t := input.Task
	view := input.Contract
	outcome := &StepOutcome{}

	if view == nil {
		return outcome, fmt.Errorf("contract task %s has no contract bound", t.ID())
	}

	switch t.State() {
	case task.StateAssigned, task.StateTraveling:
		return outcome, s.advanceTravel(ctx, env, input, outcome)

	case task.StateActing:
		return outcome, s.acquire(ctx, env, input, outcome)

	case task.StateDelivering:
		outstanding, err := deliverCargo(ctx, env, input, outcome)
		if err != nil {
			return outcome, err
		}
		if outstanding <= 0 {
			outcome.FulfillReady = true
			outcome.logf("contract %s deliveries complete", view.ID)
			return outcome, t.Complete()
		}
		// More to deliver: head back out for another load
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		target, err := s.acquisitionTarget(ctx, env, ship, view)
		if err != nil {
			return outcome, err
		}
		if _, err := env.BeginTravel(ctx, ship, target.Symbol); err != nil {
			return outcome, err
		}
		outcome.logf("ship %s returning to %s for another load", t.ShipSymbol(), target.Symbol)
		return outcome, t.StartTravel()

	default:
		return outcome, fmt.Errorf("contract task %s in unexpected state %s", t.ID(), t.State())
	}
}

// advanceTravel decides where the ship should be heading (acquisition
// site or delivery waypoint) and moves it along.
func (s *ContractStepper) advanceTravel(ctx context.Context, env *Env, input *StepInput, outcome *StepOutcome) error {
	t := input.Task
	view := input.Contract

	ship, err := env.LoadShip(ctx, t.ShipSymbol())
	if err != nil {
		return err
	}

	if t.State() == task.StateTraveling {
		if !env.Arrived(ship) {
			return nil
		}
		if ship.IsInTransit() {
			if err := ship.Arrive(); err != nil {
				return err
			}
		}
	}

	if s.readyToDeliver(env, ship, view) {
		if ship.Location().Symbol == view.Destination {
			outcome.logf("ship %s at delivery waypoint %s", t.ShipSymbol(), view.Destination)
			return t.StartDelivery()
		}
		if _, err := env.BeginTravel(ctx, ship, view.Destination); err != nil {
			return err
		}
		if t.State() == task.StateAssigned {
			return t.StartTravel()
		}
		return nil
	}

	target, err := s.acquisitionTarget(ctx, env, ship, view)
	if err != nil {
		return err
	}
	if ship.Location().Symbol == target.Symbol {
		outcome.logf("ship %s at acquisition site %s", t.ShipSymbol(), target.Symbol)
		return t.StartActing()
	}
	if _, err := env.BeginTravel(ctx, ship, target.Symbol); err != nil {
		return err
	}
	if t.State() == task.StateAssigned {
		outcome.logf("ship %s heading to %s for %s", t.ShipSymbol(), target.Symbol, view.ItemSymbol)
		return t.StartTravel()
	}
	return nil
}

// acquire obtains the contract item: extraction for procurement
// contracts, market purchase for the rest.
func (s *ContractStepper) acquire(ctx context.Context, env *Env, input *StepInput, outcome *StepOutcome) error {
	t := input.Task
	view := input.Contract

	ship, err := env.LoadShip(ctx, t.ShipSymbol())
	if err != nil {
		return err
	}

	if s.readyToDeliver(env, ship, view) {
		if _, err := env.BeginTravel(ctx, ship, view.Destination); err != nil {
			return err
		}
		outcome.logf("ship %s hauling %d %s to %s", t.ShipSymbol(),
			ship.Cargo().ItemUnits(view.ItemSymbol), view.ItemSymbol, view.Destination)
		return t.StartTravel()
	}

	if view.Procurement {
		return s.extract(ctx, env, input, ship, outcome)
	}
	return s.purchase(ctx, env, input, ship, outcome)
}

func (s *ContractStepper) extract(ctx context.Context, env *Env, input *StepInput, ship *navigation.Ship, outcome *StepOutcome) error {
	t := input.Task
	view := input.Contract

	// A known cooldown is waited out without touching the retry budget
	if now := env.Clock.Now(); ship.OnCooldown(now) {
		outcome.logf("ship %s on cooldown for %s", t.ShipSymbol(), ship.CooldownRemaining(now))
		return nil
	}

	// Make room before extracting into a full hold. Essential units (those
	// matching outstanding requirements) are never discarded.
	if ship.Cargo().FillRatio() >= env.Config.CargoFullThreshold &&
		!s.readyToDeliver(env, ship, view) {
		requirements := requirementsFromView(view)
		surplus := resource.Classify(ship.Cargo(), requirements).SurplusUnits()
		if surplus == 0 {
			// Hold is all essential cargo; deliver what we have
			if _, err := env.BeginTravel(ctx, ship, view.Destination); err != nil {
				return err
			}
			return t.StartTravel()
		}
		if err := env.FreeCargoSpace(ctx, ship, requirements, surplus); err != nil {
			return err
		}
	}

	if err := env.EnsureInOrbit(ctx, ship); err != nil {
		return err
	}

	extraction, err := env.API.Extract(ctx, ship.Symbol())
	if err != nil {
		var cooldown *ports.CooldownError
		if errors.As(err, &cooldown) {
			return suspendForCooldown(t, cooldown.Remaining)
		}
		return err
	}

	t.ResetRetries()
	outcome.logf("ship %s extracted %d %s", t.ShipSymbol(), extraction.Units, extraction.ItemSymbol)
	return nil
}

func (s *ContractStepper) purchase(ctx context.Context, env *Env, input *StepInput, ship *navigation.Ship, outcome *StepOutcome) error {
	t := input.Task
	view := input.Contract

	if err := env.EnsureDocked(ctx, ship); err != nil {
		return err
	}

	units := view.OutstandingFor(view.ItemSymbol) - ship.Cargo().ItemUnits(view.ItemSymbol)
	if available := ship.Cargo().AvailableCapacity(); units > available {
		units = available
	}
	if units <= 0 {
		// Hold already carries everything outstanding
		if _, err := env.BeginTravel(ctx, ship, view.Destination); err != nil {
			return err
		}
		return t.StartTravel()
	}

	result, err := env.API.Purchase(ctx, ship.Symbol(), view.ItemSymbol, units)
	if err != nil {
		return err
	}
	if err := ship.ReceiveCargo(view.ItemSymbol, result.Units); err != nil {
		return err
	}

	t.ResetRetries()
	outcome.logf("ship %s bought %d %s for %d credits",
		t.ShipSymbol(), result.Units, view.ItemSymbol, result.TotalPrice)
	return nil
}

// readyToDeliver reports whether the ship should head for the delivery
// waypoint: the hold is effectively full, or it already carries everything
// still outstanding.
func (s *ContractStepper) readyToDeliver(env *Env, ship *navigation.Ship, view *ContractView) bool {
	held := ship.Cargo().ItemUnits(view.ItemSymbol)
	if held <= 0 {
		return false
	}
	if ship.Cargo().FillRatio() >= env.Config.CargoFullThreshold {
		return true
	}
	return held >= view.OutstandingFor(view.ItemSymbol)
}

// acquisitionTarget picks where the ship should obtain the item: the
// nearest resource site for procurement contracts, the nearest
// marketplace otherwise.
func (s *ContractStepper) acquisitionTarget(ctx context.Context, env *Env, ship *navigation.Ship, view *ContractView) (*shared.Waypoint, error) {
	destination, err := env.Waypoints.Waypoint(ctx, view.Destination)
	if err != nil {
		return nil, err
	}
	candidates, err := env.Waypoints.SystemWaypoints(ctx, destination.SystemSymbol)
	if err != nil {
		return nil, err
	}

	match := func(w *shared.Waypoint) bool { return w.IsResourceSite() }
	what := "resource site"
	if !view.Procurement {
		match = func(w *shared.Waypoint) bool { return w.HasMarketplace() }
		what = "marketplace"
	}

	target, _, found := navigation.NearestMatching(ship.Location(), candidates, match)
	if !found {
		return nil, fmt.Errorf("no %s found in system %s for contract %s", what, destination.SystemSymbol, view.ID)
	}
	return target, nil
}

func requirementsFromView(view *ContractView) []resource.Requirement {
	requirements := make([]resource.Requirement, 0, len(view.Outstanding))
	for itemSymbol, outstanding := range view.Outstanding {
		requirements = append(requirements, resource.Requirement{
			ItemSymbol:       itemSymbol,
			UnitsOutstanding: outstanding,
		})
	}
	return requirements
}
