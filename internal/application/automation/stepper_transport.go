package automation

import (
	"context"
	"fmt"

	"github.com/mvaldes/fleetcore-go/internal/domain/task"
)

// TransportStepper moves cargo already aboard to a contract's delivery
// waypoint and hands it over. Unlike ContractStepper it never mines or
// buys; it only delivers what the ship carries.
type TransportStepper struct{}

func (s *TransportStepper) Step(ctx context.Context, env *Env, input *StepInput) (*StepOutcome, error) {
	t := input.Task
	outcome := &StepOutcome{}

	switch t.State() {
	case task.StateAssigned:
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		if ship.Location().Symbol == t.Destination() {
			return outcome, t.StartDelivery()
		}
		if _, err := env.BeginTravel(ctx, ship, t.Destination()); err != nil {
			return outcome, err
		}
		outcome.logf("ship %s transporting cargo to %s", t.ShipSymbol(), t.Destination())
		return outcome, t.StartTravel()

	case task.StateTraveling:
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		if !env.Arrived(ship) {
			return outcome, nil
		}
		if ship.IsInTransit() {
			if err := ship.Arrive(); err != nil {
				return outcome, err
			}
		}
		if ship.Location().Symbol != t.Destination() {
			if _, err := env.BeginTravel(ctx, ship, t.Destination()); err != nil {
				return outcome, err
			}
			return outcome, nil
		}
		return outcome, t.StartDelivery()

	case task.StateDelivering:
		outstanding, err := deliverCargo(ctx, env, input, outcome)
		if err != nil {
			return outcome, err
		}
		if outstanding <= 0 {
			outcome.FulfillReady = true
		}
		return outcome, t.Complete()

	default:
		return outcome, fmt.Errorf("transport task %s in unexpected state %s", t.ID(), t.State())
	}
}

// deliverCargo docks and hands over every held unit the contract still
// needs. Returns the units still outstanding across all delivery lines.
// Shared by transport and contract tasks.
func deliverCargo(ctx context.Context, env *Env, input *StepInput, outcome *StepOutcome) (int, error) {
	t := input.Task
	view := input.Contract
	if view == nil {
		return 0, fmt.Errorf("task %s: delivery requires a contract", t.ID())
	}

	ship, err := env.LoadShip(ctx, t.ShipSymbol())
	if err != nil {
		return 0, err
	}
	if err := env.EnsureDocked(ctx, ship); err != nil {
		return 0, err
	}

	outstandingTotal := 0
	for itemSymbol, outstanding := range view.Outstanding {
		held := ship.Cargo().ItemUnits(itemSymbol)
		units := held
		if units > outstanding {
			units = outstanding
		}
		if units <= 0 {
			outstandingTotal += outstanding
			continue
		}

		result, err := env.API.DeliverContractItem(ctx, view.ID, t.ShipSymbol(), itemSymbol, units)
		if err != nil {
			return 0, err
		}
		if err := ship.RemoveCargo(itemSymbol, units); err != nil {
			return 0, err
		}

		outcome.Delivered = append(outcome.Delivered, &DeliveryReport{
			ContractID:     view.ID,
			ItemSymbol:     itemSymbol,
			UnitsFulfilled: result.UnitsDelivered,
		})
		outstandingTotal += result.UnitsRequired - result.UnitsDelivered
		outcome.logf("ship %s delivered %d %s to %s (%d/%d)",
			t.ShipSymbol(), units, itemSymbol, view.Destination,
			result.UnitsDelivered, result.UnitsRequired)
	}

	return outstandingTotal, nil
}
