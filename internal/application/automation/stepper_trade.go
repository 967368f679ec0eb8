package automation

import (
	"context"
	"fmt"

	"github.com/mvaldes/fleetcore-go/internal/domain/task"
)

// TradeStepper hauls the ship's current cargo to a target market and
// sells everything aboard, then releases the ship.
type TradeStepper struct{}

func (s *TradeStepper) Step(ctx context.Context, env *Env, input *StepInput) (*StepOutcome, error) {
	t := input.Task
	outcome := &StepOutcome{}

	switch t.State() {
	case task.StateAssigned:
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		if ship.Location().Symbol == t.Destination() {
			return outcome, t.StartActing()
		}
		if _, err := env.BeginTravel(ctx, ship, t.Destination()); err != nil {
			return outcome, err
		}
		outcome.logf("ship %s hauling cargo to %s", t.ShipSymbol(), t.Destination())
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
		return outcome, t.StartActing()

	case task.StateActing:
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		if err := env.EnsureDocked(ctx, ship); err != nil {
			return outcome, err
		}

		for _, item := range ship.Cargo().Inventory {
			result, err := env.API.Sell(ctx, ship.Symbol(), item.Symbol, item.Units)
			if err != nil {
				return outcome, err
			}
			outcome.logf("ship %s sold %d %s for %d credits",
				t.ShipSymbol(), result.Units, item.Symbol, result.TotalPrice)
		}

		outcome.logf("ship %s trade run complete at %s", t.ShipSymbol(), t.Destination())
		return outcome, t.Complete()

	default:
		return outcome, fmt.Errorf("trade task %s in unexpected state %s", t.ID(), t.State())
	}
}
