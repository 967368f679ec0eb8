package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mvaldes/fleetcore-go/internal/domain/task"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// MineStepper runs a continuous extraction loop: travel to the resource
// site, extract on each cooldown window, and sell off cargo at the local
// market whenever the hold fills up. The task runs until stopped.
type MineStepper struct{}

func (s *MineStepper) Step(ctx context.Context, env *Env, input *StepInput) (*StepOutcome, error) {
	t := input.Task
	outcome := &StepOutcome{}

	switch t.State() {
	case task.StateAssigned:
		ship, err := env.LoadShip(ctx, t.ShipSymbol())
		if err != nil {
			return outcome, err
		}
		if ship.Location().Symbol == t.Destination() {
			outcome.logf("ship %s at mining site %s", t.ShipSymbol(), t.Destination())
			return outcome, t.StartActing()
		}
		route, err := env.BeginTravel(ctx, ship, t.Destination())
		if err != nil {
			return outcome, err
		}
		if route.RequiresRefuel() {
			outcome.logf("ship %s refueling on the way to %s", t.ShipSymbol(), t.Destination())
		}
		outcome.logf("ship %s en route to mining site %s", t.ShipSymbol(), t.Destination())
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
			// Multi-leg route: issue the next leg
			if _, err := env.BeginTravel(ctx, ship, t.Destination()); err != nil {
				return outcome, err
			}
			return outcome, nil
		}
		outcome.logf("ship %s arrived at mining site %s", t.ShipSymbol(), t.Destination())
		return outcome, t.StartActing()

	case task.StateActing:
		return outcome, s.mine(ctx, env, input, outcome)

	default:
		return outcome, fmt.Errorf("mine task %s in unexpected state %s", t.ID(), t.State())
	}
}

func (s *MineStepper) mine(ctx context.Context, env *Env, input *StepInput, outcome *StepOutcome) error {
	t := input.Task

	ship, err := env.LoadShip(ctx, t.ShipSymbol())
	if err != nil {
		return err
	}

	// Waiting out a known cooldown is free; the retry budget only covers
	// the server rejecting a reissued action
	if now := env.Clock.Now(); ship.OnCooldown(now) {
		outcome.logf("ship %s on cooldown for %s", t.ShipSymbol(), ship.CooldownRemaining(now))
		return nil
	}

	// Sell off the hold once it crosses the configured threshold; with no
	// contract requirements everything aboard is surplus
	if ship.Cargo().FillRatio() >= env.Config.CargoFullThreshold {
		if err := env.FreeCargoSpace(ctx, ship, nil, ship.Cargo().Units); err != nil {
			return err
		}
		outcome.logf("ship %s sold cargo at %s", t.ShipSymbol(), ship.Location().Symbol)
		return nil
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

// suspendForCooldown handles the server rejecting a reissued action with
// a cooldown the local snapshot did not show. Each such rejection counts
// one bounded retry; the task stays in place so the next tick reissues.
func suspendForCooldown(t *task.Task, remaining time.Duration) error {
	if !t.RecordRetry(fmt.Errorf("cooldown active, %s remaining", remaining)) {
		return fmt.Errorf("ship %s: cooldown retries exhausted after %d attempts", t.ShipSymbol(), t.Retries()-1)
	}
	return nil
}
