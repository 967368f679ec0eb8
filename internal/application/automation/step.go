package automation

import (
	"context"
	"fmt"

	"github.com/mvaldes/fleetcore-go/internal/domain/task"
)

// ContractView is a read-only snapshot of contract progress handed to a
// stepper at dispatch time. The contract aggregate itself stays with the
// manager; steppers report progress back through StepOutcome.
type ContractView struct {
	ID          string
	ItemSymbol  string
	Destination string
	Outstanding map[string]int
	Procurement bool
}

// OutstandingFor returns still-owed units for an item
func (v *ContractView) OutstandingFor(itemSymbol string) int {
	if v == nil {
		return 0
	}
	return v.Outstanding[itemSymbol]
}

// StepInput is one unit of work the manager hands to a stepper
type StepInput struct {
	Task     *task.Task
	Contract *ContractView
}

// DeliveryReport carries a server-confirmed fulfilled count back to the
// manager, which applies it to the contract aggregate.
type DeliveryReport struct {
	ContractID     string
	ItemSymbol     string
	UnitsFulfilled int
}

// StepOutcome is what a single step produced. A delivery step may hand
// over several contract lines, so confirmed counts are reported per line.
type StepOutcome struct {
	Delivered    []*DeliveryReport
	FulfillReady bool
	Events       []string
}

func (o *StepOutcome) logf(format string, args ...interface{}) {
	o.Events = append(o.Events, fmt.Sprintf(format, args...))
}

// StepResult is the message a dispatched step sends back to the manager
type StepResult struct {
	ShipSymbol string
	TaskID     string
	State      task.State
	Outcome    *StepOutcome
	Err        error
}

// Stepper advances a task by one unit of work. One implementation per
// task kind, selected once at task creation.
type Stepper interface {
	Step(ctx context.Context, env *Env, input *StepInput) (*StepOutcome, error)
}

// stepperFor maps a task kind to its behavior
func stepperFor(kind task.Kind) (Stepper, error) {
	switch kind {
	case task.KindMine:
		return &MineStepper{}, nil
	case task.KindTrade:
		return &TradeStepper{}, nil
	case task.KindTransport:
		return &TransportStepper{}, nil
	case task.KindContract:
		return &ContractStepper{}, nil
	default:
		return nil, fmt.Errorf("no stepper for task kind %s", kind)
	}
}
