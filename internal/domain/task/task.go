package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

// State represents where an automation task is in its lifecycle
type State string

const (
	// StateIdle indicates no work is bound to the ship yet
	StateIdle State = "IDLE"

	// StateAssigned indicates a task kind and target have been bound
	StateAssigned State = "ASSIGNED"

	// StateTraveling indicates the ship is en route to its target waypoint
	StateTraveling State = "TRAVELING"

	// StateActing indicates the task-specific operation is executing
	StateActing State = "ACTING"

	// StateDelivering indicates cargo is being transferred to a contract
	// destination (CONTRACT/TRANSPORT kinds only)
	StateDelivering State = "DELIVERING"

	// StateError is terminal: retries exhausted or an unrecoverable failure
	StateError State = "ERROR"
)

// Kind selects the task behavior at creation time. The set is closed;
// each kind maps to exactly one stepper.
type Kind string

const (
	KindMine      Kind = "MINE"
	KindTrade     Kind = "TRADE"
	KindTransport Kind = "TRANSPORT"
	KindContract  Kind = "CONTRACT"
)

// ValidKind reports whether k is one of the known task kinds
func ValidKind(k Kind) bool {
	switch k {
	case KindMine, KindTrade, KindTransport, KindContract:
		return true
	}
	return false
}

// CanDeliver reports whether this kind includes a delivery phase
func (k Kind) CanDeliver() bool {
	return k == KindContract || k == KindTransport
}

// validTransitions is the fixed transition table. Any state may
// additionally transition to ERROR via Fail.
var validTransitions = map[State][]State{
	StateIdle:       {StateAssigned},
	StateAssigned:   {StateTraveling, StateActing, StateDelivering},
	StateTraveling:  {StateActing, StateDelivering, StateIdle},
	StateActing:     {StateTraveling, StateActing, StateDelivering, StateIdle},
	StateDelivering: {StateTraveling, StateActing, StateIdle},
	StateError:      {},
}

func canTransition(from, to State) bool {
	if to == StateError {
		return from != StateError
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultMaxRetries bounds how many times a single action is retried
// before the task fails.
const DefaultMaxRetries = 5

// Task is the per-ship automation state machine.
//
// Invariants:
// - A ship holds at most one active task (enforced by the manager registry)
// - State changes follow the fixed transition table
// - Retries per action are bounded; exceeding the bound moves to ERROR
// - ERROR is terminal
type Task struct {
	id          string
	shipSymbol  string
	kind        Kind
	state       State
	destination string
	contractID  string
	itemSymbol  string
	retries     int
	maxRetries  int
	lastError   error
	createdAt   time.Time
	updatedAt   time.Time
	clock       shared.Clock
}

// NewTask creates a task in IDLE state for the given ship
func NewTask(shipSymbol string, kind Kind, maxRetries int, clock shared.Clock) (*Task, error) {
	if shipSymbol == "" {
		return nil, fmt.Errorf("ship symbol cannot be empty")
	}
	if !ValidKind(kind) {
		return nil, fmt.Errorf("unknown task kind: %s", kind)
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}

	now := clock.Now()
	return &Task{
		id:         uuid.New().String(),
		shipSymbol: shipSymbol,
		kind:       kind,
		state:      StateIdle,
		maxRetries: maxRetries,
		createdAt:  now,
		updatedAt:  now,
		clock:      clock,
	}, nil
}

func (t *Task) ID() string           { return t.id }
func (t *Task) ShipSymbol() string   { return t.shipSymbol }
func (t *Task) Kind() Kind           { return t.kind }
func (t *Task) State() State         { return t.state }
func (t *Task) Destination() string  { return t.destination }
func (t *Task) ContractID() string   { return t.contractID }
func (t *Task) ItemSymbol() string   { return t.itemSymbol }
func (t *Task) Retries() int         { return t.retries }
func (t *Task) MaxRetries() int      { return t.maxRetries }
func (t *Task) LastError() error     { return t.lastError }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// IsTerminal reports whether the task can make no further progress
func (t *Task) IsTerminal() bool {
	return t.state == StateError
}

// IsActive reports whether the task is bound to work
func (t *Task) IsActive() bool {
	return t.state != StateIdle && t.state != StateError
}

// Assign binds a destination waypoint (and optionally a contract and item)
// to the task, moving IDLE → ASSIGNED.
func (t *Task) Assign(destination, contractID, itemSymbol string) error {
	if t.kind == KindContract && destination == "" {
		return fmt.Errorf("task %s: contract task requires a destination", t.id)
	}
	if err := t.transition(StateAssigned); err != nil {
		return err
	}
	t.destination = destination
	t.contractID = contractID
	t.itemSymbol = itemSymbol
	return nil
}

// StartTravel moves the task into TRAVELING
func (t *Task) StartTravel() error {
	return t.transition(StateTraveling)
}

// StartActing moves the task into ACTING
func (t *Task) StartActing() error {
	return t.transition(StateActing)
}

// StartDelivery moves the task into DELIVERING. Only kinds with a
// delivery phase may enter it.
func (t *Task) StartDelivery() error {
	if !t.kind.CanDeliver() {
		return fmt.Errorf("task %s: kind %s has no delivery phase", t.id, t.kind)
	}
	return t.transition(StateDelivering)
}

// Complete releases the ship back to IDLE after successful work
func (t *Task) Complete() error {
	return t.transition(StateIdle)
}

// Fail moves the task to the terminal ERROR state
func (t *Task) Fail(err error) error {
	if t.state == StateError {
		return fmt.Errorf("task %s already failed", t.id)
	}
	t.state = StateError
	t.lastError = err
	t.updatedAt = t.clock.Now()
	return nil
}

// RecordRetry counts one retry of the current action. Returns false when
// the retry budget is exhausted; the caller must then fail the task.
func (t *Task) RecordRetry(cause error) bool {
	t.retries++
	t.lastError = cause
	t.updatedAt = t.clock.Now()
	return t.retries <= t.maxRetries
}

// ResetRetries clears the retry counter after a successful action
func (t *Task) ResetRetries() {
	t.retries = 0
}

func (t *Task) transition(to State) error {
	if !canTransition(t.state, to) {
		return fmt.Errorf("task %s: invalid transition %s -> %s", t.id, t.state, to)
	}
	t.state = to
	t.updatedAt = t.clock.Now()
	return nil
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, ship=%s, kind=%s, state=%s, retries=%d/%d)",
		t.id, t.shipSymbol, t.kind, t.state, t.retries, t.maxRetries)
}
