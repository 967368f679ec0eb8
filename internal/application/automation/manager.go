package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mvaldes/fleetcore-go/internal/domain/contract"
	"github.com/mvaldes/fleetcore-go/internal/domain/navigation"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/domain/task"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/config"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// AlreadyAutomatingError is returned when automation is requested for a
// ship that already holds an active task.
type AlreadyAutomatingError struct {
	ShipSymbol string
}

func (e *AlreadyAutomatingError) Error() string {
	return fmt.Sprintf("ship %s is already automating", e.ShipSymbol)
}

// TaskStore persists task lifecycle records. Optional: a nil store
// disables persistence.
type TaskStore interface {
	Add(ctx context.Context, t *task.Task) error
	UpdateState(ctx context.Context, t *task.Task) error
}

// EventStore persists the per-task event log. Optional.
type EventStore interface {
	Append(ctx context.Context, taskID, shipSymbol, level, message string, at time.Time) error
}

// Publisher pushes state-change notifications to subscribers. Optional.
type Publisher interface {
	Publish(event string, data interface{})
}

// shipSlot is one registry entry: the ship's active task and its stepper.
// busy marks an in-flight step so at most one action per ship exists.
// release carries a pending release reason for a ship whose contract was
// resolved while its step was in flight; it is applied once the step's
// result comes back.
type shipSlot struct {
	task       *task.Task
	stepper    Stepper
	contractID string
	busy       bool
	release    string
	releaseErr error
}

// contractState tracks a contract the manager is working and the ships
// bound to it.
type contractState struct {
	aggregate *contract.Contract
	ships     map[string]bool
}

// Manager owns the ship and contract registries and drives every active
// task forward on each coordination tick. Steps run concurrently, one per
// ship, and communicate back only through StepResult messages; the
// registries are mutated exclusively by the manager.
type Manager struct {
	mu sync.Mutex

	env      *Env
	cfg      config.AutomationConfig
	clock    shared.Clock
	selector *contract.Selector

	ships     map[string]*shipSlot
	contracts map[string]*contractState

	tasks     TaskStore
	events    EventStore
	publisher Publisher
}

// NewManager creates an automation manager. Configuration is explicit:
// the manager holds no process-wide state.
func NewManager(env *Env, cfg config.AutomationConfig, tasks TaskStore, events EventStore, publisher Publisher) *Manager {
	if env.Clock == nil {
		env.Clock = shared.NewRealClock()
	}
	if env.Planner == nil {
		env.Planner = navigation.NewPlanner(cfg.FuelSafetyMargin)
	}
	env.Config = cfg

	return &Manager{
		env:       env,
		cfg:       cfg,
		clock:     env.Clock,
		selector:  contract.NewSelector(cfg.MaxShipsPerContract),
		ships:     make(map[string]*shipSlot),
		contracts: make(map[string]*contractState),
		tasks:     tasks,
		events:    events,
		publisher: publisher,
	}
}

// StartShipAutomation binds a task of the given kind to a ship. The
// destination is always supplied by the caller, except for contract-bound
// kinds where it defaults to the contract's delivery waypoint. TRANSPORT
// tasks always require a contract. Returns the task ID, or
// AlreadyAutomatingError if the ship holds an active task.
func (m *Manager) StartShipAutomation(ctx context.Context, shipSymbol string, kind task.Kind, destinationSymbol, contractID string) (string, error) {
	if kind == task.KindTransport && contractID == "" {
		return "", fmt.Errorf("transport task for ship %s requires a contract", shipSymbol)
	}

	var aggregate *contract.Contract
	var itemSymbol string
	if contractID != "" {
		snapshot, err := m.env.API.GetContract(ctx, contractID)
		if err != nil {
			return "", err
		}
		aggregate, err = contractFromSnapshot(snapshot)
		if err != nil {
			return "", err
		}
		if aggregate.IsExpired(m.clock.Now()) {
			return "", fmt.Errorf("contract %s deadline has passed", contractID)
		}
		delivery, ok := aggregate.NextDelivery()
		if !ok {
			return "", fmt.Errorf("contract %s has nothing outstanding", contractID)
		}
		itemSymbol = delivery.ItemSymbol
		if destinationSymbol == "" {
			destinationSymbol = delivery.DestinationSymbol
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	registered := false
	if contractID != "" {
		if _, ok := m.contracts[contractID]; !ok {
			m.contracts[contractID] = &contractState{
				aggregate: aggregate,
				ships:     make(map[string]bool),
			}
			registered = true
		}
	}

	taskID, err := m.startTaskLocked(ctx, shipSymbol, kind, destinationSymbol, contractID, itemSymbol)
	if err != nil {
		if registered {
			delete(m.contracts, contractID)
		}
		return "", err
	}
	if contractID != "" {
		m.contracts[contractID].ships[shipSymbol] = true
	}
	return taskID, nil
}

// startTaskLocked creates, assigns, and registers a task. Caller holds the lock.
func (m *Manager) startTaskLocked(ctx context.Context, shipSymbol string, kind task.Kind, destinationSymbol, contractID, itemSymbol string) (string, error) {
	if slot, ok := m.ships[shipSymbol]; ok && slot.task.IsActive() {
		return "", &AlreadyAutomatingError{ShipSymbol: shipSymbol}
	}

	t, err := task.NewTask(shipSymbol, kind, m.cfg.MaxActionRetries, m.clock)
	if err != nil {
		return "", err
	}
	if err := t.Assign(destinationSymbol, contractID, itemSymbol); err != nil {
		return "", err
	}

	stepper, err := stepperFor(kind)
	if err != nil {
		return "", err
	}

	m.ships[shipSymbol] = &shipSlot{
		task:       t,
		stepper:    stepper,
		contractID: contractID,
	}

	if m.tasks != nil {
		if err := m.tasks.Add(ctx, t); err != nil {
			delete(m.ships, shipSymbol)
			return "", err
		}
	}

	m.record(ctx, t, "INFO", fmt.Sprintf("task %s started (%s)", t.ID(), kind))
	m.publish("task_started", m.statusLocked(shipSymbol))
	return t.ID(), nil
}

// StartContractAutomation fetches the contract, accepts it if necessary,
// selects eligible ships, and starts one CONTRACT task per ship. Returns
// the started task IDs.
func (m *Manager) StartContractAutomation(ctx context.Context, contractID string) ([]string, error) {
	snapshot, err := m.env.API.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if snapshot.Fulfilled {
		return nil, fmt.Errorf("contract %s is already fulfilled", contractID)
	}

	aggregate, err := contractFromSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	if aggregate.IsExpired(m.clock.Now()) {
		return nil, fmt.Errorf("contract %s deadline has passed", contractID)
	}

	if !aggregate.Accepted() {
		if _, err := m.env.API.AcceptContract(ctx, contractID); err != nil {
			return nil, err
		}
		if err := aggregate.Accept(); err != nil {
			return nil, err
		}
	}

	delivery, ok := aggregate.NextDelivery()
	if !ok {
		return nil, fmt.Errorf("contract %s has nothing outstanding", contractID)
	}
	destination, err := m.env.Waypoints.Waypoint(ctx, delivery.DestinationSymbol)
	if err != nil {
		return nil, err
	}

	ships, err := m.loadFleet(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contracts[contractID]; ok {
		return nil, fmt.Errorf("contract %s is already being worked", contractID)
	}

	busy := make(map[string]bool)
	for symbol, slot := range m.ships {
		if slot.task.IsActive() {
			busy[symbol] = true
		}
	}

	selected := m.selector.Select(aggregate, ships, destination, busy)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no eligible ships for contract %s", contractID)
	}

	state := &contractState{
		aggregate: aggregate,
		ships:     make(map[string]bool),
	}

	var taskIDs []string
	for _, ship := range selected {
		taskID, err := m.startTaskLocked(ctx, ship.Symbol(), task.KindContract,
			delivery.DestinationSymbol, contractID, delivery.ItemSymbol)
		if err != nil {
			continue
		}
		state.ships[ship.Symbol()] = true
		taskIDs = append(taskIDs, taskID)
	}
	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("failed to start any task for contract %s", contractID)
	}

	m.contracts[contractID] = state
	m.publish("contract_started", m.contractStatusLocked(contractID))
	return taskIDs, nil
}

// loadFleet fetches all ships and rebuilds domain entities
func (m *Manager) loadFleet(ctx context.Context) ([]*navigation.Ship, error) {
	snapshots, err := m.env.API.ListShips(ctx)
	if err != nil {
		return nil, err
	}

	ships := make([]*navigation.Ship, 0, len(snapshots))
	for _, snapshot := range snapshots {
		location, err := m.env.Waypoints.Waypoint(ctx, snapshot.WaypointSymbol)
		if err != nil {
			return nil, err
		}
		ship, err := snapshotToShip(snapshot, location)
		if err != nil {
			return nil, err
		}
		ships = append(ships, ship)
	}
	return ships, nil
}

// StopShip destroys the ship's task and releases the ship
func (m *Manager) StopShip(ctx context.Context, shipSymbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.ships[shipSymbol]
	if !ok {
		return fmt.Errorf("ship %s is not automating", shipSymbol)
	}

	m.releaseShipLocked(ctx, shipSymbol, slot, "stopped by request")
	return nil
}

// StopContract stops every ship working the contract and drops it
func (m *Manager) StopContract(ctx context.Context, contractID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.contracts[contractID]
	if !ok {
		return fmt.Errorf("contract %s is not being worked", contractID)
	}

	for shipSymbol := range state.ships {
		if slot, ok := m.ships[shipSymbol]; ok {
			m.releaseShipLocked(ctx, shipSymbol, slot, "contract automation stopped")
		}
	}
	delete(m.contracts, contractID)
	m.publish("contract_stopped", contractID)
	return nil
}

// releaseShipLocked removes a slot from the registry and persists the
// final task state. Caller holds the lock.
func (m *Manager) releaseShipLocked(ctx context.Context, shipSymbol string, slot *shipSlot, reason string) {
	m.record(ctx, slot.task, "INFO", fmt.Sprintf("task %s released: %s", slot.task.ID(), reason))
	if m.tasks != nil {
		_ = m.tasks.UpdateState(ctx, slot.task)
	}
	delete(m.ships, shipSymbol)

	if slot.contractID != "" {
		if state, ok := m.contracts[slot.contractID]; ok {
			delete(state.ships, shipSymbol)
		}
	}
}

// Run drives the coordination loop until the context is cancelled
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick advances every non-busy active task by one step. Steps execute
// concurrently, one goroutine per ship; their results flow back over a
// channel and are applied under the registry lock. One task's failure
// never halts the tick for the others.
func (m *Manager) Tick(ctx context.Context) {
	m.reapExpiredContracts(ctx)

	type dispatch struct {
		shipSymbol string
		stepper    Stepper
		input      *StepInput
	}

	m.mu.Lock()
	var dispatches []dispatch
	for shipSymbol, slot := range m.ships {
		if slot.busy || !slot.task.IsActive() {
			continue
		}
		slot.busy = true
		dispatches = append(dispatches, dispatch{
			shipSymbol: shipSymbol,
			stepper:    slot.stepper,
			input: &StepInput{
				Task:     slot.task,
				Contract: m.contractViewLocked(slot.contractID),
			},
		})
	}
	m.mu.Unlock()

	if len(dispatches) == 0 {
		return
	}

	results := make(chan StepResult, len(dispatches))
	var wg sync.WaitGroup
	for _, d := range dispatches {
		wg.Add(1)
		go func(d dispatch) {
			defer wg.Done()
			outcome, err := d.stepper.Step(ctx, m.env, d.input)
			results <- StepResult{
				ShipSymbol: d.shipSymbol,
				TaskID:     d.input.Task.ID(),
				State:      d.input.Task.State(),
				Outcome:    outcome,
				Err:        err,
			}
		}(d)
	}
	wg.Wait()
	close(results)

	for result := range results {
		m.applyResult(ctx, result)
	}
}

// contractViewLocked builds the read-only contract snapshot handed to a
// stepper. Caller holds the lock.
func (m *Manager) contractViewLocked(contractID string) *ContractView {
	if contractID == "" {
		return nil
	}
	state, ok := m.contracts[contractID]
	if !ok {
		return nil
	}

	view := &ContractView{
		ID:          contractID,
		Outstanding: state.aggregate.Outstanding(),
		Procurement: state.aggregate.IsProcurement(),
	}
	if delivery, ok := state.aggregate.NextDelivery(); ok {
		view.ItemSymbol = delivery.ItemSymbol
		view.Destination = delivery.DestinationSymbol
	}
	return view
}

// applyResult folds one step's outcome back into the registries
func (m *Manager) applyResult(ctx context.Context, result StepResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.ships[result.ShipSymbol]
	if !ok || slot.task.ID() != result.TaskID {
		// Task was stopped while the step was in flight
		return
	}
	slot.busy = false
	t := slot.task

	if result.Outcome != nil {
		for _, event := range result.Outcome.Events {
			m.record(ctx, t, "INFO", event)
		}
		for _, report := range result.Outcome.Delivered {
			m.applyDeliveryLocked(report)
		}
		if result.Outcome.FulfillReady && slot.contractID != "" {
			m.fulfillContractLocked(ctx, slot.contractID)
		}
	}

	// The ship's contract was resolved while this step was in flight
	if slot.release != "" {
		if slot.releaseErr != nil {
			_ = t.Fail(slot.releaseErr)
			m.publish("task_error", m.statusLocked(result.ShipSymbol))
		}
		m.releaseShipLocked(ctx, result.ShipSymbol, slot, slot.release)
		return
	}

	if result.Err != nil {
		// Transient failures reschedule against the bounded retry budget;
		// only permanent errors or an exhausted budget end the task
		if ports.IsTransient(result.Err) && t.RecordRetry(result.Err) {
			m.record(ctx, t, "WARN", fmt.Sprintf("task %s: %v (retry %d/%d, suggested wait %s)",
				t.ID(), result.Err, t.Retries(), t.MaxRetries(), ports.RetryDelay(result.Err)))
			if m.tasks != nil {
				_ = m.tasks.UpdateState(ctx, t)
			}
			m.publish("task_retry", m.statusLocked(result.ShipSymbol))
			return
		}

		m.record(ctx, t, "ERROR", fmt.Sprintf("task %s: %v", t.ID(), result.Err))
		_ = t.Fail(result.Err)
		m.publish("task_error", m.statusLocked(result.ShipSymbol))
		m.releaseShipLocked(ctx, result.ShipSymbol, slot, fmt.Sprintf("unrecoverable error: %v", result.Err))
		return
	}

	if m.tasks != nil {
		_ = m.tasks.UpdateState(ctx, t)
	}
	m.publish("task_progress", m.statusLocked(result.ShipSymbol))

	if t.State() == task.StateIdle {
		m.releaseShipLocked(ctx, result.ShipSymbol, slot, "completed")
		m.publish("task_completed", result.TaskID)
	}
}

// applyDeliveryLocked reconciles server-confirmed progress into the
// contract aggregate. Progress only moves forward.
func (m *Manager) applyDeliveryLocked(report *DeliveryReport) {
	state, ok := m.contracts[report.ContractID]
	if !ok {
		return
	}
	state.aggregate.SyncDelivered(report.ItemSymbol, report.UnitsFulfilled)
	m.publish("contract_progress", m.contractStatusLocked(report.ContractID))
}

// fulfillContractLocked fulfills a contract whose deliveries are complete
// and releases any remaining ships bound to it.
func (m *Manager) fulfillContractLocked(ctx context.Context, contractID string) {
	state, ok := m.contracts[contractID]
	if !ok || !state.aggregate.CanFulfill() || state.aggregate.Fulfilled() {
		return
	}

	if _, err := m.env.API.FulfillContract(ctx, contractID); err != nil {
		m.publish("contract_error", fmt.Sprintf("contract %s: fulfill failed: %v", contractID, err))
		return
	}
	_ = state.aggregate.Fulfill()

	for shipSymbol := range state.ships {
		slot, ok := m.ships[shipSymbol]
		if !ok {
			continue
		}
		if slot.busy {
			// Released once the in-flight step reports back
			slot.release = "contract fulfilled"
			continue
		}
		m.releaseShipLocked(ctx, shipSymbol, slot, "contract fulfilled")
	}
	m.publish("contract_fulfilled", m.contractStatusLocked(contractID))
	delete(m.contracts, contractID)
}

// reapExpiredContracts fails tasks whose contract deadline has passed
func (m *Manager) reapExpiredContracts(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for contractID, state := range m.contracts {
		if !state.aggregate.IsExpired(now) {
			continue
		}

		for shipSymbol := range state.ships {
			slot, ok := m.ships[shipSymbol]
			if !ok {
				continue
			}
			if slot.busy {
				slot.release = "contract expired"
				slot.releaseErr = fmt.Errorf("contract %s deadline passed", contractID)
				continue
			}
			_ = slot.task.Fail(fmt.Errorf("contract %s deadline passed", contractID))
			m.releaseShipLocked(ctx, shipSymbol, slot, "contract expired")
		}
		delete(m.contracts, contractID)
		m.publish("contract_expired", contractID)
	}
}

// ShipStatus reports the automation state of one ship
type ShipStatus struct {
	ShipSymbol string     `json:"shipSymbol"`
	TaskID     string     `json:"taskId"`
	Kind       task.Kind  `json:"kind"`
	State      task.State `json:"state"`
	Retries    int        `json:"retries"`
	LastError  string     `json:"lastError,omitempty"`
	ContractID string     `json:"contractId,omitempty"`
}

// ContractStatus reports the progress of one worked contract
type ContractStatus struct {
	ContractID  string         `json:"contractId"`
	Accepted    bool           `json:"accepted"`
	Fulfilled   bool           `json:"fulfilled"`
	Progress    float64        `json:"progress"`
	Outstanding map[string]int `json:"outstanding"`
	Ships       []string       `json:"ships"`
}

// ShipStatusFor returns the current automation status of a ship
func (m *Manager) ShipStatusFor(shipSymbol string) (*ShipStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.statusLocked(shipSymbol)
	return status, status != nil
}

func (m *Manager) statusLocked(shipSymbol string) *ShipStatus {
	slot, ok := m.ships[shipSymbol]
	if !ok {
		return nil
	}

	status := &ShipStatus{
		ShipSymbol: shipSymbol,
		TaskID:     slot.task.ID(),
		Kind:       slot.task.Kind(),
		State:      slot.task.State(),
		Retries:    slot.task.Retries(),
		ContractID: slot.contractID,
	}
	if slot.task.LastError() != nil {
		status.LastError = slot.task.LastError().Error()
	}
	return status
}

// ContractStatusFor returns the current progress of a worked contract
func (m *Manager) ContractStatusFor(contractID string) (*ContractStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.contractStatusLocked(contractID)
	return status, status != nil
}

func (m *Manager) contractStatusLocked(contractID string) *ContractStatus {
	state, ok := m.contracts[contractID]
	if !ok {
		return nil
	}

	status := &ContractStatus{
		ContractID:  contractID,
		Accepted:    state.aggregate.Accepted(),
		Fulfilled:   state.aggregate.Fulfilled(),
		Progress:    state.aggregate.Progress(),
		Outstanding: state.aggregate.Outstanding(),
	}
	for shipSymbol := range state.ships {
		status.Ships = append(status.Ships, shipSymbol)
	}
	return status
}

// record appends to the persisted task event log
func (m *Manager) record(ctx context.Context, t *task.Task, level, message string) {
	if m.events == nil {
		return
	}
	_ = m.events.Append(ctx, t.ID(), t.ShipSymbol(), level, message, m.clock.Now())
}

// publish pushes a state-change notification if a publisher is attached
func (m *Manager) publish(event string, data interface{}) {
	if m.publisher == nil || data == nil {
		return
	}
	m.publisher.Publish(event, data)
}

// contractFromSnapshot rebuilds the contract aggregate from a wire snapshot
func contractFromSnapshot(snapshot *ports.ContractSnapshot) (*contract.Contract, error) {
	deliveries := make([]contract.Delivery, 0, len(snapshot.Deliveries))
	for _, d := range snapshot.Deliveries {
		deliveries = append(deliveries, contract.Delivery{
			ItemSymbol:        d.ItemSymbol,
			DestinationSymbol: d.DestinationSymbol,
			UnitsRequired:     d.UnitsRequired,
			UnitsFulfilled:    d.UnitsFulfilled,
		})
	}
	return contract.NewContract(snapshot.ID, snapshot.Type, snapshot.Deadline, deliveries, snapshot.Accepted)
}
