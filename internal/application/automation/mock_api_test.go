package automation_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/ports"
)

// mockAPI simulates the remote game server with just enough state to
// drive the steppers end to end: nav calls flip the ship's status, travel
// completes once the mock clock passes the arrival time, and extraction
// yields into the ship's hold.
type mockAPI struct {
	mu sync.Mutex

	clock      *shared.MockClock
	travelTime time.Duration

	ships     map[string]*ports.ShipSnapshot
	contracts map[string]*ports.ContractSnapshot
	market    *ports.MarketSnapshot

	extractItem  string
	extractUnits int
	extractErr   error
	cooldown     time.Duration

	calls []string
}

func newMockAPI(clock *shared.MockClock) *mockAPI {
	return &mockAPI{
		clock:        clock,
		travelTime:   time.Minute,
		ships:        make(map[string]*ports.ShipSnapshot),
		contracts:    make(map[string]*ports.ContractSnapshot),
		extractItem:  "IRON_ORE",
		extractUnits: 5,
	}
}

func (m *mockAPI) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockAPI) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call == name {
			count++
		}
	}
	return count
}

func (m *mockAPI) addShip(snapshot *ports.ShipSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ships[snapshot.Symbol] = snapshot
}

func (m *mockAPI) addContract(snapshot *ports.ContractSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[snapshot.ID] = snapshot
}

func (m *mockAPI) ship(symbol string) (*ports.ShipSnapshot, error) {
	snapshot, ok := m.ships[symbol]
	if !ok {
		return nil, &ports.NotFoundError{Resource: "ship", Symbol: symbol}
	}
	// The real server flips IN_TRANSIT to IN_ORBIT once the route completes
	if snapshot.NavStatus == "IN_TRANSIT" && snapshot.ArrivalTime != nil &&
		!m.clock.Now().Before(*snapshot.ArrivalTime) {
		snapshot.NavStatus = "IN_ORBIT"
		snapshot.ArrivalTime = nil
	}
	return snapshot, nil
}

func (m *mockAPI) GetShip(_ context.Context, shipSymbol string) (*ports.ShipSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetShip")
	return m.ship(shipSymbol)
}

func (m *mockAPI) ListShips(_ context.Context) ([]*ports.ShipSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListShips")
	var snapshots []*ports.ShipSnapshot
	for symbol := range m.ships {
		snapshot, err := m.ship(symbol)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (m *mockAPI) Navigate(_ context.Context, shipSymbol, destinationSymbol string) (*ports.NavigationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Navigate")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if snapshot.NavStatus != "IN_ORBIT" {
		return nil, &ports.InvalidStateError{Reason: fmt.Sprintf("ship %s must be in orbit to navigate, is %s", shipSymbol, snapshot.NavStatus)}
	}
	arrival := m.clock.Now().Add(m.travelTime)
	snapshot.NavStatus = "IN_TRANSIT"
	snapshot.WaypointSymbol = destinationSymbol
	snapshot.ArrivalTime = &arrival
	return &ports.NavigationResult{
		NavStatus:   "IN_TRANSIT",
		ArrivalTime: arrival,
		FuelCurrent: snapshot.FuelCurrent,
	}, nil
}

func (m *mockAPI) Orbit(_ context.Context, shipSymbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Orbit")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return err
	}
	if snapshot.NavStatus == "IN_TRANSIT" {
		return &ports.InvalidStateError{Reason: "cannot orbit while in transit"}
	}
	snapshot.NavStatus = "IN_ORBIT"
	return nil
}

func (m *mockAPI) Dock(_ context.Context, shipSymbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Dock")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return err
	}
	if snapshot.NavStatus == "IN_TRANSIT" {
		return &ports.InvalidStateError{Reason: "cannot dock while in transit"}
	}
	snapshot.NavStatus = "DOCKED"
	return nil
}

func (m *mockAPI) Refuel(_ context.Context, shipSymbol string) (*ports.RefuelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Refuel")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	snapshot.FuelCurrent = snapshot.FuelCapacity
	return &ports.RefuelResult{
		FuelCurrent:  snapshot.FuelCurrent,
		FuelCapacity: snapshot.FuelCapacity,
		CreditsCost:  100,
	}, nil
}

func (m *mockAPI) Extract(_ context.Context, shipSymbol string) (*ports.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Extract")
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}

	units := m.extractUnits
	if available := snapshot.CargoCapacity - snapshot.CargoUnits; units > available {
		units = available
	}
	m.addInventory(snapshot, m.extractItem, units)

	result := &ports.ExtractionResult{
		ItemSymbol: m.extractItem,
		Units:      units,
		CargoUnits: snapshot.CargoUnits,
	}
	if m.cooldown > 0 {
		expiry := m.clock.Now().Add(m.cooldown)
		snapshot.CooldownExpiresAt = &expiry
		result.CooldownExpiresAt = expiry
	}
	return result, nil
}

func (m *mockAPI) addInventory(snapshot *ports.ShipSnapshot, itemSymbol string, units int) {
	for i := range snapshot.Inventory {
		if snapshot.Inventory[i].Symbol == itemSymbol {
			snapshot.Inventory[i].Units += units
			snapshot.CargoUnits += units
			return
		}
	}
	snapshot.Inventory = append(snapshot.Inventory, ports.InventoryItem{Symbol: itemSymbol, Units: units})
	snapshot.CargoUnits += units
}

func (m *mockAPI) removeInventory(snapshot *ports.ShipSnapshot, itemSymbol string, units int) error {
	for i := range snapshot.Inventory {
		if snapshot.Inventory[i].Symbol != itemSymbol {
			continue
		}
		if snapshot.Inventory[i].Units < units {
			return &ports.InvalidStateError{Reason: fmt.Sprintf("ship holds %d %s, cannot remove %d", snapshot.Inventory[i].Units, itemSymbol, units)}
		}
		snapshot.Inventory[i].Units -= units
		snapshot.CargoUnits -= units
		if snapshot.Inventory[i].Units == 0 {
			snapshot.Inventory = append(snapshot.Inventory[:i], snapshot.Inventory[i+1:]...)
		}
		return nil
	}
	return &ports.InvalidStateError{Reason: fmt.Sprintf("ship holds no %s", itemSymbol)}
}

func (m *mockAPI) Sell(_ context.Context, shipSymbol, itemSymbol string, units int) (*ports.TransactionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Sell")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if err := m.removeInventory(snapshot, itemSymbol, units); err != nil {
		return nil, err
	}
	return &ports.TransactionResult{
		ItemSymbol:   itemSymbol,
		Units:        units,
		PricePerUnit: 10,
		TotalPrice:   10 * units,
		CargoUnits:   snapshot.CargoUnits,
	}, nil
}

func (m *mockAPI) Purchase(_ context.Context, shipSymbol, itemSymbol string, units int) (*ports.TransactionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Purchase")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	m.addInventory(snapshot, itemSymbol, units)
	return &ports.TransactionResult{
		ItemSymbol:   itemSymbol,
		Units:        units,
		PricePerUnit: 25,
		TotalPrice:   25 * units,
		CargoUnits:   snapshot.CargoUnits,
	}, nil
}

func (m *mockAPI) Jettison(_ context.Context, shipSymbol, itemSymbol string, units int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Jettison")
	snapshot, err := m.ship(shipSymbol)
	if err != nil {
		return err
	}
	return m.removeInventory(snapshot, itemSymbol, units)
}

func (m *mockAPI) GetMarket(_ context.Context, _, waypointSymbol string) (*ports.MarketSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetMarket")
	if m.market != nil {
		return m.market, nil
	}
	return &ports.MarketSnapshot{
		WaypointSymbol: waypointSymbol,
		TradeGoods:     []ports.TradeGood{{Symbol: "IRON_ORE", SellPrice: 10}},
	}, nil
}

func (m *mockAPI) GetContract(_ context.Context, contractID string) (*ports.ContractSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetContract")
	snapshot, ok := m.contracts[contractID]
	if !ok {
		return nil, &ports.NotFoundError{Resource: "contract", Symbol: contractID}
	}
	return snapshot, nil
}

func (m *mockAPI) ListContracts(_ context.Context) ([]*ports.ContractSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListContracts")
	var snapshots []*ports.ContractSnapshot
	for _, snapshot := range m.contracts {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (m *mockAPI) AcceptContract(_ context.Context, contractID string) (*ports.ContractSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("AcceptContract")
	snapshot, ok := m.contracts[contractID]
	if !ok {
		return nil, &ports.NotFoundError{Resource: "contract", Symbol: contractID}
	}
	snapshot.Accepted = true
	return snapshot, nil
}

func (m *mockAPI) DeliverContractItem(_ context.Context, contractID, shipSymbol, itemSymbol string, units int) (*ports.DeliveryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeliverContractItem")
	snapshot, ok := m.contracts[contractID]
	if !ok {
		return nil, &ports.NotFoundError{Resource: "contract", Symbol: contractID}
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}

	for i := range snapshot.Deliveries {
		if snapshot.Deliveries[i].ItemSymbol != itemSymbol {
			continue
		}
		if err := m.removeInventory(ship, itemSymbol, units); err != nil {
			return nil, err
		}
		snapshot.Deliveries[i].UnitsFulfilled += units
		return &ports.DeliveryResult{
			ItemSymbol:     itemSymbol,
			UnitsDelivered: snapshot.Deliveries[i].UnitsFulfilled,
			UnitsRequired:  snapshot.Deliveries[i].UnitsRequired,
		}, nil
	}
	return nil, &ports.InvalidStateError{Reason: fmt.Sprintf("contract %s does not require %s", contractID, itemSymbol)}
}

func (m *mockAPI) FulfillContract(_ context.Context, contractID string) (*ports.ContractSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("FulfillContract")
	snapshot, ok := m.contracts[contractID]
	if !ok {
		return nil, &ports.NotFoundError{Resource: "contract", Symbol: contractID}
	}
	snapshot.Fulfilled = true
	return snapshot, nil
}

func (m *mockAPI) GetWaypoints(_ context.Context, _ string, _ ...string) ([]*ports.WaypointSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetWaypoints")
	return nil, nil
}
