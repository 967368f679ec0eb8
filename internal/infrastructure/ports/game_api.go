package ports

import (
	"context"
	"time"
)

// GameAPI defines every remote game operation the automation core issues.
// Implementations live in adapters; the automation layer depends only on
// this interface so the remote server can be mocked in tests.
type GameAPI interface {
	// Ship operations
	GetShip(ctx context.Context, shipSymbol string) (*ShipSnapshot, error)
	ListShips(ctx context.Context) ([]*ShipSnapshot, error)
	Navigate(ctx context.Context, shipSymbol, destinationSymbol string) (*NavigationResult, error)
	Dock(ctx context.Context, shipSymbol string) error
	Orbit(ctx context.Context, shipSymbol string) error
	Refuel(ctx context.Context, shipSymbol string) (*RefuelResult, error)
	Extract(ctx context.Context, shipSymbol string) (*ExtractionResult, error)

	// Market operations
	Sell(ctx context.Context, shipSymbol, itemSymbol string, units int) (*TransactionResult, error)
	Purchase(ctx context.Context, shipSymbol, itemSymbol string, units int) (*TransactionResult, error)
	Jettison(ctx context.Context, shipSymbol, itemSymbol string, units int) error
	GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*MarketSnapshot, error)

	// Contract operations
	GetContract(ctx context.Context, contractID string) (*ContractSnapshot, error)
	ListContracts(ctx context.Context) ([]*ContractSnapshot, error)
	AcceptContract(ctx context.Context, contractID string) (*ContractSnapshot, error)
	DeliverContractItem(ctx context.Context, contractID, shipSymbol, itemSymbol string, units int) (*DeliveryResult, error)
	FulfillContract(ctx context.Context, contractID string) (*ContractSnapshot, error)

	// System operations
	GetWaypoints(ctx context.Context, systemSymbol string, traits ...string) ([]*WaypointSnapshot, error)
}

// ShipSnapshot is the wire-level view of a ship returned by the remote server
type ShipSnapshot struct {
	Symbol            string
	WaypointSymbol    string
	SystemSymbol      string
	NavStatus         string
	ArrivalTime       *time.Time
	CooldownExpiresAt *time.Time
	FuelCurrent       int
	FuelCapacity      int
	CargoCapacity     int
	CargoUnits        int
	Inventory         []InventoryItem
	Mounts            []string
	Role              string
}

// InventoryItem is one cargo line in a ship snapshot
type InventoryItem struct {
	Symbol string
	Units  int
}

// NavigationResult reports the outcome of a navigate call
type NavigationResult struct {
	NavStatus   string
	ArrivalTime time.Time
	FuelCurrent int
}

// RefuelResult reports fuel state and cost after refueling
type RefuelResult struct {
	FuelCurrent  int
	FuelCapacity int
	CreditsCost  int
}

// ExtractionResult reports what an extract call yielded
type ExtractionResult struct {
	ItemSymbol        string
	Units             int
	CargoUnits        int
	CooldownExpiresAt time.Time
}

// TransactionResult reports a completed market buy or sell
type TransactionResult struct {
	ItemSymbol   string
	Units        int
	PricePerUnit int
	TotalPrice   int
	CargoUnits   int
}

// DeliveryResult reports contract delivery progress after a deliver call
type DeliveryResult struct {
	ItemSymbol     string
	UnitsDelivered int
	UnitsRequired  int
}

// MarketSnapshot is the wire-level view of a marketplace
type MarketSnapshot struct {
	WaypointSymbol string
	Imports        []string
	Exports        []string
	TradeGoods     []TradeGood
}

// TradeGood is one tradeable item listed at a market
type TradeGood struct {
	Symbol        string
	SellPrice     int
	PurchasePrice int
}

// Accepts reports whether the market buys the given item
func (m *MarketSnapshot) Accepts(itemSymbol string) bool {
	for _, good := range m.TradeGoods {
		if good.Symbol == itemSymbol {
			return true
		}
	}
	for _, imp := range m.Imports {
		if imp == itemSymbol {
			return true
		}
	}
	return false
}

// ContractSnapshot is the wire-level view of a contract
type ContractSnapshot struct {
	ID         string
	Type       string
	Accepted   bool
	Fulfilled  bool
	Deadline   time.Time
	Deliveries []DeliverySnapshot
}

// DeliverySnapshot is one required delivery line on a contract
type DeliverySnapshot struct {
	ItemSymbol        string
	DestinationSymbol string
	UnitsRequired     int
	UnitsFulfilled    int
}

// WaypointSnapshot is the wire-level view of a waypoint
type WaypointSnapshot struct {
	Symbol       string
	SystemSymbol string
	Type         string
	X            float64
	Y            float64
	Traits       []string
}
