package shared

import "fmt"

// CargoItem represents an individual cargo item in a ship's hold
type CargoItem struct {
	Symbol string
	Units  int
}

// NewCargoItem creates a new cargo item with validation
func NewCargoItem(symbol string, units int) (*CargoItem, error) {
	if symbol == "" {
		return nil, fmt.Errorf("cargo symbol cannot be empty")
	}
	if units < 0 {
		return nil, fmt.Errorf("cargo units cannot be negative")
	}

	return &CargoItem{
		Symbol: symbol,
		Units:  units,
	}, nil
}

// Cargo represents a ship cargo manifest with detailed inventory
type Cargo struct {
	Capacity  int
	Units     int
	Inventory []*CargoItem
}

// NewCargo creates a new cargo manifest with validation
func NewCargo(capacity, units int, inventory []*CargoItem) (*Cargo, error) {
	if units < 0 {
		return nil, fmt.Errorf("cargo units cannot be negative")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("cargo capacity cannot be negative")
	}
	if units > capacity {
		return nil, fmt.Errorf("cargo units %d exceed capacity %d", units, capacity)
	}

	inventorySum := 0
	for _, item := range inventory {
		inventorySum += item.Units
	}
	if inventorySum != units {
		return nil, fmt.Errorf("inventory sum %d != total units %d", inventorySum, units)
	}

	return &Cargo{
		Capacity:  capacity,
		Units:     units,
		Inventory: inventory,
	}, nil
}

// EmptyCargo creates an empty cargo manifest with the given capacity
func EmptyCargo(capacity int) *Cargo {
	return &Cargo{Capacity: capacity}
}

// HasItem checks if cargo contains at least minUnits of a specific item
func (c *Cargo) HasItem(symbol string, minUnits int) bool {
	return c.ItemUnits(symbol) >= minUnits
}

// ItemUnits returns units of a specific good in cargo (0 if not present)
func (c *Cargo) ItemUnits(symbol string) int {
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			return item.Units
		}
	}
	return 0
}

// WithItem returns a new Cargo with units of symbol added.
// Fails if the resulting total would exceed capacity.
func (c *Cargo) WithItem(symbol string, units int) (*Cargo, error) {
	if units <= 0 {
		return c, nil
	}
	if c.Units+units > c.Capacity {
		return nil, fmt.Errorf("insufficient cargo space: need %d, have %d available",
			units, c.AvailableCapacity())
	}

	inventory := make([]*CargoItem, 0, len(c.Inventory)+1)
	merged := false
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			inventory = append(inventory, &CargoItem{Symbol: symbol, Units: item.Units + units})
			merged = true
		} else {
			inventory = append(inventory, item)
		}
	}
	if !merged {
		inventory = append(inventory, &CargoItem{Symbol: symbol, Units: units})
	}

	return NewCargo(c.Capacity, c.Units+units, inventory)
}

// WithoutItem returns a new Cargo with units of symbol removed.
// Fails if the cargo holds fewer units than requested.
func (c *Cargo) WithoutItem(symbol string, units int) (*Cargo, error) {
	if units <= 0 {
		return c, nil
	}
	held := c.ItemUnits(symbol)
	if held < units {
		return nil, fmt.Errorf("insufficient cargo: have %d units of %s, need %d",
			held, symbol, units)
	}

	inventory := make([]*CargoItem, 0, len(c.Inventory))
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			if remaining := item.Units - units; remaining > 0 {
				inventory = append(inventory, &CargoItem{Symbol: symbol, Units: remaining})
			}
		} else {
			inventory = append(inventory, item)
		}
	}

	return NewCargo(c.Capacity, c.Units-units, inventory)
}

// AvailableCapacity calculates available cargo space
func (c *Cargo) AvailableCapacity() int {
	return c.Capacity - c.Units
}

// IsEmpty checks if the cargo hold is empty
func (c *Cargo) IsEmpty() bool {
	return c.Units == 0
}

// IsFull checks if the cargo hold is full
func (c *Cargo) IsFull() bool {
	return c.Units >= c.Capacity
}

// FillRatio returns how full the hold is as a fraction between 0 and 1
func (c *Cargo) FillRatio() float64 {
	if c.Capacity == 0 {
		return 0
	}
	return float64(c.Units) / float64(c.Capacity)
}

func (c *Cargo) String() string {
	return fmt.Sprintf("Cargo(%d/%d)", c.Units, c.Capacity)
}
