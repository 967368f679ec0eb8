package contract

import (
	"fmt"
	"time"
)

// ContractTypeProcurement marks contracts whose goods must be extracted
// rather than purchased.
const ContractTypeProcurement = "PROCUREMENT"

// Delivery is one required delivery line on a contract
type Delivery struct {
	ItemSymbol        string
	DestinationSymbol string
	UnitsRequired     int
	UnitsFulfilled    int
}

// Outstanding returns how many units are still owed on this line
func (d Delivery) Outstanding() int {
	remaining := d.UnitsRequired - d.UnitsFulfilled
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Contract aggregate - tracks delivery progress toward fulfillment
//
// Invariants:
// - UnitsFulfilled per item is monotonically non-decreasing and never
//   exceeds UnitsRequired
// - The contract can be fulfilled only when every line is complete
// - Fulfilled and expired contracts are terminal
type Contract struct {
	id           string
	contractType string
	deadline     time.Time
	deliveries   []Delivery
	accepted     bool
	fulfilled    bool
}

// NewContract creates a contract aggregate with validation
func NewContract(id, contractType string, deadline time.Time, deliveries []Delivery, accepted bool) (*Contract, error) {
	if id == "" {
		return nil, fmt.Errorf("contract ID cannot be empty")
	}
	if len(deliveries) == 0 {
		return nil, fmt.Errorf("contract must have at least one delivery")
	}
	for _, d := range deliveries {
		if d.UnitsFulfilled > d.UnitsRequired {
			return nil, fmt.Errorf("delivery %s: fulfilled %d exceeds required %d",
				d.ItemSymbol, d.UnitsFulfilled, d.UnitsRequired)
		}
	}

	return &Contract{
		id:           id,
		contractType: contractType,
		deadline:     deadline,
		deliveries:   deliveries,
		accepted:     accepted,
	}, nil
}

func (c *Contract) ID() string             { return c.id }
func (c *Contract) Type() string           { return c.contractType }
func (c *Contract) Deadline() time.Time    { return c.deadline }
func (c *Contract) Accepted() bool         { return c.accepted }
func (c *Contract) Fulfilled() bool        { return c.fulfilled }
func (c *Contract) Deliveries() []Delivery { return c.deliveries }

// IsProcurement reports whether goods must be mined rather than bought
func (c *Contract) IsProcurement() bool {
	return c.contractType == ContractTypeProcurement
}

// Accept marks the contract accepted
func (c *Contract) Accept() error {
	if c.fulfilled {
		return fmt.Errorf("contract %s already fulfilled", c.id)
	}
	if c.accepted {
		return fmt.Errorf("contract %s already accepted", c.id)
	}
	c.accepted = true
	return nil
}

// RecordDelivery advances the fulfilled count for an item. Progress is
// monotonic: units must be positive and may not push the line past its
// required quantity.
func (c *Contract) RecordDelivery(itemSymbol string, units int) error {
	if !c.accepted {
		return fmt.Errorf("contract %s not accepted", c.id)
	}
	if units <= 0 {
		return fmt.Errorf("delivered units must be positive, got %d", units)
	}

	for i := range c.deliveries {
		if c.deliveries[i].ItemSymbol != itemSymbol {
			continue
		}
		if c.deliveries[i].UnitsFulfilled+units > c.deliveries[i].UnitsRequired {
			return fmt.Errorf("delivery of %d %s exceeds remaining requirement %d",
				units, itemSymbol, c.deliveries[i].Outstanding())
		}
		c.deliveries[i].UnitsFulfilled += units
		return nil
	}

	return fmt.Errorf("item %s is not required by contract %s", itemSymbol, c.id)
}

// SyncDelivered reconciles progress with a server-reported fulfilled count.
// Counts only move forward; a lower server value is ignored.
func (c *Contract) SyncDelivered(itemSymbol string, unitsFulfilled int) {
	for i := range c.deliveries {
		if c.deliveries[i].ItemSymbol != itemSymbol {
			continue
		}
		if unitsFulfilled > c.deliveries[i].UnitsFulfilled &&
			unitsFulfilled <= c.deliveries[i].UnitsRequired {
			c.deliveries[i].UnitsFulfilled = unitsFulfilled
		}
		return
	}
}

// CanFulfill reports whether every delivery line is complete
func (c *Contract) CanFulfill() bool {
	for _, d := range c.deliveries {
		if d.UnitsFulfilled < d.UnitsRequired {
			return false
		}
	}
	return true
}

// Fulfill marks the contract fulfilled once all deliveries are complete
func (c *Contract) Fulfill() error {
	if !c.accepted {
		return fmt.Errorf("contract %s not accepted", c.id)
	}
	if !c.CanFulfill() {
		return fmt.Errorf("contract %s deliveries not complete", c.id)
	}
	c.fulfilled = true
	return nil
}

// IsExpired reports whether the deadline has passed
func (c *Contract) IsExpired(now time.Time) bool {
	return now.After(c.deadline)
}

// Outstanding returns still-owed units per item symbol
func (c *Contract) Outstanding() map[string]int {
	outstanding := make(map[string]int)
	for _, d := range c.deliveries {
		if remaining := d.Outstanding(); remaining > 0 {
			outstanding[d.ItemSymbol] += remaining
		}
	}
	return outstanding
}

// NextDelivery returns the first delivery line with outstanding units,
// or false when everything has been delivered.
func (c *Contract) NextDelivery() (Delivery, bool) {
	for _, d := range c.deliveries {
		if d.Outstanding() > 0 {
			return d, true
		}
	}
	return Delivery{}, false
}

// Progress returns overall fulfillment as a fraction between 0 and 1
func (c *Contract) Progress() float64 {
	totalRequired := 0
	totalFulfilled := 0
	for _, d := range c.deliveries {
		totalRequired += d.UnitsRequired
		totalFulfilled += d.UnitsFulfilled
	}
	if totalRequired == 0 {
		if c.fulfilled {
			return 1
		}
		return 0
	}
	return float64(totalFulfilled) / float64(totalRequired)
}

func (c *Contract) String() string {
	return fmt.Sprintf("Contract(%s, type=%s, accepted=%t, fulfilled=%t, progress=%.0f%%)",
		c.id, c.contractType, c.accepted, c.fulfilled, c.Progress()*100)
}
