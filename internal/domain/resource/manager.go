package resource

import (
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

// Requirement is an outstanding contract need for one item
type Requirement struct {
	ItemSymbol       string
	UnitsOutstanding int
}

// Classification splits a cargo manifest into essential units (still owed
// to an active contract) and surplus units (free to sell or discard).
type Classification struct {
	Essential map[string]int
	Surplus   map[string]int
}

// SurplusUnits returns the total number of disposable units
func (c Classification) SurplusUnits() int {
	total := 0
	for _, units := range c.Surplus {
		total += units
	}
	return total
}

// Classify walks the cargo manifest against outstanding requirements.
// For each item, units up to the outstanding quantity are essential; the
// remainder is surplus. Items no contract needs are entirely surplus.
func Classify(cargo *shared.Cargo, requirements []Requirement) Classification {
	outstanding := make(map[string]int, len(requirements))
	for _, req := range requirements {
		outstanding[req.ItemSymbol] += req.UnitsOutstanding
	}

	result := Classification{
		Essential: make(map[string]int),
		Surplus:   make(map[string]int),
	}

	for _, item := range cargo.Inventory {
		needed := outstanding[item.Symbol]
		essential := item.Units
		if essential > needed {
			essential = needed
		}
		if essential > 0 {
			result.Essential[item.Symbol] = essential
		}
		if surplus := item.Units - essential; surplus > 0 {
			result.Surplus[item.Symbol] = surplus
		}
	}

	return result
}

// ActionKind identifies how a disposal action frees space
type ActionKind string

const (
	// ActionSell trades the item at the local market. Requires DOCKED.
	ActionSell ActionKind = "SELL"

	// ActionJettison discards the item into space. Irreversible.
	ActionJettison ActionKind = "JETTISON"
)

// Action is one step of a disposal plan
type Action struct {
	Kind       ActionKind
	ItemSymbol string
	Units      int
}

// PlanDisposal produces the ordered actions that free at least neededSpace
// cargo units. Sellable surplus goes first; jettison is the last resort for
// surplus no market accepts. Essential units are never planned for disposal
// while any surplus unit remains.
//
// marketAccepts reports whether the local market buys an item; pass nil
// when no market is available (everything surplus becomes jettison).
func PlanDisposal(
	shipSymbol string,
	cargo *shared.Cargo,
	requirements []Requirement,
	neededSpace int,
	marketAccepts func(itemSymbol string) bool,
) ([]Action, error) {
	if neededSpace <= 0 {
		return nil, nil
	}

	classification := Classify(cargo, requirements)

	var sells, jettisons []Action
	for _, item := range cargo.Inventory {
		surplus := classification.Surplus[item.Symbol]
		if surplus <= 0 {
			continue
		}
		if marketAccepts != nil && marketAccepts(item.Symbol) {
			sells = append(sells, Action{Kind: ActionSell, ItemSymbol: item.Symbol, Units: surplus})
		} else {
			jettisons = append(jettisons, Action{Kind: ActionJettison, ItemSymbol: item.Symbol, Units: surplus})
		}
	}

	var plan []Action
	freed := 0
	for _, action := range sells {
		if freed >= neededSpace {
			break
		}
		plan = append(plan, action)
		freed += action.Units
	}
	for _, action := range jettisons {
		if freed >= neededSpace {
			break
		}
		plan = append(plan, action)
		freed += action.Units
	}

	if freed < neededSpace {
		return plan, shared.NewNoDisposableCargoError(shipSymbol, neededSpace-freed)
	}
	return plan, nil
}
