package contract

import (
	"sort"

	"github.com/mvaldes/fleetcore-go/internal/domain/navigation"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

// DefaultMaxShipsPerContract caps how many ships a single contract may
// occupy at once.
const DefaultMaxShipsPerContract = 3

// Selector picks ships for contract work. Procurement contracts need ships
// that can mine; other contracts accept any ship with cargo capacity.
type Selector struct {
	maxShips int
}

// NewSelector creates a selector with the given per-contract ship cap.
// Non-positive caps fall back to the default.
func NewSelector(maxShips int) *Selector {
	if maxShips <= 0 {
		maxShips = DefaultMaxShipsPerContract
	}
	return &Selector{maxShips: maxShips}
}

func (s *Selector) MaxShips() int { return s.maxShips }

// Eligible reports whether a ship can work the given contract
func (s *Selector) Eligible(ship *navigation.Ship, c *Contract) bool {
	if ship.Cargo().Capacity == 0 {
		return false
	}
	if c.IsProcurement() && !ship.CanMine() {
		return false
	}
	return true
}

// Select picks up to the cap of eligible ships, nearest to the
// destination first. Ships already assigned elsewhere are excluded by
// passing them in the busy set.
func (s *Selector) Select(c *Contract, ships []*navigation.Ship, destination *shared.Waypoint, busy map[string]bool) []*navigation.Ship {
	var candidates []*navigation.Ship
	for _, ship := range ships {
		if busy[ship.Symbol()] {
			continue
		}
		if !s.Eligible(ship, c) {
			continue
		}
		candidates = append(candidates, ship)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di := candidates[i].Location().DistanceTo(destination)
		dj := candidates[j].Location().DistanceTo(destination)
		return di < dj
	})

	if len(candidates) > s.maxShips {
		candidates = candidates[:s.maxShips]
	}
	return candidates
}
