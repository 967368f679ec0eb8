package shared

import (
	"fmt"
	"math"
)

// Well-known waypoint traits used by the automation core.
const (
	TraitMarketplace = "MARKETPLACE"
	TraitShipyard    = "SHIPYARD"
	TraitFuelStation = "FUEL_STATION"
)

// resourceTraits mark waypoints where extraction is possible.
var resourceTraits = map[string]bool{
	"MINERAL_DEPOSITS":        true,
	"COMMON_METAL_DEPOSITS":   true,
	"PRECIOUS_METAL_DEPOSITS": true,
	"RARE_METAL_DEPOSITS":     true,
}

// Waypoint represents an immutable location in space
type Waypoint struct {
	Symbol       string   `json:"symbol"`
	SystemSymbol string   `json:"systemSymbol"`
	Type         string   `json:"type"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Traits       []string `json:"traits,omitempty"`
}

// NewWaypoint creates a new waypoint with validation
func NewWaypoint(symbol string, x, y float64, traits ...string) (*Waypoint, error) {
	if symbol == "" {
		return nil, NewValidationError("symbol", "cannot be empty")
	}

	return &Waypoint{
		Symbol:       symbol,
		SystemSymbol: ExtractSystemSymbol(symbol),
		X:            x,
		Y:            y,
		Traits:       traits,
	}, nil
}

// DistanceTo calculates Euclidean distance to another waypoint
func (w *Waypoint) DistanceTo(other *Waypoint) float64 {
	dx := other.X - w.X
	dy := other.Y - w.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HasTrait checks whether the waypoint carries a specific trait
func (w *Waypoint) HasTrait(trait string) bool {
	for _, t := range w.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// HasMarketplace checks whether goods can be bought or sold here
func (w *Waypoint) HasMarketplace() bool {
	return w.HasTrait(TraitMarketplace)
}

// HasShipyard checks whether ships can be purchased or repaired here
func (w *Waypoint) HasShipyard() bool {
	return w.HasTrait(TraitShipyard)
}

// IsResourceSite checks whether the waypoint bears extractable deposits
func (w *Waypoint) IsResourceSite() bool {
	for _, t := range w.Traits {
		if resourceTraits[t] {
			return true
		}
	}
	return false
}

// SellsFuel checks whether a ship can refuel at this waypoint.
// Fuel stations always sell fuel; marketplaces are assumed to as well,
// which matches how the fallback refuel search treats them.
func (w *Waypoint) SellsFuel() bool {
	return w.HasTrait(TraitFuelStation) || w.HasMarketplace()
}

// NearestWaypoint returns the closest waypoint from candidates and its
// distance. Returns nil and 0 if candidates is empty.
func NearestWaypoint(from *Waypoint, candidates []*Waypoint) (*Waypoint, float64) {
	if len(candidates) == 0 {
		return nil, 0
	}

	nearest := candidates[0]
	minDistance := from.DistanceTo(candidates[0])

	for _, candidate := range candidates[1:] {
		distance := from.DistanceTo(candidate)
		if distance < minDistance {
			minDistance = distance
			nearest = candidate
		}
	}

	return nearest, minDistance
}

func (w *Waypoint) String() string {
	return fmt.Sprintf("Waypoint(%s)", w.Symbol)
}

// ExtractSystemSymbol extracts the system symbol from a waypoint symbol
// by finding the last hyphen and returning everything before it.
// Example: "X1-AB12-C3D4" -> "X1-AB12"
func ExtractSystemSymbol(waypointSymbol string) string {
	systemSymbol := waypointSymbol
	for i := len(waypointSymbol) - 1; i >= 0; i-- {
		if waypointSymbol[i] == '-' {
			systemSymbol = waypointSymbol[:i]
			break
		}
	}
	return systemSymbol
}
