package navigation

import (
	"fmt"
	"strings"
	"time"

	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
)

// NavStatus represents ship navigation status
type NavStatus string

const (
	NavStatusDocked    NavStatus = "DOCKED"
	NavStatusInOrbit   NavStatus = "IN_ORBIT"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

var validNavStatuses = map[NavStatus]bool{
	NavStatusDocked:    true,
	NavStatusInOrbit:   true,
	NavStatusInTransit: true,
}

// Ship entity - a spacecraft snapshot with navigation state transitions
//
// Invariants:
// - Symbol must be non-empty
// - NavStatus must be one of: IN_ORBIT, DOCKED, IN_TRANSIT
// - Fuel operations respect capacity limits
// - Cargo units cannot exceed cargo capacity
//
// Navigation state machine:
// - DOCKED -> EnsureInOrbit() -> IN_ORBIT
// - IN_ORBIT -> StartTransit() -> IN_TRANSIT
// - IN_TRANSIT -> Arrive() -> IN_ORBIT
// - IN_ORBIT -> EnsureDocked() -> DOCKED
type Ship struct {
	symbol            string
	location          *shared.Waypoint
	navStatus         NavStatus
	fuel              *shared.Fuel
	cargo             *shared.Cargo
	mounts            []string
	role              string
	arrivalTime       *time.Time
	cooldownExpiresAt *time.Time
}

// NewShip creates a new Ship entity with validation
func NewShip(
	symbol string,
	location *shared.Waypoint,
	navStatus NavStatus,
	fuel *shared.Fuel,
	cargo *shared.Cargo,
	mounts []string,
	role string,
) (*Ship, error) {
	s := &Ship{
		symbol:    symbol,
		location:  location,
		navStatus: navStatus,
		fuel:      fuel,
		cargo:     cargo,
		mounts:    mounts,
		role:      role,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Ship) validate() error {
	if s.symbol == "" {
		return shared.NewInvalidShipDataError("ship symbol cannot be empty")
	}
	if s.location == nil {
		return shared.NewInvalidShipDataError("location cannot be nil")
	}
	if s.fuel == nil {
		return shared.NewInvalidShipDataError("fuel cannot be nil")
	}
	if s.cargo == nil {
		return shared.NewInvalidShipDataError("cargo cannot be nil")
	}
	if s.cargo.Units > s.cargo.Capacity {
		return shared.NewInvalidShipDataError("cargo units cannot exceed capacity")
	}
	if !validNavStatuses[s.navStatus] {
		return shared.NewInvalidShipDataError(fmt.Sprintf("invalid nav status: %s", s.navStatus))
	}
	return nil
}

// Getters

func (s *Ship) Symbol() string             { return s.symbol }
func (s *Ship) Location() *shared.Waypoint { return s.location }
func (s *Ship) NavStatus() NavStatus       { return s.navStatus }
func (s *Ship) Fuel() *shared.Fuel         { return s.fuel }
func (s *Ship) Cargo() *shared.Cargo       { return s.cargo }
func (s *Ship) Mounts() []string           { return s.mounts }
func (s *Ship) Role() string               { return s.role }

func (s *Ship) IsDocked() bool    { return s.navStatus == NavStatusDocked }
func (s *Ship) IsInOrbit() bool   { return s.navStatus == NavStatusInOrbit }
func (s *Ship) IsInTransit() bool { return s.navStatus == NavStatusInTransit }

// IsAt checks whether the ship is currently at the given waypoint
func (s *Ship) IsAt(waypoint *shared.Waypoint) bool {
	return s.location.Symbol == waypoint.Symbol
}

// CanMine reports whether the ship carries extraction equipment.
// Mining mounts carry MINING or LASER in their symbol.
func (s *Ship) CanMine() bool {
	for _, mount := range s.mounts {
		if strings.Contains(mount, "MINING") || strings.Contains(mount, "LASER") {
			return true
		}
	}
	return false
}

// Navigation status management

// EnsureInOrbit ensures the ship is in orbit.
//
// Transitions:
// - DOCKED -> IN_ORBIT
// - IN_ORBIT -> no-op
// - IN_TRANSIT -> error
//
// Returns true if the state changed, false if already in orbit.
func (s *Ship) EnsureInOrbit() (bool, error) {
	switch s.navStatus {
	case NavStatusInOrbit:
		return false, nil
	case NavStatusInTransit:
		return false, shared.NewInvalidNavStatusError("cannot orbit while in transit")
	default:
		s.navStatus = NavStatusInOrbit
		return true, nil
	}
}

// EnsureDocked ensures the ship is docked.
//
// Transitions:
// - IN_ORBIT -> DOCKED
// - DOCKED -> no-op
// - IN_TRANSIT -> error
//
// Returns true if the state changed, false if already docked.
func (s *Ship) EnsureDocked() (bool, error) {
	switch s.navStatus {
	case NavStatusDocked:
		return false, nil
	case NavStatusInTransit:
		return false, shared.NewInvalidNavStatusError("cannot dock while in transit")
	default:
		s.navStatus = NavStatusDocked
		return true, nil
	}
}

// StartTransit begins transit toward a destination. The ship must be in
// orbit and the destination must differ from the current location.
func (s *Ship) StartTransit(destination *shared.Waypoint) error {
	if s.navStatus != NavStatusInOrbit {
		return shared.NewInvalidNavStatusError(fmt.Sprintf(
			"ship must be in orbit to start transit, currently: %s", s.navStatus))
	}
	if s.location.Symbol == destination.Symbol {
		return fmt.Errorf("cannot transit to current location %s", destination.Symbol)
	}
	s.navStatus = NavStatusInTransit
	s.location = destination
	return nil
}

// Arrive transitions from in-transit to orbit
func (s *Ship) Arrive() error {
	if s.navStatus != NavStatusInTransit {
		return shared.NewInvalidNavStatusError(fmt.Sprintf(
			"ship must be in transit to arrive, currently: %s", s.navStatus))
	}
	s.navStatus = NavStatusInOrbit
	s.arrivalTime = nil
	return nil
}

// Fuel management

// ConsumeFuel consumes fuel from the ship's tanks
func (s *Ship) ConsumeFuel(amount int) error {
	if amount < 0 {
		return fmt.Errorf("fuel amount cannot be negative")
	}
	if s.fuel.Current < amount {
		return shared.NewInsufficientFuelError(amount, s.fuel.Current)
	}
	newFuel, err := s.fuel.Consume(amount)
	if err != nil {
		return err
	}
	s.fuel = newFuel
	return nil
}

// SetFuel replaces the fuel state from a server response
func (s *Ship) SetFuel(current, capacity int) {
	if fuel, err := shared.NewFuel(current, capacity); err == nil {
		s.fuel = fuel
	}
}

// Cargo management

// ReceiveCargo adds units of an item to the hold
func (s *Ship) ReceiveCargo(symbol string, units int) error {
	cargo, err := s.cargo.WithItem(symbol, units)
	if err != nil {
		return err
	}
	s.cargo = cargo
	return nil
}

// RemoveCargo removes units of an item from the hold
func (s *Ship) RemoveCargo(symbol string, units int) error {
	cargo, err := s.cargo.WithoutItem(symbol, units)
	if err != nil {
		return err
	}
	s.cargo = cargo
	return nil
}

// Cooldown and transit timing

// ArrivalTime returns when an in-transit ship arrives, nil otherwise
func (s *Ship) ArrivalTime() *time.Time { return s.arrivalTime }

// SetArrivalTime records when the ship will arrive
func (s *Ship) SetArrivalTime(t time.Time) { s.arrivalTime = &t }

// CooldownExpiresAt returns when the action cooldown ends, nil if none
func (s *Ship) CooldownExpiresAt() *time.Time { return s.cooldownExpiresAt }

// SetCooldown records the cooldown expiry reported by the server
func (s *Ship) SetCooldown(t time.Time) { s.cooldownExpiresAt = &t }

// OnCooldown reports whether the ship may not act yet at the given time
func (s *Ship) OnCooldown(now time.Time) bool {
	return s.cooldownExpiresAt != nil && now.Before(*s.cooldownExpiresAt)
}

// CooldownRemaining returns how long until the ship may act again
func (s *Ship) CooldownRemaining(now time.Time) time.Duration {
	if s.cooldownExpiresAt == nil {
		return 0
	}
	remaining := s.cooldownExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetNavStatus sets the navigation status directly.
// Used when refreshing from a server snapshot.
func (s *Ship) SetNavStatus(status NavStatus) {
	s.navStatus = status
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship(symbol=%s, location=%s, status=%s, fuel=%s, cargo=%s)",
		s.symbol, s.location.Symbol, s.navStatus, s.fuel, s.cargo)
}
