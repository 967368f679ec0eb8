package config

import "time"

// AutomationConfig holds the fleet automation tuning knobs
type AutomationConfig struct {
	// Interval between coordination ticks
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// Maximum retries of a single action before the task fails
	MaxActionRetries int `mapstructure:"max_action_retries" validate:"min=1"`

	// Per-contract ship cap
	MaxShipsPerContract int `mapstructure:"max_ships_per_contract" validate:"min=1"`

	// Fuel units held in reserve when planning routes
	FuelSafetyMargin int `mapstructure:"fuel_safety_margin" validate:"min=0"`

	// Cargo fill ratio at which a mining ship switches to delivery
	CargoFullThreshold float64 `mapstructure:"cargo_full_threshold" validate:"gt=0,lte=1"`
}
