package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.spacetraders.io/v2"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 2
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 10
	}
	if cfg.API.Retry.MaxAttempts == 0 {
		cfg.API.Retry.MaxAttempts = 3
	}
	if cfg.API.Retry.BackoffBase == 0 {
		cfg.API.Retry.BackoffBase = 1 * time.Second
	}

	// Automation defaults
	if cfg.Automation.TickInterval == 0 {
		cfg.Automation.TickInterval = 5 * time.Second
	}
	if cfg.Automation.MaxActionRetries == 0 {
		cfg.Automation.MaxActionRetries = 5
	}
	if cfg.Automation.MaxShipsPerContract == 0 {
		cfg.Automation.MaxShipsPerContract = 3
	}
	if cfg.Automation.FuelSafetyMargin == 0 {
		cfg.Automation.FuelSafetyMargin = 4
	}
	if cfg.Automation.CargoFullThreshold == 0 {
		cfg.Automation.CargoFullThreshold = 0.9
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "fleetcore.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "fleetcore"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "fleetcore"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Notify defaults
	if cfg.Notify.Address == "" {
		cfg.Notify.Address = "localhost:8474"
	}
	if cfg.Notify.BufferSize == 0 {
		cfg.Notify.BufferSize = 64
	}
}
