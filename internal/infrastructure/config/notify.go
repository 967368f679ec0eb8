package config

// NotifyConfig holds the status notification endpoint configuration
type NotifyConfig struct {
	// Whether the websocket status endpoint is served
	Enabled bool `mapstructure:"enabled"`

	// Listen address for the status endpoint
	Address string `mapstructure:"address"`

	// Buffered events per subscriber before slow clients are dropped
	BufferSize int `mapstructure:"buffer_size" validate:"min=1"`
}
