package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the media player adapter.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
	History   HistoryConfig   `yaml:"history"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Players   []PlayerConfig  `yaml:"players"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// HistoryConfig contains playback history settings.
//
// History is an append-only audit log of track and state transitions.
// It never restores live player state on restart; live state is always
// rebuilt from freshly arriving MQTT messages.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
	// RetentionDays is how long history entries are kept. 0 disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// TelemetryConfig contains InfluxDB telemetry settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// PlayerConfig defines a single media player entity and its capability map.
type PlayerConfig struct {
	// Name is the display name of the player. Required.
	Name string `yaml:"name"`

	// UniqueID identifies the player to controllers.
	// Default: "mediaplayer-" + name.
	UniqueID string `yaml:"unique_id"`

	// Capabilities maps capability names (state, title, volume, ...) to their
	// topic bindings. The per-capability schema (which sub-keys are required
	// for which capability) is validated by the player package.
	Capabilities map[string]Capability `yaml:"capabilities"`
}

// Capability is the raw YAML shape of a single capability binding.
type Capability struct {
	// StatusTopic is the topic the device reports its current value on.
	StatusTopic string `yaml:"status_topic"`

	// SetTopic is the topic commands for this capability are published to.
	SetTopic string `yaml:"set_topic"`

	// Default is the initial value before any message arrives.
	// String for most capabilities, integer for volume.
	Default any `yaml:"default"`

	// DisabledInState lists player states in which the associated command
	// is suppressed entirely.
	DisabledInState []string `yaml:"disabled_in_state"`

	// SourceList is the ordered set of selectable sources (source capability only).
	SourceList []string `yaml:"source_list"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MEDIAPLAYER_SECTION_KEY
// For example: MEDIAPLAYER_MQTT_HOST, MEDIAPLAYER_HISTORY_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "mediaplayer",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		History: HistoryConfig{
			Enabled:       false,
			Path:          "./data/mediaplayer.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MEDIAPLAYER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDIAPLAYER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MEDIAPLAYER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MEDIAPLAYER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("MEDIAPLAYER_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("MEDIAPLAYER_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Capability-level schema validation (required sub-keys per capability name)
// happens in the player package; this validates the infrastructure sections
// and the basic player shape.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid (use debug, info, warn, or error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format %q is invalid (use json or text)", c.Logging.Format))
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Bucket == "" {
			errs = append(errs, "telemetry.bucket is required when telemetry is enabled")
		}
	}

	if len(c.Players) == 0 {
		errs = append(errs, "at least one player must be configured")
	}
	names := make(map[string]bool)
	for i, p := range c.Players {
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("players[%d].name is required", i))
			continue
		}
		if names[p.Name] {
			errs = append(errs, fmt.Sprintf("players[%d].name %q is duplicate", i, p.Name))
		}
		names[p.Name] = true
		if len(p.Capabilities) == 0 {
			errs = append(errs, fmt.Sprintf("players[%d].capabilities must have at least one entry", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetUniqueID returns the player's unique ID, derived from the name if not set.
func (p PlayerConfig) GetUniqueID() string {
	if p.UniqueID != "" {
		return p.UniqueID
	}
	return "mediaplayer-" + p.Name
}
