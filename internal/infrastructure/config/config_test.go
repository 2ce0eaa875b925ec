package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalPlayers is a valid players section for config tests.
const minimalPlayers = `
players:
  - name: kitchen
    capabilities:
      state:
        status_topic: "music/kitchen/state"
        set_topic: "music/kitchen/state/set"
      title:
        status_topic: "music/kitchen/title"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
    client_id: "mediaplayer-test"
  qos: 2
logging:
  level: debug
  format: text
history:
  enabled: true
  path: "/tmp/history.db"
` + minimalPlayers

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("broker host = %q, want broker.local", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("broker port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("broker TLS should be true")
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("qos = %d, want 2", cfg.MQTT.QoS)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v, want debug/text", cfg.Logging)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/tmp/history.db" {
		t.Errorf("history = %+v", cfg.History)
	}
	if len(cfg.Players) != 1 || cfg.Players[0].Name != "kitchen" {
		t.Fatalf("players = %+v", cfg.Players)
	}
	if len(cfg.Players[0].Capabilities) != 2 {
		t.Errorf("capabilities = %d, want 2", len(cfg.Players[0].Capabilities))
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalPlayers))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("default broker host = %q, want localhost", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default broker port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("default qos = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by default")
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEDIAPLAYER_MQTT_HOST", "env-broker")
	t.Setenv("MEDIAPLAYER_MQTT_USERNAME", "env-user")
	t.Setenv("MEDIAPLAYER_MQTT_PASSWORD", "env-pass")

	cfg, err := Load(writeConfig(t, minimalPlayers))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("broker host = %q, want env-broker", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Username != "env-user" || cfg.MQTT.Auth.Password != "env-pass" {
		t.Errorf("auth = %+v", cfg.MQTT.Auth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no players",
			content: "logging:\n  level: info\n",
			wantErr: "at least one player",
		},
		{
			name: "invalid qos",
			content: `
mqtt:
  qos: 5
` + minimalPlayers,
			wantErr: "mqtt.qos",
		},
		{
			name: "invalid log level",
			content: `
logging:
  level: loud
` + minimalPlayers,
			wantErr: "logging.level",
		},
		{
			name: "player without name",
			content: `
players:
  - capabilities:
      state:
        status_topic: "a"
        set_topic: "b"
`,
			wantErr: "players[0].name",
		},
		{
			name: "duplicate player names",
			content: `
players:
  - name: kitchen
    capabilities:
      state: {status_topic: "a", set_topic: "b"}
  - name: kitchen
    capabilities:
      state: {status_topic: "c", set_topic: "d"}
`,
			wantErr: "duplicate",
		},
		{
			name: "player without capabilities",
			content: `
players:
  - name: kitchen
`,
			wantErr: "capabilities",
		},
		{
			name: "telemetry enabled without url",
			content: `
telemetry:
  enabled: true
  bucket: media
` + minimalPlayers,
			wantErr: "telemetry.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetUniqueID(t *testing.T) {
	p := PlayerConfig{Name: "kitchen"}
	if got := p.GetUniqueID(); got != "mediaplayer-kitchen" {
		t.Errorf("GetUniqueID() = %q, want mediaplayer-kitchen", got)
	}

	p.UniqueID = "custom-id"
	if got := p.GetUniqueID(); got != "custom-id" {
		t.Errorf("GetUniqueID() = %q, want custom-id", got)
	}
}
