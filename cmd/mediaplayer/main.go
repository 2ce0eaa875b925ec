// MQTT Media Player Adapter
//
// Exposes remote media-playback devices (TVs, receivers, streaming boxes)
// as controllable entities over MQTT. Each player is described by a
// declarative capability map in the configuration: status topics the device
// reports on, set topics commands are published to. The adapter keeps an
// in-memory snapshot per player and never persists live state; everything
// is rebuilt from arriving messages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/mqtt-mediaplayer/internal/history"
	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/database"
	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/influxdb"
	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/logging"
	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/mqtt"
	"github.com/nerrad567/mqtt-mediaplayer/internal/player"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pruneInterval is how often expired history entries are deleted.
const pruneInterval = 24 * time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting mqtt-mediaplayer",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "players", len(cfg.Players))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Playback history (optional)
	var store *history.Store
	if cfg.History.Enabled {
		db, openErr := database.Open(ctx, database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if openErr != nil {
			return fmt.Errorf("opening history database: %w", openErr)
		}
		defer func() {
			log.Info("closing history database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		store, err = history.NewStore(ctx, db.DB)
		if err != nil {
			return fmt.Errorf("initialising history store: %w", err)
		}
		log.Info("history enabled", "path", cfg.History.Path)

		if cfg.History.RetentionDays > 0 {
			retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			go pruneLoop(ctx, store, retention, log)
		}
	} else {
		log.Info("history disabled")
	}

	// Telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.Telemetry.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("telemetry enabled", "url", cfg.Telemetry.URL, "bucket", cfg.Telemetry.Bucket)
	} else {
		log.Info("telemetry disabled")
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Build and start players
	if err := startPlayers(ctx, cfg, mqttClient, store, influxClient, log); err != nil {
		return err
	}

	if err := healthCheck(ctx, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// startPlayers constructs every configured player and subscribes it to the bus.
func startPlayers(ctx context.Context, cfg *config.Config, mqttClient *mqtt.Client, store *history.Store, influxClient *influxdb.Client, log *logging.Logger) error {
	bus := &playerBusAdapter{client: mqttClient}
	qos := byte(cfg.MQTT.QoS)

	for _, pc := range cfg.Players {
		opts := player.Options{
			Config: pc,
			MQTT:   bus,
			QoS:    qos,
			Logger: log.With("player", pc.Name),
		}
		// Interface values must stay nil when the concrete pointer is nil.
		if store != nil {
			opts.Recorder = store
		}
		if influxClient != nil {
			opts.Telemetry = influxClient
		}

		p, err := player.New(opts)
		if err != nil {
			return fmt.Errorf("building player: %w", err)
		}
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("starting player %q: %w", p.Name(), err)
		}
		log.Info("player started", "name", p.Name(), "unique_id", p.UniqueID(), "features", p.Features())
	}
	return nil
}

// pruneLoop periodically deletes history entries past the retention window.
func pruneLoop(ctx context.Context, store *history.Store, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		deleted, err := store.Prune(ctx, retention)
		if err != nil {
			log.Warn("pruning history", "error", err)
		} else if deleted > 0 {
			log.Info("pruned history", "deleted", deleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses MEDIAPLAYER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MEDIAPLAYER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections are healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}

// playerBusAdapter adapts *mqtt.Client to the player package's bus
// interface: the wrapper's handlers return errors for its retry logging,
// the player's handlers do their own error handling and return nothing.
type playerBusAdapter struct {
	client *mqtt.Client
}

func (a *playerBusAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

func (a *playerBusAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, qos, func(topic string, payload []byte) error {
		handler(topic, payload)
		return nil
	})
}

func (a *playerBusAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
