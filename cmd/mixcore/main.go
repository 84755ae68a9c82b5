// mixcore - Mixing Console Control Service
//
// This is the main entry point for the mixcore service. mixcore exposes a
// digital mixing console's OSC control surface as a catalog-driven HTTP API,
// WebSocket stream, and MQTT bus, designed for:
//   - Show-control integration without speaking raw OSC
//   - Safe remote operation (dangerous controls gated behind confirmation)
//   - Meter telemetry capture into time-series storage
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wrenshall/mixcore/internal/api"
	"github.com/wrenshall/mixcore/internal/catalog"
	"github.com/wrenshall/mixcore/internal/console"
	"github.com/wrenshall/mixcore/internal/infrastructure/config"
	"github.com/wrenshall/mixcore/internal/infrastructure/influxdb"
	"github.com/wrenshall/mixcore/internal/infrastructure/logging"
	"github.com/wrenshall/mixcore/internal/infrastructure/mqtt"
	"github.com/wrenshall/mixcore/internal/relay"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting mixcore",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Load the endpoint catalog. The tables are static; failure here is fatal
	// because nothing downstream can validate an endpoint without them.
	cat, err := catalog.Load(cfg.Catalog.EndpointsFile, cfg.Catalog.FXEndpointsFile)
	if err != nil {
		return fmt.Errorf("loading endpoint catalog: %w", err)
	}
	log.Info("endpoint catalog loaded",
		"groups", cat.GroupCount(),
		"endpoints", cat.EndpointCount(),
	)

	// Create the console client (disconnected until asked)
	client := console.New(cat)
	client.SetLogger(log.With("component", "console"))

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the MQTT relay (requires MQTT)
	var consoleRelay *relay.Relay
	if mqttClient != nil {
		consoleRelay = relay.New(mqttClient, client, relay.Config{
			QoS:    byte(cfg.MQTT.QoS),
			Logger: log.With("component", "relay"),
		})
		if startErr := consoleRelay.Start(); startErr != nil {
			return fmt.Errorf("starting relay: %w", startErr)
		}
		defer func() {
			log.Info("stopping relay")
			if stopErr := consoleRelay.Stop(); stopErr != nil {
				log.Error("error stopping relay", "error", stopErr)
			}
		}()
		log.Info("MQTT relay started")
	}

	// Create the WebSocket hub up front so console messages can be broadcast
	// regardless of when the API server finishes starting.
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	go hub.Run(ctx)

	// Fan every inbound console message out to the WebSocket hub, the MQTT
	// relay, and (for meters) InfluxDB.
	client.SetOnMessage(consoleFanout(hub, consoleRelay, influxClient, cat))

	// Announce session state changes on the WebSocket stream and the retained
	// MQTT status topic.
	client.SetOnStatusChange(func(connected bool) {
		hub.Broadcast(api.ChannelConsoleStatus, client.Stats())
		if consoleRelay != nil {
			consoleRelay.PublishStatus(connected)
		}
	})

	// Record session traffic counters periodically while connected
	if influxClient != nil {
		go recordSessionStats(ctx, influxClient, client)
	}

	// Establish the console session at startup when configured
	if cfg.Console.AutoConnect && cfg.Console.Host != "" {
		connErr := client.Connect(console.ConnectionConfig{
			Host:       cfg.Console.Host,
			SendPort:   cfg.Console.SendPort,
			ListenPort: cfg.Console.ListenPort,
		})
		if connErr != nil {
			// The console may simply be powered off; the API can connect later.
			log.Warn("console auto-connect failed", "host", cfg.Console.Host, "error", connErr)
		} else {
			log.Info("console session established",
				"host", cfg.Console.Host,
				"send_port", cfg.Console.SendPort,
				"listen_port", cfg.Console.ListenPort,
			)
		}
	}
	defer func() {
		log.Info("closing console session")
		if closeErr := client.Disconnect(); closeErr != nil {
			log.Error("error closing console session", "error", closeErr)
		}
	}()

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Console:     cfg.Console,
		Logger:      log.With("component", "api"),
		Catalog:     cat,
		Client:      client,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, apiServer, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Console session
	// 3. Relay, InfluxDB, MQTT (as enabled)

	log.Info("mixcore stopped")
	return nil
}

// consoleFanout builds the OnMessage callback distributing inbound console
// messages to every consumer. Nil consumers are skipped.
func consoleFanout(hub *api.Hub, consoleRelay *relay.Relay, influxClient *influxdb.Client, cat *catalog.Catalog) func(console.Message) {
	return func(msg console.Message) {
		hub.Broadcast(api.ChannelConsoleMessage, msg)

		if consoleRelay != nil {
			consoleRelay.HandleMessage(msg)
		}

		if influxClient != nil {
			writeMeterTelemetry(influxClient, cat, msg)
		}
	}
}

// writeMeterTelemetry records meter messages in InfluxDB. Non-meter traffic
// and messages without a numeric first argument are ignored.
func writeMeterTelemetry(influxClient *influxdb.Client, cat *catalog.Catalog, msg console.Message) {
	group, endpoint, ok := splitAddress(msg.Address)
	if !ok {
		return
	}

	spec, err := cat.GetEndpoint(group, endpoint)
	if err != nil || spec.Kind() != catalog.KindMeter {
		return
	}
	if len(msg.Arguments) == 0 {
		return
	}

	var level float64
	switch v := msg.Arguments[0].(type) {
	case float32:
		level = float64(v)
	case float64:
		level = v
	case int32:
		level = float64(v)
	default:
		return
	}

	influxClient.WriteMeterLevel(group, endpoint, msg.Address, level)
}

// recordSessionStats writes the session traffic counters to InfluxDB on a
// fixed interval. Nothing is written while no session is active.
func recordSessionStats(ctx context.Context, influxClient *influxdb.Client, client *console.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := client.Stats()
			if !stats.Connected {
				continue
			}
			influxClient.WriteSessionStats(stats.Host, stats.MessagesTx, stats.MessagesRx)
		}
	}
}

// splitAddress extracts the group and endpoint segments from a console
// address (/{type}/{group}/{endpoint}[/{index}]).
func splitAddress(address string) (group, endpoint string, ok bool) {
	if !strings.HasPrefix(address, "/") {
		return "", "", false
	}
	parts := strings.Split(address[1:], "/")
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// getConfigPath returns the configuration file path.
// Uses MIXCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MIXCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// The console session is deliberately excluded: mixcore is useful while the
// console is offline (catalog queries, deferred connect), so an absent
// session is not a startup failure.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - apiServer: API server to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, apiServer *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Check API server
	if err := apiServer.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
