package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for mixcore.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Console   ConsoleConfig   `yaml:"console"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig locates the static endpoint tables.
type CatalogConfig struct {
	// EndpointsFile is the path to the general-controls table.
	EndpointsFile string `yaml:"endpoints_file"`

	// FXEndpointsFile is the path to the effects-parameters table.
	FXEndpointsFile string `yaml:"fx_endpoints_file"`
}

// ConsoleConfig contains console connection settings.
type ConsoleConfig struct {
	// Host is the console's IP address or hostname. If empty, mixcore starts
	// disconnected and a session is established via the API.
	Host string `yaml:"host"`

	// SendPort is the console's OSC receive port. Default: 10023.
	SendPort int `yaml:"send_port"`

	// ListenPort is the local port for console replies. Default: 10024.
	ListenPort int `yaml:"listen_port"`

	// ReadTimeoutMS is the default wait for a query reply in milliseconds.
	// Default: 2000.
	ReadTimeoutMS int `yaml:"read_timeout_ms"`

	// AutoConnect establishes the session at startup when Host is set.
	AutoConnect bool `yaml:"auto_connect"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
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

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for meter telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MIXCORE_SECTION_KEY
// For example: MIXCORE_CONSOLE_HOST, MIXCORE_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			EndpointsFile:   "./data/endpoints.json",
			FXEndpointsFile: "./data/fx_endpoints.json",
		},
		Console: ConsoleConfig{
			SendPort:      10023,
			ListenPort:    10024,
			ReadTimeoutMS: 2000,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "mixcore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MIXCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Catalog
	if v := os.Getenv("MIXCORE_CATALOG_ENDPOINTS_FILE"); v != "" {
		cfg.Catalog.EndpointsFile = v
	}
	if v := os.Getenv("MIXCORE_CATALOG_FX_ENDPOINTS_FILE"); v != "" {
		cfg.Catalog.FXEndpointsFile = v
	}

	// Console
	if v := os.Getenv("MIXCORE_CONSOLE_HOST"); v != "" {
		cfg.Console.Host = v
	}
	if v := os.Getenv("MIXCORE_CONSOLE_SEND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Console.SendPort = port
		}
	}
	if v := os.Getenv("MIXCORE_CONSOLE_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Console.ListenPort = port
		}
	}

	// API
	if v := os.Getenv("MIXCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// MQTT
	if v := os.Getenv("MIXCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MIXCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MIXCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("MIXCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// maxPort is the highest valid TCP/UDP port number.
const maxPort = 65535

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Catalog validation
	if c.Catalog.EndpointsFile == "" {
		errs = append(errs, "catalog.endpoints_file is required")
	}
	if c.Catalog.FXEndpointsFile == "" {
		errs = append(errs, "catalog.fx_endpoints_file is required")
	}

	// Console validation
	if c.Console.SendPort <= 0 || c.Console.SendPort > maxPort {
		errs = append(errs, fmt.Sprintf("console.send_port must be 1-%d", maxPort))
	}
	if c.Console.ListenPort <= 0 || c.Console.ListenPort > maxPort {
		errs = append(errs, fmt.Sprintf("console.listen_port must be 1-%d", maxPort))
	}
	if c.Console.SendPort == c.Console.ListenPort {
		errs = append(errs, "console.send_port and console.listen_port must differ")
	}
	if c.Console.ReadTimeoutMS <= 0 {
		errs = append(errs, "console.read_timeout_ms must be positive")
	}
	if c.Console.AutoConnect && c.Console.Host == "" {
		errs = append(errs, "console.host is required when auto_connect is enabled")
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > maxPort {
		errs = append(errs, fmt.Sprintf("api.port must be 1-%d", maxPort))
	}

	// MQTT validation (only when enabled)
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port <= 0 || c.MQTT.Broker.Port > maxPort {
			errs = append(errs, fmt.Sprintf("mqtt.broker.port must be 1-%d", maxPort))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	// InfluxDB validation (only when enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
