package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transports accepted by load.transport.
const (
	TransportHTTP = "http"
	TransportUDP  = "udp"
	TransportMQTT = "mqtt"
)

// Config is the root configuration structure for influxwire.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	TSDB    TSDBConfig    `yaml:"tsdb"`
	UDP     UDPConfig     `yaml:"udp"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Journal JournalConfig `yaml:"journal"`
	Load    LoadConfig    `yaml:"load"`
	Logging LoggingConfig `yaml:"logging"`
}

// TSDBConfig contains the InfluxDB 1.x HTTP endpoint settings.
type TSDBConfig struct {
	// URL is the server base URL, e.g. "http://localhost:8086/".
	URL string `yaml:"url"`

	// Database is sent as the db parameter on every request.
	Database string `yaml:"database"`

	// Timeout bounds each HTTP request, in seconds. 0 means no client timeout.
	Timeout int `yaml:"timeout"`

	// StrictRows rejects query series whose rows do not match the column count.
	StrictRows bool `yaml:"strict_rows"`
}

// UDPConfig contains the InfluxDB UDP listener settings.
type UDPConfig struct {
	// Address is the remote listener, "host:port".
	Address string `yaml:"address"`

	// LocalAddress is the address each send binds to. Default "0.0.0.0:0".
	LocalAddress string `yaml:"local_address"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Topic     string              `yaml:"topic"`
	Retain    bool                `yaml:"retain"`
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// JournalConfig contains the SQLite failure journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoadConfig controls how the loader batches and sends lines.
type LoadConfig struct {
	// Transport is one of "http", "udp" or "mqtt".
	Transport string `yaml:"transport"`

	// BatchSize is the number of lines per payload.
	BatchSize int `yaml:"batch_size"`

	// Concurrency is the number of payloads in flight.
	Concurrency int `yaml:"concurrency"`

	// Escape selects the encoder escape policy: "none" or "strict".
	Escape string `yaml:"escape"`
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
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INFLUXWIRE_SECTION_KEY
// For example: INFLUXWIRE_TSDB_URL, INFLUXWIRE_LOAD_TRANSPORT
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		TSDB: TSDBConfig{
			URL:     "http://localhost:8086/",
			Timeout: 30,
		},
		UDP: UDPConfig{
			Address:      "localhost:8089",
			LocalAddress: "0.0.0.0:0",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "influxwire",
			},
			QoS:   1,
			Topic: "influxwire/lines",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Journal: JournalConfig{
			Path:        "./data/influxwire.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Load: LoadConfig{
			Transport:   TransportHTTP,
			BatchSize:   5000,
			Concurrency: 20,
			Escape:      "none",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INFLUXWIRE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// TSDB
	if v := os.Getenv("INFLUXWIRE_TSDB_URL"); v != "" {
		cfg.TSDB.URL = v
	}
	if v := os.Getenv("INFLUXWIRE_TSDB_DATABASE"); v != "" {
		cfg.TSDB.Database = v
	}

	// UDP
	if v := os.Getenv("INFLUXWIRE_UDP_ADDRESS"); v != "" {
		cfg.UDP.Address = v
	}

	// MQTT
	if v := os.Getenv("INFLUXWIRE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("INFLUXWIRE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("INFLUXWIRE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("INFLUXWIRE_MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}

	// Journal
	if v := os.Getenv("INFLUXWIRE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Load
	if v := os.Getenv("INFLUXWIRE_LOAD_TRANSPORT"); v != "" {
		cfg.Load.Transport = v
	}
	if v := os.Getenv("INFLUXWIRE_LOAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Load.Concurrency = n
		}
	}

	// Logging
	if v := os.Getenv("INFLUXWIRE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
// Transport-specific sections are only checked for the selected transport.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Load.Transport {
	case TransportHTTP:
		if c.TSDB.URL == "" {
			errs = append(errs, "tsdb.url is required")
		}
		if c.TSDB.Database == "" {
			errs = append(errs, "tsdb.database is required (set INFLUXWIRE_TSDB_DATABASE environment variable)")
		}
		if c.TSDB.Timeout < 0 {
			errs = append(errs, "tsdb.timeout must not be negative")
		}
	case TransportUDP:
		if c.UDP.Address == "" {
			errs = append(errs, "udp.address is required")
		}
	case TransportMQTT:
		if c.MQTT.Topic == "" {
			errs = append(errs, "mqtt.topic is required")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	default:
		errs = append(errs, fmt.Sprintf("load.transport %q must be http, udp, or mqtt", c.Load.Transport))
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Load.BatchSize < 1 {
		errs = append(errs, "load.batch_size must be at least 1")
	}
	if c.Load.Concurrency < 1 {
		errs = append(errs, "load.concurrency must be at least 1")
	}
	switch strings.ToLower(c.Load.Escape) {
	case "", "none", "strict":
	default:
		errs = append(errs, "load.escape must be none or strict")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RequestTimeout returns the TSDB request timeout as a Duration.
func (c TSDBConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BusyTimeoutDuration returns the SQLite busy timeout as a Duration.
func (c JournalConfig) BusyTimeoutDuration() time.Duration {
	return time.Duration(c.BusyTimeout) * time.Second
}
