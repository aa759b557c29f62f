package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/turntimer/go/internal/tracker"
	"gopkg.in/yaml.v3"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Tracker struct {
		Role            string        `yaml:"role"`
		Enabled         bool          `yaml:"enabled"`
		TickInterval    time.Duration `yaml:"tick_interval"`
		CheckpointEvery int           `yaml:"checkpoint_every"`
		EventBufferSize int           `yaml:"event_buffer_size"`
	} `yaml:"tracker"`

	Store struct {
		Kind          string `yaml:"kind"`
		NotifyChannel string `yaml:"notify_channel"`
	} `yaml:"store"`

	NATS struct {
		Enabled  bool   `yaml:"enabled"`
		URL      string `yaml:"url"`
		Stream   string `yaml:"stream"`
		Consumer string `yaml:"consumer"`
		Subject  string `yaml:"subject"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	tc := tracker.DefaultConfig()
	js := tracker.DefaultJetStreamConsumerConfig()

	var cfg Config
	cfg.LogLevel = "info"
	cfg.Server.Port = "8080"
	cfg.Tracker.Role = string(tracker.RoleHost)
	cfg.Tracker.Enabled = true
	cfg.Tracker.TickInterval = tc.TickInterval
	cfg.Tracker.CheckpointEvery = tc.CheckpointEvery
	cfg.Tracker.EventBufferSize = tc.EventBufferSize
	cfg.Store.Kind = storeMemory
	cfg.NATS.Enabled = true
	cfg.NATS.URL = js.URL
	cfg.NATS.Stream = js.StreamName
	// Consumer is left empty and derived per instance in resolveConsumer
	cfg.NATS.Subject = js.SubjectFilter
	return &cfg
}

// loadConfig layers the YAML file at path (optional) and env overrides on top of the defaults
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// no file, defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(config)
	config.resolveConsumer(os.Hostname)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnvOverrides(c *Config) {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Tracker.Role = getEnv("TRACKER_ROLE", c.Tracker.Role)
	c.Tracker.Enabled = getEnvAsBool("TRACKER_ENABLED", c.Tracker.Enabled)
	c.Tracker.TickInterval = getEnvAsDuration("TRACKER_TICK_INTERVAL", c.Tracker.TickInterval)
	c.Tracker.CheckpointEvery = getEnvAsInt("TRACKER_CHECKPOINT_EVERY", c.Tracker.CheckpointEvery)
	c.Store.Kind = getEnv("LEDGER_STORE", c.Store.Kind)
	c.Store.NotifyChannel = getEnv("LEDGER_NOTIFY_CHANNEL", c.Store.NotifyChannel)
	c.NATS.Enabled = getEnvAsBool("NATS_ENABLED", c.NATS.Enabled)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.Consumer = getEnv("NATS_CONSUMER", c.NATS.Consumer)
}

// resolveConsumer names the durable JetStream consumer after the role and
// host when none is configured. Each instance needs its own durable: two
// instances bound to one durable split the event stream between them.
func (c *Config) resolveConsumer(hostname func() (string, error)) {
	if c.NATS.Consumer != "" {
		return
	}
	host, err := hostname()
	if err != nil || host == "" {
		host = "local"
	}
	prefix := tracker.DefaultJetStreamConsumerConfig().ConsumerName
	c.NATS.Consumer = durableName(prefix + "-" + c.Tracker.Role + "-" + host)
}

// durableName replaces characters JetStream does not allow in consumer names
func durableName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '*' || r == '>' || r == '/' || r == '\\':
			return '-'
		case r <= ' ' || r == 0x7f:
			return '-'
		}
		return r
	}, s)
}

func (c *Config) validate() error {
	if _, err := tracker.ParseRole(c.Tracker.Role); err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	switch c.Store.Kind {
	case storeMemory, storePostgres:
	default:
		return fmt.Errorf("invalid store kind %q", c.Store.Kind)
	}
	if c.NATS.Consumer != durableName(c.NATS.Consumer) {
		return fmt.Errorf("invalid nats consumer name %q", c.NATS.Consumer)
	}
	if c.NATS.Consumer == tracker.DefaultJetStreamConsumerConfig().ConsumerName {
		return fmt.Errorf("nats consumer %q is shared by every instance, leave it empty or set a per-instance name", c.NATS.Consumer)
	}
	if c.Tracker.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.Tracker.TickInterval)
	}
	return nil
}

func (c *Config) trackerConfig() tracker.Config {
	return tracker.Config{
		TickInterval:    c.Tracker.TickInterval,
		CheckpointEvery: c.Tracker.CheckpointEvery,
		EventBufferSize: c.Tracker.EventBufferSize,
	}
}

func (c *Config) jetStreamConfig() tracker.JetStreamConsumerConfig {
	js := tracker.DefaultJetStreamConsumerConfig()
	js.URL = c.NATS.URL
	js.StreamName = c.NATS.Stream
	js.ConsumerName = c.NATS.Consumer
	js.SubjectFilter = c.NATS.Subject
	js.BufferSize = c.Tracker.EventBufferSize
	return js
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
