package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "PORT", "TRACKER_ROLE", "TRACKER_ENABLED", "TRACKER_TICK_INTERVAL",
		"TRACKER_CHECKPOINT_EVERY", "LEDGER_STORE", "LEDGER_NOTIFY_CHANNEL", "NATS_ENABLED", "NATS_URL", "NATS_CONSUMER",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "host", cfg.Tracker.Role)
		assert.True(t, cfg.Tracker.Enabled)
		assert.Equal(t, time.Second, cfg.Tracker.TickInterval)
		assert.Equal(t, 1, cfg.Tracker.CheckpointEvery)
		assert.Equal(t, storeMemory, cfg.Store.Kind)
		assert.Equal(t, "ENCOUNTER_EVENTS", cfg.NATS.Stream)
	})

	t.Run("yaml file", func(t *testing.T) {
		clearConfigEnv(t)
		path := writeConfig(t, `
log_level: debug
server:
  port: "9090"
tracker:
  role: observer
  enabled: false
  tick_interval: 250ms
  checkpoint_every: 4
store:
  kind: postgres
nats:
  enabled: false
  subject: table.events.>
`)

		cfg, err := loadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "observer", cfg.Tracker.Role)
		assert.False(t, cfg.Tracker.Enabled)
		assert.Equal(t, 250*time.Millisecond, cfg.Tracker.TickInterval)
		assert.Equal(t, 4, cfg.Tracker.CheckpointEvery)
		assert.Equal(t, storePostgres, cfg.Store.Kind)
		assert.False(t, cfg.NATS.Enabled)
		assert.Equal(t, "table.events.>", cfg.NATS.Subject)
		host, _ := os.Hostname()
		if host == "" {
			host = "local"
		}
		assert.Equal(t, durableName("turn-tracker-observer-"+host), cfg.NATS.Consumer)

		tc := cfg.trackerConfig()
		assert.Equal(t, 250*time.Millisecond, tc.TickInterval)
		assert.Equal(t, 4, tc.CheckpointEvery)

		js := cfg.jetStreamConfig()
		assert.Equal(t, "table.events.>", js.SubjectFilter)
		assert.Equal(t, -1, js.MaxReconnects)
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("TRACKER_ROLE", "observer")
		t.Setenv("TRACKER_TICK_INTERVAL", "2s")
		t.Setenv("TRACKER_ENABLED", "false")
		t.Setenv("PORT", "7000")
		path := writeConfig(t, "tracker:\n  role: host\n")

		cfg, err := loadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "observer", cfg.Tracker.Role)
		assert.Equal(t, 2*time.Second, cfg.Tracker.TickInterval)
		assert.False(t, cfg.Tracker.Enabled)
		assert.Equal(t, "7000", cfg.Server.Port)
	})

	t.Run("invalid values", func(t *testing.T) {
		clearConfigEnv(t)

		_, err := loadConfig(writeConfig(t, "tracker:\n  role: gm\n"))
		assert.Error(t, err)

		_, err = loadConfig(writeConfig(t, "store:\n  kind: redis\n"))
		assert.Error(t, err)

		_, err = loadConfig(writeConfig(t, "tracker: [oops"))
		assert.Error(t, err)

		_, err = loadConfig(writeConfig(t, "nats:\n  consumer: turn-tracker\n"))
		assert.Error(t, err, "the bare default durable would be shared")

		_, err = loadConfig(writeConfig(t, "nats:\n  consumer: a.b\n"))
		assert.Error(t, err)
	})

	t.Run("env consumer override", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("NATS_CONSUMER", "tracker-table-3")

		cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "tracker-table-3", cfg.jetStreamConfig().ConsumerName)
	})
}

func TestResolveConsumer(t *testing.T) {
	hostname := func(name string, err error) func() (string, error) {
		return func() (string, error) { return name, err }
	}

	t.Run("host and observer get distinct durables", func(t *testing.T) {
		host := defaultConfig()
		host.Tracker.Role = "host"
		host.resolveConsumer(hostname("box-1", nil))

		observer := defaultConfig()
		observer.Tracker.Role = "observer"
		observer.resolveConsumer(hostname("box-1", nil))

		assert.Equal(t, "turn-tracker-host-box-1", host.NATS.Consumer)
		assert.Equal(t, "turn-tracker-observer-box-1", observer.NATS.Consumer)
		assert.NoError(t, host.validate())
		assert.NoError(t, observer.validate())
	})

	t.Run("hostname characters are made safe", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.resolveConsumer(hostname("node.example.com", nil))

		assert.Equal(t, "turn-tracker-host-node-example-com", cfg.NATS.Consumer)
	})

	t.Run("hostname failure falls back", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.resolveConsumer(hostname("", errors.New("no hostname")))

		assert.Equal(t, "turn-tracker-host-local", cfg.NATS.Consumer)
	})

	t.Run("explicit name is kept", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.NATS.Consumer = "custom"
		cfg.resolveConsumer(hostname("box-1", nil))

		assert.Equal(t, "custom", cfg.NATS.Consumer)
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TT_INT", "12")
	t.Setenv("TT_BAD_INT", "x")
	t.Setenv("TT_BOOL", "true")
	t.Setenv("TT_DUR", "1m")

	assert.Equal(t, 12, getEnvAsInt("TT_INT", 3))
	assert.Equal(t, 3, getEnvAsInt("TT_BAD_INT", 3))
	assert.True(t, getEnvAsBool("TT_BOOL", false))
	assert.Equal(t, time.Minute, getEnvAsDuration("TT_DUR", time.Second))
	assert.Equal(t, "fallback", getEnv("TT_UNSET_KEY", "fallback"))
}
