package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: a config with only the role set
		path := writeConfig(t, "role: responder\n")

		// When
		conf := MustLoad(path)

		// Then
		require.NoError(t, conf.Validate())
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "json", conf.LogFormat)
		assert.Equal(t, TransportTCP, conf.Transport)
		assert.Equal(t, "localhost:5000", conf.GetAddr())
		assert.Equal(t, DefaultResponderName, conf.Name)
		assert.Equal(t, entity.RoleResponder, conf.GetRole())
		assert.Equal(t, uint64(5), conf.Dial.MaxRetries)
		assert.Equal(t, 500*time.Millisecond, conf.Dial.InitialInterval)
		assert.Zero(t, conf.MoveTimeout)
		assert.False(t, conf.Redis.Enabled)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Reads every section", func(t *testing.T) {
		path := writeConfig(t, `
log-level: debug
log-format: text
role: initiator
name: alice
transport: websocket
host: 10.0.0.2
port: "6000"
move-timeout: 30s
dial:
  max-retries: 2
  initial-interval: 1s
redis:
  enabled: true
  host: cache
  port: "6380"
`)

		conf := MustLoad(path)

		require.NoError(t, conf.Validate())
		assert.Equal(t, "alice", conf.Name)
		assert.Equal(t, TransportWebSocket, conf.Transport)
		assert.Equal(t, "10.0.0.2:6000", conf.GetAddr())
		assert.Equal(t, 30*time.Second, conf.MoveTimeout)
		assert.Equal(t, uint64(2), conf.Dial.MaxRetries)
		assert.Equal(t, time.Second, conf.Dial.InitialInterval)
		assert.True(t, conf.Redis.Enabled)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "role: initiator\nname: alice\n")
		t.Setenv("TICTACTOE_NAME", "bob")
		t.Setenv("TICTACTOE_PORT", "7000")

		conf := MustLoad(path)

		assert.Equal(t, "bob", conf.Name)
		assert.Equal(t, "7000", conf.Port)
	})

	t.Run("Panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Role: "initiator", Name: "alice", Transport: TransportTCP, LogFormat: "json"}
	}

	t.Run("Initiator may leave the name to the prompt", func(t *testing.T) {
		conf := valid()
		conf.Name = ""

		require.NoError(t, conf.Validate())
		assert.Empty(t, conf.Name)
	})

	tests := []struct {
		name   string
		mutate func(conf *Config)
	}{
		{name: "unknown role", mutate: func(conf *Config) { conf.Role = "spectator" }},
		{name: "name with spaces", mutate: func(conf *Config) { conf.Name = "bob smith" }},
		{name: "unknown transport", mutate: func(conf *Config) { conf.Transport = "udp" }},
		{name: "unknown log format", mutate: func(conf *Config) { conf.LogFormat = "xml" }},
		{name: "negative timeout", mutate: func(conf *Config) { conf.MoveTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := valid()
			tt.mutate(conf)

			require.ErrorIs(t, conf.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("Bad name keeps the identity error", func(t *testing.T) {
		conf := valid()
		conf.Name = "b-o-b"

		require.ErrorIs(t, conf.Validate(), apperror.ErrInvalidIdentity)
	})
}
