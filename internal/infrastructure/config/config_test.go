package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"DINEHUB_APP_NAME":                     os.Getenv("DINEHUB_APP_NAME"),
		"DINEHUB_APP_ENV":                      os.Getenv("DINEHUB_APP_ENV"),
		"DINEHUB_APP_PORT":                     os.Getenv("DINEHUB_APP_PORT"),
		"DINEHUB_DATABASE_HOST":                os.Getenv("DINEHUB_DATABASE_HOST"),
		"DINEHUB_DATABASE_PORT":                os.Getenv("DINEHUB_DATABASE_PORT"),
		"DINEHUB_DATABASE_USER":                os.Getenv("DINEHUB_DATABASE_USER"),
		"DINEHUB_DATABASE_PASSWORD":            os.Getenv("DINEHUB_DATABASE_PASSWORD"),
		"DINEHUB_DATABASE_DBNAME":              os.Getenv("DINEHUB_DATABASE_DBNAME"),
		"DINEHUB_DATABASE_SSLMODE":             os.Getenv("DINEHUB_DATABASE_SSLMODE"),
		"DINEHUB_DATABASE_MAX_OPEN_CONNS":      os.Getenv("DINEHUB_DATABASE_MAX_OPEN_CONNS"),
		"DINEHUB_DATABASE_MAX_IDLE_CONNS":      os.Getenv("DINEHUB_DATABASE_MAX_IDLE_CONNS"),
		"DINEHUB_RUNTIME_MAILBOX_SIZE":         os.Getenv("DINEHUB_RUNTIME_MAILBOX_SIZE"),
		"DINEHUB_TERMINAL_HEARTBEAT_STALENESS": os.Getenv("DINEHUB_TERMINAL_HEARTBEAT_STALENESS"),
		"APP_ENV":                              os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "dinehub-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "dinehub", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	})

	t.Run("applies runtime and domain defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 64, cfg.Runtime.MailboxSize)
		assert.Equal(t, 5*time.Second, cfg.Runtime.DispatchTimeout)
		assert.Equal(t, 15*time.Minute, cfg.Runtime.IdleTimeout)
		assert.Equal(t, 3, cfg.Runtime.MaxConflictRetries)
		assert.Equal(t, 10*time.Second, cfg.Webhook.DeliveryTimeout)
		assert.Equal(t, 50, cfg.Webhook.HistorySize)
		assert.Equal(t, "0 0 1 1 *", cfg.Loyalty.YTDResetCron)
		assert.Equal(t, 90*time.Second, cfg.Terminal.HeartbeatStaleness)
	})

	t.Run("loads values from environment variables with DINEHUB prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_APP_NAME", "test-app")
		os.Setenv("DINEHUB_APP_ENV", "testing")
		os.Setenv("DINEHUB_APP_PORT", "9000")
		os.Setenv("DINEHUB_DATABASE_HOST", "testdb.local")
		os.Setenv("DINEHUB_DATABASE_PORT", "5433")
		os.Setenv("DINEHUB_DATABASE_USER", "testuser")
		os.Setenv("DINEHUB_DATABASE_PASSWORD", "testpass")
		os.Setenv("DINEHUB_DATABASE_DBNAME", "testdb")
		os.Setenv("DINEHUB_DATABASE_SSLMODE", "require")
		os.Setenv("DINEHUB_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("DINEHUB_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("DINEHUB_RUNTIME_MAILBOX_SIZE", "128")
		os.Setenv("DINEHUB_TERMINAL_HEARTBEAT_STALENESS", "2m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 128, cfg.Runtime.MailboxSize)
		assert.Equal(t, 2*time.Minute, cfg.Terminal.HeartbeatStaleness)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("DINEHUB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates negative mailbox size", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_RUNTIME_MAILBOX_SIZE", "-4")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mailbox_size must be positive")
	})
}

func TestLoad_Telemetry(t *testing.T) {
	keys := []string{
		"DINEHUB_TELEMETRY_ENABLED",
		"DINEHUB_TELEMETRY_COLLECTOR_ENDPOINT",
		"DINEHUB_TELEMETRY_SAMPLING_RATIO",
		"DINEHUB_TELEMETRY_PROFILER_ENABLED",
		"DINEHUB_TELEMETRY_PYROSCOPE_ADDRESS",
		"DINEHUB_TELEMETRY_LOGS_ENABLED",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	t.Run("defaults leave every exporter off", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Telemetry.Enabled)
		assert.False(t, cfg.Telemetry.ProfilerEnabled)
		assert.False(t, cfg.Telemetry.LogsEnabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "dinehub-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
	})

	t.Run("profiler and log export toggles read from env", func(t *testing.T) {
		t.Setenv("DINEHUB_TELEMETRY_ENABLED", "true")
		t.Setenv("DINEHUB_TELEMETRY_COLLECTOR_ENDPOINT", "otel-collector:4317")
		t.Setenv("DINEHUB_TELEMETRY_PROFILER_ENABLED", "true")
		t.Setenv("DINEHUB_TELEMETRY_PYROSCOPE_ADDRESS", "http://pyroscope:4040")
		t.Setenv("DINEHUB_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "otel-collector:4317", cfg.Telemetry.CollectorEndpoint)
		assert.True(t, cfg.Telemetry.ProfilerEnabled)
		assert.Equal(t, "http://pyroscope:4040", cfg.Telemetry.PyroscopeAddress)
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("rejects sampling ratio outside the unit interval", func(t *testing.T) {
		t.Setenv("DINEHUB_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"DINEHUB_APP_ENV":           os.Getenv("DINEHUB_APP_ENV"),
		"DINEHUB_DATABASE_PASSWORD": os.Getenv("DINEHUB_DATABASE_PASSWORD"),
		"DINEHUB_DATABASE_SSLMODE":  os.Getenv("DINEHUB_DATABASE_SSLMODE"),
		"APP_ENV":                   os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_APP_ENV", "production")
		os.Setenv("DINEHUB_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_APP_ENV", "production")
		os.Setenv("DINEHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("DINEHUB_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("DINEHUB_APP_ENV", "production")
		os.Setenv("DINEHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("DINEHUB_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
