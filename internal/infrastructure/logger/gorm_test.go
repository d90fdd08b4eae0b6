package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(t *testing.T, level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func traceQuery(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		gl, _ := newObservedGormLogger(t, gormlogger.Info)

		assert.Equal(t, gormlogger.Info, gl.logLevel)
		assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
		assert.True(t, gl.ignoreRecordNotFoundError)
	})

	t.Run("options override defaults", func(t *testing.T) {
		gl, _ := newObservedGormLogger(t, gormlogger.Info,
			WithSlowThreshold(500*time.Millisecond),
			WithIgnoreRecordNotFoundError(false),
		)

		assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
		assert.False(t, gl.ignoreRecordNotFoundError)
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(t, gormlogger.Info)

	clone := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.logLevel, "original must be unchanged")
	cloned, ok := clone.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, cloned.logLevel)
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info is formatted and emitted", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Info)

		gl.Info(context.Background(), "migrated %d tables", 7)

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "migrated 7 tables")
	})

	t.Run("silent suppresses info", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Silent)

		gl.Info(context.Background(), "should not appear")

		assert.Zero(t, logs.Len())
	})

	t.Run("warn and error map onto zap levels", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Info)

		gl.Warn(context.Background(), "connection pool at %d%%", 90)
		gl.Error(context.Background(), "connection lost")

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("failed statement logs SQL Error", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM aggregate_entities", 0), errors.New("connection reset"))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL Error", logs.All()[0].Message)
	})

	t.Run("record-not-found is dropped by default", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM aggregate_entities WHERE id = ?", 0), gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("record-not-found surfaces when configured", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM aggregate_entities WHERE id = ?", 0), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 1, logs.Len())
	})

	t.Run("slow statement logs at warn with threshold", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second),
			traceQuery("SELECT * FROM outbox_events", 10), nil)

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("normal statement logs at debug", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Info)

		gl.Trace(context.Background(), time.Now(),
			traceQuery("SELECT * FROM outbox_events", 5), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL Query", logs.All()[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), traceQuery("SELECT 1", 1), nil)

		assert.Zero(t, logs.Len())
	})

	t.Run("request and tenant IDs flow from context", func(t *testing.T) {
		gl, logs := newObservedGormLogger(t, gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-55")
		ctx = context.WithValue(ctx, TenantIDKey, "tenant-trattoria")

		gl.Trace(ctx, time.Now(), traceQuery("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.Len())
		fields := make(map[string]string)
		for _, f := range logs.All()[0].Context {
			if f.Type == zapcore.StringType {
				fields[f.Key] = f.String
			}
		}
		assert.Equal(t, "req-55", fields["request_id"])
		assert.Equal(t, "tenant-trattoria", fields["tenant_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	cases := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapGormLogLevel(tc.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
