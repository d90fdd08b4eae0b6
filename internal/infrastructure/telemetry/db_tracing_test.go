package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type menuItemRow struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time
}

func openTraceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&menuItemRow{}))
	return db
}

func recordingTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range s.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "query variables stay out of spans by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestNewDBTracingPlugin_DefaultsThreshold(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
}

func TestRegisterOtelGorm(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		db := openTraceTestDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("enabled registers plugin and callbacks", func(t *testing.T) {
		db := openTraceTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("full SQL mode", func(t *testing.T) {
		db := openTraceTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("double registration fails", func(t *testing.T) {
		db := openTraceTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestAfterQuery_SpanEnrichment(t *testing.T) {
	tp, recorder := recordingTracer(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	t.Run("rows affected and table name", func(t *testing.T) {
		db := openTraceTestDB(t)
		ctx, span := tp.Tracer("test").Start(context.Background(), "seed-menu")

		rows := []menuItemRow{{Name: "margherita"}, {Name: "diavola"}, {Name: "bianca"}}
		result := db.WithContext(ctx).Create(&rows)
		require.NoError(t, result.Error)

		plugin.afterQuery(result.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		last := spans[len(spans)-1]

		got, ok := spanAttr(last, "db.rows_affected")
		require.True(t, ok)
		assert.Equal(t, "3", got)

		got, ok = spanAttr(last, "db.sql.table")
		require.True(t, ok)
		assert.Equal(t, "menu_item_rows", got)
	})

	t.Run("record not found is not a span error", func(t *testing.T) {
		db := openTraceTestDB(t)
		ctx, span := tp.Tracer("test").Start(context.Background(), "lookup-missing")

		var row menuItemRow
		tx := db.WithContext(ctx).First(&row, 99999)
		require.Error(t, tx.Error)

		plugin.afterQuery(tx)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		assert.NotEqual(t, codes.Error, spans[len(spans)-1].Status().Code)
	})
}

func TestAfterQuery_SlowQueryEvent(t *testing.T) {
	tp, recorder := recordingTracer(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	db := openTraceTestDB(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "slow-lookup")

	tx := db.WithContext(ctx).Session(&gorm.Session{})
	plugin.beforeQuery(tx)
	time.Sleep(time.Millisecond)

	var row menuItemRow
	tx.First(&row)
	plugin.afterQuery(tx)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	last := spans[len(spans)-1]

	slow, ok := spanAttr(last, "db.slow_query")
	require.True(t, ok)
	assert.Equal(t, "true", slow)

	var found bool
	for _, event := range last.Events() {
		if event.Name == "slow_query_warning" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAfterQuery_SafeWithoutSpan(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
	}, zap.NewNop())

	db := openTraceTestDB(t)

	// No recording span in context: callbacks must not panic.
	plugin.afterQuery(db.WithContext(context.Background()).Session(&gorm.Session{}))
	plugin.afterQuery(db.Session(&gorm.Session{}))
}

func TestTracing_EndToEnd(t *testing.T) {
	tp, recorder := recordingTracer(t)
	db := openTraceTestDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		LogFullSQL:      true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "menu-roundtrip")
	scoped := db.WithContext(ctx)

	require.NoError(t, scoped.Create(&menuItemRow{Name: "quattro stagioni"}).Error)

	var found menuItemRow
	require.NoError(t, scoped.First(&found, "name = ?", "quattro stagioni").Error)
	assert.Equal(t, "quattro stagioni", found.Name)

	span.End()
	assert.NotEmpty(t, recorder.Ended())
}
