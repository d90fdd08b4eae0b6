package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// memLogExporter captures exported records for assertions.
type memLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, records...)
	return nil
}

func (e *memLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memLogExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

// capturingProvider builds an enabled LoggerProvider backed by the in-memory
// exporter, bypassing the OTLP transport.
func capturingProvider(t *testing.T) (*LoggerProvider, *memLogExporter) {
	t.Helper()
	exporter := &memLogExporter{}
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
	)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return &LoggerProvider{
		provider: provider,
		logger:   zaptest.NewLogger(t),
		config:   LogsConfig{Enabled: true, ServiceName: "dinehub-backend"},
	}, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "dinehub-backend",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, lp)

	assert.False(t, lp.IsEnabled())
	assert.Equal(t, "dinehub-backend", lp.GetConfig().ServiceName)
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore_Disabled(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "dinehub-backend"})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("disabled provider", func(t *testing.T) {
		lp := &LoggerProvider{config: LogsConfig{Enabled: false}}
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "dinehub-backend",
			LoggerProvider: lp,
		})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestZapOTELCore_ExportsRecords(t *testing.T) {
	lp, exporter := capturingProvider(t)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "dinehub-backend",
		LoggerProvider: lp,
		Level:          "debug",
	})
	logger := zap.New(core)

	logger.Info("gift card issued", zap.String("card_id", "gc-100"))
	logger.Warn("deposit forfeiture pending")

	bodies := exporter.bodies()
	require.Len(t, bodies, 2)
	assert.Equal(t, "gift card issued", bodies[0])
	assert.Equal(t, "deposit forfeiture pending", bodies[1])
}

func TestZapOTELCore_LevelFilter(t *testing.T) {
	lp, exporter := capturingProvider(t)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "dinehub-backend",
		LoggerProvider: lp,
		Level:          "warn",
	})
	logger := zap.New(core)

	logger.Debug("ignored")
	logger.Info("also ignored")
	logger.Warn("stock below par level")
	logger.Error("journal entry unbalanced")

	bodies := exporter.bodies()
	require.Len(t, bodies, 2)
	assert.Equal(t, "stock below par level", bodies[0])
	assert.Equal(t, "journal entry unbalanced", bodies[1])
}

func TestZapOTELCore_SeverityMapping(t *testing.T) {
	lp, exporter := capturingProvider(t)

	logger := zap.New(NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "dinehub-backend",
		LoggerProvider: lp,
		Level:          "debug",
	}))

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 4)
	assert.Equal(t, log.SeverityDebug, exporter.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, exporter.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, exporter.records[2].Severity())
	assert.Equal(t, log.SeverityError, exporter.records[3].Severity())
}

func TestLevelFilterCore_With(t *testing.T) {
	lp, exporter := capturingProvider(t)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "dinehub-backend",
		LoggerProvider: lp,
		Level:          "warn",
	})

	// With must preserve the level floor on the derived core.
	child := zap.New(core).With(zap.String("tenant_id", "osteria-7"))
	child.Info("dropped")
	child.Warn("kept")

	bodies := exporter.bodies()
	require.Len(t, bodies, 1)
	assert.Equal(t, "kept", bodies[0])
}

func TestNewBridgedLogger_TeesBothCores(t *testing.T) {
	lp, exporter := capturingProvider(t)
	stdoutCore, observed := observer.New(zapcore.DebugLevel)

	otelCore := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "dinehub-backend",
		LoggerProvider: lp,
		Level:          "debug",
	})
	logger := NewBridgedLogger(stdoutCore, otelCore)

	logger.Info("shift approved")

	assert.Equal(t, 1, observed.Len())
	assert.Equal(t, []string{"shift approved"}, exporter.bodies())
}

func TestParseBridgeLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":      zapcore.DebugLevel,
		"info":       zapcore.InfoLevel,
		"warn":       zapcore.WarnLevel,
		"warning":    zapcore.WarnLevel,
		"error":      zapcore.ErrorLevel,
		"fatal":      zapcore.FatalLevel,
		"":           zapcore.InfoLevel,
		"ainventata": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseBridgeLevel(in), "level: %q", in)
	}
}
