package telemetry

import (
	"sync"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProfiler_Disabled(t *testing.T) {
	cfg := ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://pyroscope:4040",
		ApplicationName: "dinehub-backend",
	}

	p, err := NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, p.IsEnabled())
	assert.Equal(t, "dinehub-backend", p.GetConfig().ApplicationName)

	// No-op profiler stops cleanly, repeatedly.
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("missing server address", func(t *testing.T) {
		_, err := NewProfiler(ProfilerConfig{
			Enabled:         true,
			ApplicationName: "dinehub-backend",
		}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server address is required")
	})

	t.Run("missing application name", func(t *testing.T) {
		_, err := NewProfiler(ProfilerConfig{
			Enabled:       true,
			ServerAddress: "http://pyroscope:4040",
		}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "application name is required")
	})
}

func TestProfilerConfig_ProfileTypes(t *testing.T) {
	t.Run("none selected", func(t *testing.T) {
		assert.Empty(t, ProfilerConfig{}.profileTypes())
	})

	t.Run("standard set", func(t *testing.T) {
		cfg := ProfilerConfig{
			ProfileCPU:        true,
			ProfileAllocSpace: true,
			ProfileInuseSpace: true,
			ProfileGoroutines: true,
		}
		types := cfg.profileTypes()
		assert.ElementsMatch(t, []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		}, types)
	})

	t.Run("everything", func(t *testing.T) {
		cfg := ProfilerConfig{
			ProfileCPU:           true,
			ProfileAllocObjects:  true,
			ProfileAllocSpace:    true,
			ProfileInuseObjects:  true,
			ProfileInuseSpace:    true,
			ProfileGoroutines:    true,
			ProfileMutexCount:    true,
			ProfileMutexDuration: true,
			ProfileBlockCount:    true,
			ProfileBlockDuration: true,
		}
		assert.Len(t, cfg.profileTypes(), 10)
	})
}

func TestProfiler_StopConcurrent(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Stop())
		}()
	}
	wg.Wait()
}

func TestPyroscopeLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := newPyroscopeLogger(zap.New(core))

	adapter.Infof("uploading %d profiles", 3)
	adapter.Debugf("session started")
	adapter.Errorf("upload failed: %s", "connection refused")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "uploading 3 profiles", entries[0].Message)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.DebugLevel, entries[1].Level)
	assert.Equal(t, "upload failed: connection refused", entries[2].Message)
	assert.Equal(t, "pyroscope", entries[0].LoggerName)
}
