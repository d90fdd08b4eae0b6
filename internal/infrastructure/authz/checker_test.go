package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type scriptedChecker struct {
	allowed bool
	err     error
}

func (s scriptedChecker) CheckPermission(context.Context, CheckRequest) (bool, error) {
	return s.allowed, s.err
}

func TestAllowAll(t *testing.T) {
	allowed, err := NewAllowAll().CheckPermission(context.Background(), CheckRequest{
		ResourceType: ResourceTenant,
		Permission:   "commands:dispatch",
		SubjectType:  SubjectUser,
		SubjectID:    "user-waiter-5",
	})

	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLoggingChecker(t *testing.T) {
	req := CheckRequest{
		ResourceType: ResourceTenant,
		ResourceID:   "3f2c0b8e-0000-0000-0000-0000000000aa",
		Permission:   "commands:dispatch",
		SubjectType:  SubjectUser,
		SubjectID:    "user-manager-1",
	}

	t.Run("grants pass through silently", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		checker := NewLoggingChecker(scriptedChecker{allowed: true}, zap.New(core))

		allowed, err := checker.CheckPermission(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, logs.Len())
	})

	t.Run("denials are logged at warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		checker := NewLoggingChecker(scriptedChecker{allowed: false}, zap.New(core))

		allowed, err := checker.CheckPermission(context.Background(), req)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "permission denied", entry.Message)
	})

	t.Run("checker failures are logged at error and propagated", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		boom := errors.New("policy engine timeout")
		checker := NewLoggingChecker(scriptedChecker{err: boom}, zap.New(core))

		_, err := checker.CheckPermission(context.Background(), req)

		assert.ErrorIs(t, err, boom)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})
}
