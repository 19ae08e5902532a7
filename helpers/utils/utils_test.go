package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestIDs(t *testing.T) {
	assert.True(t, IsUUID(GenerateUUID()))
	assert.True(t, IsUUID(GenerateRunID()))
	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
	assert.Len(t, GenerateShortID(), 8)
	assert.False(t, IsUUID("job-1"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("development", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("development", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("production", "loud")
	assert.Error(t, err)
}
