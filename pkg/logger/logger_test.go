package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewHonorsLevel(t *testing.T) {
	l, err := New(Config{Level: "warn", Encoding: "console"})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestGetNeverNil(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotNil(t, Named("tableformat"))
	assert.NotNil(t, Nop())
}
