package logger

import (
	"context"
	"testing"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerLevel(t *testing.T) {
	l, err := NewZapLogger("warn", true)
	require.NoError(t, err)
	assert.Equal(t, interfaces.WarnLevel, l.GetLevel())

	child := l.WithField("component", "test")
	l.SetLevel(interfaces.DebugLevel)
	assert.Equal(t, interfaces.DebugLevel, child.GetLevel())
}

func TestZapLoggerUnknownLevel(t *testing.T) {
	l, err := NewZapLogger("verbose", false)
	require.NoError(t, err)
	assert.Equal(t, interfaces.InfoLevel, l.GetLevel())
}

func TestTraceIDContext(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.InfoWithContext(context.Background(), "message", interfaces.LogField{Key: "k", Value: 1}, "key", "value")
	assert.NotPanics(t, func() { l.WithFields(interfaces.LogField{Key: "a", Value: "b"}).Warn("x") })
}
