package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct{ value string }

type pingHandler struct{}

func (pingHandler) Handle(_ context.Context, request Request) (Response, error) {
	return "pong:" + request.(*pingCommand).value, nil
}

func TestMediator_SendDispatchesByType(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingCommand](m, pingHandler{}))

	resp, err := m.Send(context.Background(), &pingCommand{value: "a"})

	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingCommand](m, pingHandler{}))

	assert.Error(t, RegisterHandler[*pingCommand](m, pingHandler{}))

	_, err := m.Send(context.Background(), "not registered")
	assert.Error(t, err)

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := NewMediator()
	require.NoError(t, RegisterHandler[*pingCommand](m, pingHandler{}))

	var calls []string
	m.Use(func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		calls = append(calls, "outer")
		return next(ctx, request)
	})
	m.Use(func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		calls = append(calls, "inner")
		return next(ctx, request)
	})

	_, err := m.Send(context.Background(), &pingCommand{value: "b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type recordingLogger struct{ messages []string }

func (r *recordingLogger) Log(level, message string, _ map[string]interface{}) {
	r.messages = append(r.messages, level+":"+message)
}

func TestLoggerFromContext(t *testing.T) {
	// no logger falls back to a no-op
	LoggerFromContext(context.Background()).Log(LevelInfo, "ignored", nil)

	rec := &recordingLogger{}
	ctx := WithLogger(context.Background(), MultiLogger{rec, nil})
	LoggerFromContext(ctx).Log(LevelWarn, "hello", nil)

	assert.Equal(t, []string{"WARNING:hello"}, rec.messages)
}
