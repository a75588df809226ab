package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Equal(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	require.NotNil(t, retrieved, "missing logger must fall back to a no-op logger")
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	requestID := "req-123"

	newCtx, newLogger := WithRequestID(context.Background(), logger, requestID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, requestID, GetRequestID(newCtx))
	assert.Equal(t, newLogger, FromContext(newCtx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	logger := zap.NewNop()
	enriched := WithTraceContext(context.Background(), logger)
	assert.Equal(t, logger, enriched)
}

func newObservedLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core)
}

func TestContextLogger_InjectsRequestID(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newObservedLogger(&buf)

	ctx, _ := WithRequestID(context.Background(), baseLogger, "req-456")

	WithLogger(ctx, baseLogger).Info("loan processed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loan processed", entry["msg"])
	assert.Equal(t, "req-456", entry["request_id"])
}

func TestContextLogger_With(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newObservedLogger(&buf)

	WithLogger(context.Background(), baseLogger).
		With(zap.String("book_id", "b-1")).
		Info("book updated")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "b-1", entry["book_id"])
}

func TestL_MissingLogger(t *testing.T) {
	// Must not panic when the context carries no logger
	L(context.Background()).Info("ignored")
}
