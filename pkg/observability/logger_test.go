package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/contextkeys"
)

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger("warn", "json", buf)

	logger.Info("dropped")
	logger.WithField("slug", "posts").Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "posts", entry["slug"])
	assert.Equal(t, "warning", entry["level"])
}

func TestNewLogger_Defaults(t *testing.T) {
	logger := NewLogger("nonsense", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestFromContext(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ctx := WithLogger(context.Background(), logger)
	ctx = contextkeys.WithRequestID(ctx, "req-1")
	ctx = contextkeys.WithUserID(ctx, "ops")

	FromContext(ctx).Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, "ops", entry.Data["user_id"])
	assert.NotContains(t, entry.Data, "trace_id")
}

func TestFromContext_TraceIDs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(WithLogger(context.Background(), logger), "op")
	defer span.End()

	FromContext(ctx).Info("traced")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry.Data["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry.Data["span_id"])
}

func TestGetLogger_Fallback(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), GetLogger(context.Background()))
}
