package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/logger"
)

type ctxKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return slog.String("request_id", id), ok
}

func TestFromConfig_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.FromConfig(logger.Config{Level: "debug"}, &buf, requestID, nil)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("component", "blog").DebugContext(ctx, "rendered", "template", "index")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "DEBUG", rec["level"])
	require.Equal(t, "rendered", rec["msg"])
	require.Equal(t, "req-1", rec["request_id"])
	require.Equal(t, "blog", rec["component"])
	require.Equal(t, "index", rec["template"])
}

func TestFromConfig_TextAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.FromConfig(logger.Config{Level: "WARN", Format: "text"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.Contains(out, "level=WARN") && strings.Contains(out, "key=value"), out)
}

func TestFromConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := logger.FromConfig(logger.Config{Level: "loud"}, &bytes.Buffer{})
	require.ErrorIs(t, err, logger.ErrInvalidConfig)

	_, err = logger.FromConfig(logger.Config{Format: "xml"}, &bytes.Buffer{})
	require.ErrorIs(t, err, logger.ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"":       slog.LevelInfo,
		"debug":  slog.LevelDebug,
		"Info":   slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"ERROR":  slog.LevelError,
		"warn+2": slog.LevelWarn + 2,
	} {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("dropped")
}
