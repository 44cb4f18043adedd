package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewHandler_EnrichesFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &LogConfig{Level: "debug", Format: "json", ServiceName: "logistics-api"}))

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, ContextKeyUserID, "user-1")

	log.InfoContext(ctx, "recorded returns", slog.Int("lines", 2))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "logistics-api", entry["service"])
	assert.EqualValues(t, 2, entry["lines"])
}

func TestNewHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, &LogConfig{Level: "warn", Format: "json"}))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestSanitizationHandler(t *testing.T) {
	tests := []struct {
		name    string
		log     func(*slog.Logger)
		key     string
		want    string
		notWant string
	}{
		{
			name: "sensitive_attribute_key",
			log:  func(l *slog.Logger) { l.Info("connecting", slog.String("db_password", "hunter2")) },
			key:  "db_password",
			want: "***REDACTED***",
		},
		{
			name:    "secret_in_message",
			log:     func(l *slog.Logger) { l.Info("push failed token=abc123") },
			key:     "msg",
			want:    "token=***REDACTED***",
			notWant: "abc123",
		},
		{
			name:    "bearer_in_attribute_value",
			log:     func(l *slog.Logger) { l.Info("push", slog.String("header", "Bearer abc.def")) },
			key:     "header",
			want:    "Bearer ***REDACTED***",
			notWant: "abc.def",
		},
		{
			name: "ordinary_message_untouched",
			log:  func(l *slog.Logger) { l.Info("user-1 returned 4 x Chairs (6 remaining)") },
			key:  "msg",
			want: "user-1 returned 4 x Chairs (6 remaining)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewHandler(&buf, &LogConfig{Level: "info", Format: "json"})))

			entry := decodeLine(t, &buf)
			value, _ := entry[tt.key].(string)
			assert.Contains(t, value, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, value, tt.notWant)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
