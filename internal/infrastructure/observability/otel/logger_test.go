package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// decodeEntries 出力されたJSON行をLogEntryに変換
func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelDebug, logger.minLevel)
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		message string
		fields  map[string]interface{}
	}{
		{
			name:    "Infoレベルのログ",
			level:   LogLevelInfo,
			message: "test message",
			fields:  map[string]interface{}{"key": "value"},
		},
		{
			name:    "Debugレベルのログ",
			level:   LogLevelDebug,
			message: "debug message",
			fields:  nil,
		},
		{
			name:    "Warnレベルのログ",
			level:   LogLevelWarn,
			message: "warn message",
			fields:  map[string]interface{}{"count": 42},
		},
		{
			name:    "Errorレベルのログ",
			level:   LogLevelError,
			message: "error message",
			fields:  map[string]interface{}{"error": "test error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(WithOutput(&buf))

			logger.Log(context.Background(), tt.level, tt.message, tt.fields)

			entries := decodeEntries(t, &buf)
			require.Len(t, entries, 1)
			assert.Equal(t, string(tt.level), entries[0].Level)
			assert.Equal(t, tt.message, entries[0].Message)
			assert.NotEmpty(t, entries[0].Timestamp)
			assert.Empty(t, entries[0].TraceID)
		})
	}
}

func TestLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf), WithLevel(LogLevelWarn))
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", assert.AnError, nil)

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, "ERROR", entries[1].Level)
}

func TestLogger_InvalidLevelIsIgnored(t *testing.T) {
	logger := NewLogger(WithLevel(LogLevel("TRACE")))
	assert.Equal(t, LogLevelDebug, logger.minLevel)
}

func TestLogger_LogWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf))

	ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	logger.Info(ctx, "test message", nil)

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0].TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), entries[0].SpanID)
}

func TestLogger_LogWithoutTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf))

	// トレースコンテキストがない場合のテスト
	ctx := context.Background()
	logger.Log(ctx, LogLevelInfo, "test message", nil)

	span := trace.SpanFromContext(ctx)
	assert.False(t, span.SpanContext().IsValid())

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].SpanID)
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		fields    map[string]interface{}
		wantError string
	}{
		{
			name:      "エラーあり、フィールドなし",
			err:       assert.AnError,
			fields:    nil,
			wantError: assert.AnError.Error(),
		},
		{
			name:      "エラーあり、既存のerrorフィールドを上書き",
			err:       assert.AnError,
			fields:    map[string]interface{}{"error": "existing error", "key": "value"},
			wantError: assert.AnError.Error(),
		},
		{
			name:      "エラーなし、フィールドあり",
			err:       nil,
			fields:    map[string]interface{}{"key": "value"},
			wantError: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(WithOutput(&buf))

			logger.Error(context.Background(), "error message", tt.err, tt.fields)

			entries := decodeEntries(t, &buf)
			require.Len(t, entries, 1)
			if tt.wantError == "" {
				assert.NotContains(t, entries[0].Fields, "error")
			} else {
				assert.Equal(t, tt.wantError, entries[0].Fields["error"])
			}
		})
	}
}

func TestLogger_LogEntryFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf))

	logger.Info(context.Background(), "test message", map[string]interface{}{
		"result": "accepted",
		"status": 200,
	})

	jsonStr := buf.String()
	assert.Contains(t, jsonStr, `"level":"INFO"`)
	assert.Contains(t, jsonStr, `"message":"test message"`)
	assert.Contains(t, jsonStr, `"result":"accepted"`)
	assert.Contains(t, jsonStr, `"status":200`)
}

func TestLogLevel_Valid(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  bool
	}{
		{LogLevelDebug, true},
		{LogLevelInfo, true},
		{LogLevelWarn, true},
		{LogLevelError, true},
		{LogLevel("TRACE"), false},
		{LogLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Valid())
		})
	}
}
