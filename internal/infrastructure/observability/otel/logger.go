package otel

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Logger 構造化ロガー
// 1エントリを1行のJSONとして出力する
type Logger struct {
	out      *log.Logger
	minLevel LogLevel
}

// LoggerOption Loggerのオプション
type LoggerOption func(*Logger)

// WithLevel 出力する最小ログレベルを設定
func WithLevel(level LogLevel) LoggerOption {
	return func(l *Logger) {
		if level.Valid() {
			l.minLevel = level
		}
	}
}

// WithOutput 出力先を設定
func WithOutput(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.out = log.New(w, "", 0)
	}
}

// NewLogger 新しいLoggerを作成
func NewLogger(opts ...LoggerOption) *Logger {
	l := &Logger{
		out:      log.New(os.Stderr, "", 0),
		minLevel: LogLevelDebug,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// severity ログレベルの重要度
func (l LogLevel) severity() int {
	switch l {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	case LogLevelError:
		return 3
	default:
		return -1
	}
}

// Valid 有効なログレベルかどうかを返す
func (l LogLevel) Valid() bool {
	return l.severity() >= 0
}

// LogEntry ログエントリ
type LogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// Enabled 指定したレベルのログが出力されるかどうかを返す
func (l *Logger) Enabled(level LogLevel) bool {
	return level.severity() >= l.minLevel.severity()
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Level:     string(level),
		Message:   message,
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}

	// トレースIDとSpanIDを取得
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		entry.TraceID = span.SpanContext().TraceID().String()
		entry.SpanID = span.SpanContext().SpanID().String()
	}

	// WARN以上はスパンのイベントとしても記録
	if level.severity() >= LogLevelWarn.severity() && span.IsRecording() {
		span.AddEvent(message, trace.WithAttributes(attribute.String("log.level", string(level))))
	}

	// JSON形式で出力
	jsonData, err := json.Marshal(entry)
	if err != nil {
		l.out.Printf("failed to marshal log entry: %v", err)
		return
	}

	l.out.Println(string(jsonData))
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, fields)
}
