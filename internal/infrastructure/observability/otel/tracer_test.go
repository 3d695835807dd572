package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"secureauth-server/internal/infrastructure/config"
)

func TestInitTracer_Disabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Enabled: false,
	}

	shutdown, err := InitTracer(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, shutdown)

	// シャットダウン関数がエラーを返さないことを確認
	err = shutdown(context.Background())
	assert.NoError(t, err)
}

func TestInitTracer_OTLP(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		insecure bool
	}{
		{name: "ホスト:ポート形式", endpoint: "localhost:4318", insecure: true},
		{name: "URL形式", endpoint: "http://localhost:4318", insecure: true},
		{name: "セキュア接続", endpoint: "localhost:4318", insecure: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.OpenTelemetryConfig{
				Enabled:        true,
				TraceExporter:  "otlp",
				OTLPEndpoint:   tt.endpoint,
				OTLPInsecure:   tt.insecure,
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
			}

			// エクスポーターは遅延接続のため初期化自体は成功する
			shutdown, err := InitTracer(cfg)
			if err != nil {
				t.Logf("InitTracer failed (expected if OTLP endpoint is not available): %v", err)
				return
			}

			assert.NotNil(t, shutdown)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_ = shutdown(ctx)
		})
	}
}

func TestInitTracer_Stdout(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Enabled:        true,
		TraceExporter:  "stdout",
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	}

	shutdown, err := InitTracer(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, shutdown)

	// スパンを作成してもエラーにならないことを確認
	_, span := Tracer("test").Start(context.Background(), "stdout-span")
	span.End()

	err = shutdown(context.Background())
	assert.NoError(t, err)
}

func TestInitTracer_UnsupportedExporter(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Enabled:        true,
		TraceExporter:  "unsupported",
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
	}

	shutdown, err := InitTracer(cfg)
	assert.Error(t, err)
	assert.Nil(t, shutdown)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	assert.NotNil(t, tracer)

	// トレーサーを使用してスパンを作成
	_, span := tracer.Start(context.Background(), "test-span")
	assert.NotNil(t, span)
	span.End()
}

func TestHasScheme(t *testing.T) {
	assert.True(t, hasScheme("http://localhost:4318"))
	assert.True(t, hasScheme("https://collector.example.com"))
	assert.False(t, hasScheme("localhost:4318"))
	assert.False(t, hasScheme("://broken"))
}
