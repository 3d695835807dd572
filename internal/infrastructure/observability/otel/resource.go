package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"secureauth-server/internal/infrastructure/config"
)

// newResource サービス情報を持つリソースを作成
func newResource(cfg *config.OpenTelemetryConfig) (*resource.Resource, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// hasScheme エンドポイントがURL形式かどうかを返す
func hasScheme(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}
