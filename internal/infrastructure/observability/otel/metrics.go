package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// トークン検証結果
const (
	ValidationResultAccepted            = "accepted"
	ValidationResultMissingToken        = "missing_token"
	ValidationResultMalformedToken      = "malformed_token"
	ValidationResultIncompleteTokenData = "incomplete_token_data"
	ValidationResultInvalidRequestBody  = "invalid_request_body"
)

// Metrics メトリクス定義
type Metrics struct {
	// トークン検証数（結果別）
	TokenValidationCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー数
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := Meter(meterName)

	tokenValidationCount, err := meter.Int64Counter(
		"token_validations_total",
		metric.WithDescription("Total number of token validations by result"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		TokenValidationCount: tokenValidationCount,
		RequestCount:         requestCount,
		ResponseTime:         responseTime,
		ErrorCount:           errorCount,
	}, nil
}

// RecordTokenValidation トークン検証結果を記録
func (m *Metrics) RecordTokenValidation(ctx context.Context, transport, result string) {
	m.TokenValidationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("transport", transport),
			attribute.String("result", result),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
