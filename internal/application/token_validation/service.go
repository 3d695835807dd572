package token_validation

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"secureauth-server/internal/domain/token"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"
)

// TokenValidationApplicationService トークン検証アプリケーションサービス
// 状態を持たないため複数のリクエストから同時に呼び出せる
type TokenValidationApplicationService struct {
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
	tracer  trace.Tracer
}

// NewTokenValidationApplicationService 新しいTokenValidationApplicationServiceを作成
func NewTokenValidationApplicationService(
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *TokenValidationApplicationService {
	return &TokenValidationApplicationService{
		logger:  logger,
		metrics: metrics,
		tracer:  otelinfra.Tracer("token-validation-service"),
	}
}

// ValidateEnvelope リクエストボディ {"token": "..."} をデコードして検証
func (s *TokenValidationApplicationService) ValidateEnvelope(ctx context.Context, req *ValidateEnvelopeRequest) (*ValidateTokenResponse, error) {
	envelope, err := token.ParseEnvelope(req.Body)
	if err != nil {
		ctx, span := s.tracer.Start(ctx, "TokenValidationApplicationService.ValidateEnvelope")
		defer span.End()
		return nil, s.reject(ctx, span, req.Transport, err)
	}

	return s.ValidateToken(ctx, &ValidateTokenRequest{
		Token:     envelope.Token,
		Transport: req.Transport,
	})
}

// ValidateToken トークン文字列をデコードし、必須フィールドを検証
// 署名と有効期限は検証しない
func (s *TokenValidationApplicationService) ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "TokenValidationApplicationService.ValidateToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("transport", req.Transport),
	)

	envelope := &token.Envelope{Token: req.Token}
	tokenString, err := envelope.TokenString()
	if err != nil {
		return nil, s.reject(ctx, span, req.Transport, err)
	}

	payload, err := token.ParsePayload(tokenString)
	if err != nil {
		return nil, s.reject(ctx, span, req.Transport, err)
	}

	if err := payload.Validate(); err != nil {
		return nil, s.reject(ctx, span, req.Transport, err)
	}

	span.SetAttributes(attribute.String("validation.result", otelinfra.ValidationResultAccepted))
	s.metrics.RecordTokenValidation(ctx, req.Transport, otelinfra.ValidationResultAccepted)
	s.logger.Info(ctx, "Token received", map[string]interface{}{
		"transport": req.Transport,
		"result":    otelinfra.ValidationResultAccepted,
	})

	return &ValidateTokenResponse{
		Message: MessageTokenReceived,
		Payload: payload,
	}, nil
}

// reject 検証失敗をスパン・メトリクス・ログに記録してエラーを返す
func (s *TokenValidationApplicationService) reject(ctx context.Context, span trace.Span, transport string, err error) error {
	result := ValidationResult(err)

	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	span.SetAttributes(attribute.String("validation.result", result))

	s.metrics.RecordTokenValidation(ctx, transport, result)
	s.logger.Warn(ctx, "Token rejected", map[string]interface{}{
		"transport": transport,
		"result":    result,
		"reason":    err.Error(),
	})

	return err
}

// ValidationResult エラーをメトリクス用の検証結果に変換
func ValidationResult(err error) string {
	switch {
	case err == nil:
		return otelinfra.ValidationResultAccepted
	case errors.Is(err, token.ErrMissingToken):
		return otelinfra.ValidationResultMissingToken
	case errors.Is(err, token.ErrMalformedToken):
		return otelinfra.ValidationResultMalformedToken
	case errors.Is(err, token.ErrIncompleteTokenData):
		return otelinfra.ValidationResultIncompleteTokenData
	case errors.Is(err, token.ErrInvalidRequestBody):
		return otelinfra.ValidationResultInvalidRequestBody
	default:
		return "unknown"
	}
}
