package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName HTTPサーバースパンのトレーサー名
const TracerName = "secureauth-server"

// TracingMiddleware OpenTelemetryトレーシングミドルウェア
func TracingMiddleware() echo.MiddlewareFunc {
	tracer := otel.Tracer(TracerName)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// トレースコンテキストの伝播
			propagator := otel.GetTextMapPropagator()
			ctx = propagator.Extract(ctx, propagation.HeaderCarrier(c.Request().Header))

			// スパンの開始
			spanName := c.Request().Method + " " + routePath(c)
			ctx, span := tracer.Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			// スパンに属性を設定
			span.SetAttributes(
				attribute.String("http.method", c.Request().Method),
				attribute.String("http.url", c.Request().URL.String()),
				attribute.String("http.route", routePath(c)),
				attribute.String("http.user_agent", c.Request().UserAgent()),
				attribute.String("http.request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			// コンテキストをリクエストに設定
			c.SetRequest(c.Request().WithContext(ctx))

			// 次のハンドラーを実行
			err := next(c)

			// レスポンス情報を記録
			statusCode := c.Response().Status
			span.SetAttributes(
				attribute.Int("http.status_code", statusCode),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(statusCode))
			}

			return err
		}
	}
}
