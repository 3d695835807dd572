package middleware

import (
	"time"

	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware メトリクス記録ミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// リクエスト数を記録
			metrics.RecordRequest(c.Request().Context(), c.Request().Method, routePath(c))

			// 次のハンドラーを実行
			err := next(c)

			// レスポンス時間を記録（秒単位）
			duration := time.Since(start).Seconds()
			metrics.RecordResponseTime(c.Request().Context(), c.Request().Method, routePath(c), duration)

			// エラーはErrorHandlerMiddlewareでレスポンスに変換済みのためステータスで判定
			statusCode := c.Response().Status
			if err != nil && statusCode < 400 {
				statusCode = 500
			}
			if statusCode >= 400 {
				errorType := "client_error"
				if statusCode >= 500 {
					errorType = "server_error"
				}
				metrics.RecordError(c.Request().Context(), errorType)
			}

			return err
		}
	}
}

// routePath ルート定義のパスを返す（未登録パスは高カーディナリティを避けるため固定値）
func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
