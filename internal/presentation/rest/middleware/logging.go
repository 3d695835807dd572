package middleware

import (
	"time"

	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware ログミドルウェア
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			// リクエスト情報をログに記録
			logger.Debug(c.Request().Context(), "HTTP request started", map[string]interface{}{
				"request_id":  requestID,
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"remote_addr": c.RealIP(),
				"user_agent":  c.Request().UserAgent(),
			})

			// 次のハンドラーを実行
			err := next(c)

			// レスポンス情報をログに記録
			duration := time.Since(start)
			status := c.Response().Status
			fields := map[string]interface{}{
				"request_id":  requestID,
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status_code": status,
				"duration_ms": duration.Milliseconds(),
			}

			switch {
			case err != nil:
				logger.Error(c.Request().Context(), "HTTP request failed", err, fields)
			case status >= 500:
				logger.Error(c.Request().Context(), "HTTP request failed", nil, fields)
			case status >= 400:
				logger.Warn(c.Request().Context(), "HTTP request completed with client error", fields)
			default:
				logger.Info(c.Request().Context(), "HTTP request completed", fields)
			}

			return err
		}
	}
}
