package middleware

import (
	"errors"
	"net/http"

	"secureauth-server/internal/domain/token"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// HTTPErrorHandler ミドルウェアチェーンの外側で発生したエラー（パニック復旧など）を処理
func HTTPErrorHandler(logger *otelinfra.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if renderErr := handleError(c, err, logger); renderErr != nil {
			logger.Error(c.Request().Context(), "Failed to render error response", renderErr, nil)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーはすべてクライアントエラー
	if message, ok := token.ClientMessage(err); ok {
		logger.Warn(ctx, "Token validation rejected", map[string]interface{}{
			"error": err.Error(),
			"path":  c.Request().URL.Path,
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: message,
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
			"path":        c.Request().URL.Path,
		})
		message, ok := httpErr.Message.(string)
		if !ok || message == "" {
			message = http.StatusText(httpErr.Code)
		}
		if c.Request().Method == http.MethodHead {
			return c.NoContent(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
	})
}
