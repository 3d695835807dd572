package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"secureauth-server/internal/domain/token"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*otelinfra.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return otelinfra.NewLogger(otelinfra.WithOutput(buf)), buf
}

func TestErrorHandlerMiddleware_NoError(t *testing.T) {
	logger, _ := newTestLogger()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	middleware := ErrorHandlerMiddleware(logger)
	handler := middleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	err := handler(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "異常系: トークンなし",
			err:            token.ErrMissingToken,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No token provided"}`,
		},
		{
			name:           "異常系: ラップされたトークン形式エラー",
			err:            fmt.Errorf("decode payload: %w", token.ErrMalformedToken),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid token format"}`,
		},
		{
			name:           "異常系: 必須フィールド不足",
			err:            fmt.Errorf("%w: deviceId", token.ErrIncompleteTokenData),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid token data"}`,
		},
		{
			name:           "異常系: リクエストボディ不正",
			err:            token.ErrInvalidRequestBody,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:           "異常系: EchoのHTTPエラー",
			err:            echo.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Not Found"}`,
		},
		{
			name:           "異常系: メッセージ付きHTTPエラー",
			err:            echo.NewHTTPError(http.StatusBadRequest, "failed to read request body"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"failed to read request body"}`,
		},
		{
			name:           "異常系: メッセージが文字列でないHTTPエラー",
			err:            echo.NewHTTPError(http.StatusRequestEntityTooLarge, map[string]string{"k": "v"}),
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   `{"error":"Request Entity Too Large"}`,
		},
		{
			name:           "異常系: 予期しないエラー",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := newTestLogger()

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/validate-token", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			middleware := ErrorHandlerMiddleware(logger)
			handler := middleware(func(c echo.Context) error {
				return tt.err
			})

			err := handler(c)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestErrorHandlerMiddleware_DoesNotLogTokenContents(t *testing.T) {
	logger, buf := newTestLogger()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/validate-token", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlerMiddleware(logger)(func(c echo.Context) error {
		return fmt.Errorf("%w: userId", token.ErrIncompleteTokenData)
	})

	require.NoError(t, handler(c))
	assert.Contains(t, buf.String(), "Token validation rejected")
	assert.NotContains(t, buf.String(), "secret-device")
}

func TestHTTPErrorHandler_RecoveredPanic(t *testing.T) {
	logger, buf := newTestLogger()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(logger)
	e.Use(middleware.Recover())
	e.GET("/panic", func(c echo.Context) error {
		panic("unexpected")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "Internal server error")
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	logger, _ := newTestLogger()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, c.String(http.StatusOK, "done"))

	HTTPErrorHandler(logger)(errors.New("late error"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestHTTPErrorHandler_HeadRequest(t *testing.T) {
	logger, _ := newTestLogger()

	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(logger)(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
