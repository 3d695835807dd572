package handler

import (
	"errors"
	"io"
	"net/http"

	tokenapp "secureauth-server/internal/application/token_validation"

	"github.com/labstack/echo/v4"
)

// TokenHandler トークン検証ハンドラー
type TokenHandler struct {
	tokenService *tokenapp.TokenValidationApplicationService
}

// NewTokenHandler 新しいTokenHandlerを作成
func NewTokenHandler(tokenService *tokenapp.TokenValidationApplicationService) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
	}
}

// ValidateToken トークン検証ハンドラー
// @Summary トークンを検証
// @Description JSON文字列のトークンをデコードし、userId・deviceId・expiryDateの存在を検証します
// @Tags token
// @Accept json
// @Produce json
// @Param request body ValidateTokenRequest true "トークン検証リクエスト"
// @Success 200 {object} ValidateTokenResponse "検証成功"
// @Failure 400 {object} ErrorResponse "トークンなし・形式不正・必須フィールド不足"
// @Router /api/validate-token [post]
func (h *TokenHandler) ValidateToken(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimitミドルウェアの上限超過はそのまま返す
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	resp, err := h.tokenService.ValidateEnvelope(c.Request().Context(), &tokenapp.ValidateEnvelopeRequest{
		Body:      body,
		Transport: tokenapp.TransportHTTP,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ValidateTokenResponse{
		Message: resp.Message,
		Token:   resp.Payload.Raw(),
	})
}
