package handler

import "encoding/json"

// ValidateTokenRequest トークン検証リクエスト
// @Description tokenはJSONをシリアライズした文字列
type ValidateTokenRequest struct {
	Token string `json:"token" example:"{\"userId\":\"u1\",\"deviceId\":\"d1\",\"expiryDate\":123456}"`
}

// ValidateTokenResponse トークン検証レスポンス
// @Description tokenはデコードしたペイロードをそのまま返す
type ValidateTokenResponse struct {
	Message string          `json:"message" example:"Token received"`
	Token   json.RawMessage `json:"token" swaggertype:"object"`
}

// ErrorResponse エラーレスポンス
// @Description エラーレスポンス
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid token data"`
}
