package token_validation

import "secureauth-server/internal/domain/token"

// 検証を呼び出したトランスポート
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// MessageTokenReceived 検証成功時のメッセージ
const MessageTokenReceived = "Token received"

// ValidateEnvelopeRequest リクエストボディ全体を検証するリクエスト
type ValidateEnvelopeRequest struct {
	Body      []byte
	Transport string
}

// ValidateTokenRequest トークン値を検証するリクエスト
type ValidateTokenRequest struct {
	Token     token.Value // {"token": ...} の値（未デコード）
	Transport string
}

// ValidateTokenResponse トークン検証レスポンス
type ValidateTokenResponse struct {
	Message string
	Payload *token.Payload
}
