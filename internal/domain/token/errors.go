package token

import "errors"

var (
	// ErrMissingToken トークンが指定されていないエラー
	ErrMissingToken = errors.New("no token provided")
	// ErrMalformedToken トークンがJSONとして解釈できないエラー
	ErrMalformedToken = errors.New("invalid token format")
	// ErrIncompleteTokenData 必須フィールドが欠けているエラー
	ErrIncompleteTokenData = errors.New("invalid token data")
	// ErrInvalidRequestBody リクエストボディがJSONオブジェクトではないエラー
	ErrInvalidRequestBody = errors.New("invalid request body")
)

// clientMessages クライアントに返すエラーメッセージ
var clientMessages = []struct {
	err     error
	message string
}{
	{ErrMissingToken, "No token provided"},
	{ErrMalformedToken, "Invalid token format"},
	{ErrIncompleteTokenData, "Invalid token data"},
	{ErrInvalidRequestBody, "Invalid request body"},
}

// ClientMessage ドメインエラーに対応するクライアント向けメッセージを返す
func ClientMessage(err error) (string, bool) {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.message, true
		}
	}
	return "", false
}
