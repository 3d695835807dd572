package token

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope リクエストボディ {"token": "<json-string>"}
// token以外のキー（クライアントが送るemailなど）は無視する
type Envelope struct {
	Token Value
}

// ParseEnvelope リクエストボディをEnvelopeにデコードする
func ParseEnvelope(body []byte) (*Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, ErrInvalidRequestBody
	}

	var fields map[string]Value
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err)
	}

	return &Envelope{Token: fields["token"]}, nil
}

// TokenString トークン文字列を取り出す
func (e *Envelope) TokenString() (string, error) {
	if !e.Token.Truthy() {
		return "", ErrMissingToken
	}

	s, ok := e.Token.String()
	if !ok {
		return "", fmt.Errorf("%w: token must be a string", ErrMalformedToken)
	}
	return s, nil
}
