package token

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// トークンペイロードのJSONキー
const (
	KeyUserID    = "userId"
	KeyDeviceID  = "deviceId"
	KeyExpiresAt = "expiryDate"
)

// Payload トークン文字列をデコードしたペイロード
type Payload struct {
	UserID    Value
	DeviceID  Value
	ExpiresAt Value // JSONキーはexpiryDate

	raw json.RawMessage
}

// ParsePayload トークン文字列をJSONオブジェクトとしてデコードする
// キーの照合は大文字小文字を区別する
func ParsePayload(s string) (*Payload, error) {
	raw := bytes.TrimSpace([]byte(s))
	if !json.Valid(raw) {
		return nil, ErrMalformedToken
	}
	if raw[0] != '{' {
		return nil, fmt.Errorf("%w: payload must be a JSON object", ErrMalformedToken)
	}

	var fields map[string]Value
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	// 重複キーは後勝ちで1つにまとめる
	deduped, _, err := dedupeKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return &Payload{
		UserID:    fields[KeyUserID],
		DeviceID:  fields[KeyDeviceID],
		ExpiresAt: fields[KeyExpiresAt],
		raw:       deduped,
	}, nil
}

// dedupeKeys オブジェクト内の重複キーを取り除いたJSONを返す
// 値は最後に現れたもの、キーの順序は最初に現れた位置を使う
// 重複がなければ入力をそのまま返す
func dedupeKeys(raw json.RawMessage) (json.RawMessage, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return raw, false, nil
	}

	switch raw[0] {
	case '{':
		return dedupeObject(raw)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false, err
		}
		changed := false
		for i, item := range items {
			v, c, err := dedupeKeys(item)
			if err != nil {
				return nil, false, err
			}
			items[i] = v
			changed = changed || c
		}
		if !changed {
			return raw, false, nil
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(item)
		}
		buf.WriteByte(']')
		return buf.Bytes(), true, nil
	default:
		return raw, false, nil
	}
}

func dedupeObject(raw json.RawMessage) (json.RawMessage, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	changed := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false, err
		}
		v, c, err := dedupeKeys(value)
		if err != nil {
			return nil, false, err
		}
		changed = changed || c

		if _, seen := values[key]; seen {
			changed = true
		} else {
			keys = append(keys, key)
		}
		values[key] = v
	}

	if !changed {
		return raw, false, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encoded, err := json.Marshal(key)
		if err != nil {
			return nil, false, err
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		buf.Write(values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), true, nil
}

// Validate 必須フィールドがすべて真であることを検証する
// expiryDateは現在時刻と比較しない
func (p *Payload) Validate() error {
	switch {
	case !p.UserID.Truthy():
		return fmt.Errorf("%w: %s is missing", ErrIncompleteTokenData, KeyUserID)
	case !p.DeviceID.Truthy():
		return fmt.Errorf("%w: %s is missing", ErrIncompleteTokenData, KeyDeviceID)
	case !p.ExpiresAt.Truthy():
		return fmt.Errorf("%w: %s is missing", ErrIncompleteTokenData, KeyExpiresAt)
	}
	return nil
}

// Raw デコード元のJSONを返す
func (p *Payload) Raw() json.RawMessage {
	return p.raw
}

// MarshalJSON デコード元のJSONをそのまま返す
func (p *Payload) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("{}"), nil
	}
	return p.raw, nil
}
