package token

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value デコード前のJSON値を保持する値オブジェクト
// キーが存在しない場合は空のまま残る
type Value json.RawMessage

// UnmarshalJSON 生のJSON値をそのまま保持する
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

// MarshalJSON 保持しているJSON値を返す
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// IsZero キーが存在しなかったかどうかを返す
func (v Value) IsZero() bool {
	return len(bytes.TrimSpace(v)) == 0
}

// Truthy 値が真とみなされるかどうかを返す
// null, false, 0, 空文字列, 空配列, 空オブジェクト, キーなしは偽
func (v Value) Truthy() bool {
	b := bytes.TrimSpace(v)
	if len(b) == 0 {
		return false
	}

	switch b[0] {
	case 'n', 'f':
		return false
	case 't':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return false
		}
		return s != ""
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return false
		}
		return len(items) > 0
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return false
		}
		return len(fields) > 0
	default:
		// 範囲外の数値は±Infになるため真として扱われる
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil && !isRangeError(err) {
			return false
		}
		return f != 0
	}
}

// String 値がJSON文字列であればその中身を返す
func (v Value) String() (string, bool) {
	b := bytes.TrimSpace(v)
	if len(b) == 0 || b[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}
