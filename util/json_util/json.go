// Package json_util provides JSON helpers shared by services and controllers.
package json_util

import (
	"errors"

	"github.com/goccy/go-json"
)

// RawMessage is a JSON raw message type that marshals empty slices as "null".
type RawMessage []byte

// MarshalJSON returns m as-is, or "null" when empty.
func (m RawMessage) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON sets *m to a copy of the JSON data.
func (m *RawMessage) UnmarshalJSON(data []byte) error {
	if m == nil {
		return errors.New("json.RawMessage: UnmarshalJSON on nil pointer")
	}
	*m = append((*m)[0:0], data...)
	return nil
}

// MarshalString encodes v and returns the JSON text, swallowing nothing.
func MarshalString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
