package patch

import (
	"encoding/json"
	"fmt"
)

// FromValue converts a JSON-encodable value into a Tree
func FromValue(v any) (Tree, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling value: %w", err)
	}
	return FromJSON(data)
}

// FromJSON parses a JSON object into a Tree
func FromJSON(data []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshaling tree: %w", err)
	}
	return t, nil
}

// Decode converts a Tree into the typed value pointed to by out
func Decode(t Tree, out any) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling tree: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding tree: %w", err)
	}
	return nil
}
