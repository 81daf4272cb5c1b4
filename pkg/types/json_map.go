package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an opaque jsonb bag used for payment metadata and audit payloads.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal json map: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json map source %T", value)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Merge returns a copy of m with the provided keys layered on top. Existing
// keys are preserved unless the update names them explicitly.
func (m JSONMap) Merge(update JSONMap) JSONMap {
	merged := make(JSONMap, len(m)+len(update))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}
