package record

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/ir"
)

// MapRecord is a record backed by a decoded map, keyed by field name.
//
// Implements ir.Record.
type MapRecord map[string]any

// NativeValue implements ir.Record.
func (m MapRecord) NativeValue(field ir.FieldDescriptor) (ir.NativeValue, error) {
	raw, ok := m[field.Name]
	if !ok || raw == nil {
		return absent(field)
	}

	switch v := raw.(type) {
	case int:
		return fromInteger(field, int64(v))
	case int32:
		return fromInteger(field, int64(v))
	case int64:
		return fromInteger(field, v)
	case uint64:
		if v > uint64(1<<63-1) {
			return nil, invalid(field, v)
		}
		return fromInteger(field, int64(v))
	case float64:
		return fromDecimal(field, v)
	case string:
		return fromText(field, v)
	case bool:
		return nil, mismatch(field, "boolean")
	default:
		return nil, mismatch(field, fmt.Sprintf("%T", raw))
	}
}

// ParseYAML decodes a YAML sequence of mappings into records.
func ParseYAML(data []byte) ([]MapRecord, error) {
	var records []MapRecord
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse YAML records: %w", err)
	}
	return records, nil
}

// LoadYAML reads a YAML records file.
func LoadYAML(path string) ([]MapRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return ParseYAML(data)
}
