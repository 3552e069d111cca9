package record

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/valyala/fastjson"

	"github.com/roach88/sieve/internal/ir"
)

// JSONRecord is a record backed by a parsed JSON object.
//
// Implements ir.Record. The underlying value is only read.
type JSONRecord struct {
	obj *fastjson.Value
}

// NewJSONRecord wraps a parsed JSON object.
func NewJSONRecord(v *fastjson.Value) (*JSONRecord, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("record must be a JSON object, got %s", v.Type())
	}
	return &JSONRecord{obj: v}, nil
}

// NativeValue implements ir.Record.
func (r *JSONRecord) NativeValue(field ir.FieldDescriptor) (ir.NativeValue, error) {
	v := r.obj.Get(field.Name)
	if v == nil || v.Type() == fastjson.TypeNull {
		return absent(field)
	}

	switch v.Type() {
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return fromInteger(field, n)
		}
		f, err := v.Float64()
		if err != nil {
			return nil, invalid(field, v)
		}
		return fromDecimal(field, f)
	case fastjson.TypeString:
		return fromText(field, string(v.GetStringBytes()))
	default:
		return nil, mismatch(field, v.Type().String())
	}
}

// String returns the JSON encoding of the record.
func (r *JSONRecord) String() string {
	return r.obj.String()
}

// ParseJSON parses records from a JSON array of objects, a single object,
// or JSON lines (one object per line; blank lines are skipped).
func ParseJSON(data []byte) ([]*JSONRecord, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return parseJSONLines(data)
	}

	if v.Type() != fastjson.TypeArray {
		rec, err := NewJSONRecord(v)
		if err != nil {
			return nil, err
		}
		return []*JSONRecord{rec}, nil
	}

	items, _ := v.Array()
	records := make([]*JSONRecord, 0, len(items))
	for i, item := range items {
		rec, err := NewJSONRecord(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseJSONLines(data []byte) ([]*JSONRecord, error) {
	var records []*JSONRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := fastjson.ParseBytes(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", line, err)
		}
		rec, err := NewJSONRecord(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return records, nil
}

// LoadJSON reads a JSON or JSON lines records file.
func LoadJSON(path string) ([]*JSONRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	return ParseJSON(data)
}
