package testutil

import (
	"sync"

	"github.com/roach88/sieve/internal/ir"
)

// Record is an in-memory data record keyed by field name.
//
// Implements ir.Record. Missing fields are MISSING_RECORD_FIELD errors.
type Record map[string]ir.NativeValue

// NativeValue implements ir.Record.
func (r Record) NativeValue(field ir.FieldDescriptor) (ir.NativeValue, error) {
	v, ok := r[field.Name]
	if !ok {
		return nil, ir.NewFieldError(ir.ErrCodeMissingRecordField, field.Name)
	}
	return v, nil
}

// CountingRecord wraps a Record and counts lookups per field, so tests can
// observe short-circuit evaluation.
//
// Thread-safety: safe for concurrent use via internal mutex.
type CountingRecord struct {
	Record Record

	mu     sync.Mutex
	counts map[string]int
}

// NewCountingRecord wraps rec.
func NewCountingRecord(rec Record) *CountingRecord {
	return &CountingRecord{Record: rec, counts: make(map[string]int)}
}

// NativeValue implements ir.Record.
func (c *CountingRecord) NativeValue(field ir.FieldDescriptor) (ir.NativeValue, error) {
	c.mu.Lock()
	c.counts[field.Name]++
	c.mu.Unlock()
	return c.Record.NativeValue(field)
}

// Lookups returns how many times field was read.
func (c *CountingRecord) Lookups(field string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[field]
}
