// Package engine evaluates parsed filter conditions against data records.
//
// Evaluation order for a Leaf:
//  1. Fetch the native value from the record
//  2. Reject a value whose kind differs from the descriptor (FIELD_KIND_MISMATCH)
//  3. Absent optional values are false for every operator, never an error
//  4. Dispatch on (kind, operator, mode); the entry coerces the literal
//
// AND and OR short-circuit left to right: the right side is not evaluated
// (and its record fields are not read) once the left side decides. The
// first error aborts evaluation and is returned unchanged.
//
// Evaluation never mutates the tree, its literals or the record, so one
// Filter may be matched from many goroutines at once.
package engine
