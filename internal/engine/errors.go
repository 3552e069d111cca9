package engine

import (
	"errors"
	"fmt"
)

// RecordError reports which record of a batch failed to evaluate.
//
// The cause is kept as-is; use ir.CodeOf or errors.As to inspect it.
type RecordError struct {
	// Index is the position of the record in the batch.
	Index int

	// Err is the evaluation error.
	Err error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// Unwrap returns the evaluation error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// RecordIndex returns the failing record's index if err came from MatchAll.
// Uses errors.As to handle wrapped errors.
func RecordIndex(err error) (int, bool) {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Index, true
	}
	return 0, false
}
