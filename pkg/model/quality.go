// pkg/model/quality.go
package model

import (
	"time"
)

// CoercionFailure records a non-blank cell that degraded to null during coercion
type CoercionFailure struct {
	Source   string    // Source tag, e.g. "MB52"
	BatchID  string    // Batch the record belongs to
	Column   string    // Canonical field that failed
	Line     int       // Line in the source file
	RawValue any       // Original cell value
	Target   string    // Declared target type
	Reason   string    // Why the value was rejected
	SeenAt   time.Time // When the failure was recorded
}
