// pkg/schema/errors.go
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is matched by every *SchemaMismatchError
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError reports required canonical fields that no header resolved to
type SchemaMismatchError struct {
	Source  string
	Missing []string
	Headers []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch for %s: missing required field(s) %s",
		e.Source, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrSchemaMismatch
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
