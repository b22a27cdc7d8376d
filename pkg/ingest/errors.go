// pkg/ingest/errors.go
package ingest

import (
	"errors"
	"fmt"

	"github.com/David-Botos/erp-ingress/pkg/schema"
)

var (
	// ErrUnknownSource is returned for a source tag that is not registered
	ErrUnknownSource = errors.New("unknown source")
	// ErrInvalidSnapshotDate is returned for a snapshot date that is not YYYY-MM-DD
	ErrInvalidSnapshotDate = errors.New("invalid snapshot date")
	// ErrInvalidInput is returned for unreadable or malformed uploads
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorCategory classifies ingestion failures by how a caller should react
type ErrorCategory int

const (
	// ErrorCategoryNone means no error
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryInvalidInput covers unreadable files, bad dates and unknown sources
	ErrorCategoryInvalidInput
	// ErrorCategorySchemaMismatch means required headers are missing; nothing was written
	ErrorCategorySchemaMismatch
	// ErrorCategoryStorage means the store rejected a write
	ErrorCategoryStorage
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryInvalidInput:
		return "InvalidInput"
	case ErrorCategorySchemaMismatch:
		return "SchemaMismatch"
	case ErrorCategoryStorage:
		return "Storage"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Stage names the step of an ingestion where an error happened
type Stage string

const (
	StageRead    Stage = "read"
	StageResolve Stage = "resolve"
	StageJoin    Stage = "join"
	StageWrite   Stage = "write"
)

// Error is an ingestion failure tagged with its category and location
type Error struct {
	Category ErrorCategory
	Source   string
	Stage    Stage
	Table    string
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Source, e.Stage, e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(category ErrorCategory, source string, stage Stage, err error) *Error {
	return &Error{Category: category, Source: source, Stage: stage, Err: err}
}

// CategorizeError determines the category of an error
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var ingestErr *Error
	if errors.As(err, &ingestErr) {
		return ingestErr.Category
	}

	switch {
	case errors.Is(err, schema.ErrSchemaMismatch):
		return ErrorCategorySchemaMismatch
	case errors.Is(err, ErrUnknownSource),
		errors.Is(err, ErrInvalidSnapshotDate),
		errors.Is(err, ErrInvalidInput):
		return ErrorCategoryInvalidInput
	default:
		// anything else happened after validation, while talking to the store
		return ErrorCategoryStorage
	}
}
