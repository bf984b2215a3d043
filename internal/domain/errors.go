package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingData signals an absent or empty collection file.
	ErrMissingData = errors.New("missing data")
	// ErrSchemaMismatch signals a dataset lacking an expected column.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrRerankUnavailable signals that semantic reranking could not run.
	ErrRerankUnavailable = errors.New("rerank unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidQuery signals a query that cannot be searched (e.g. blank).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrBelowBaseline signals an evaluation run that regressed below the recorded baseline.
	ErrBelowBaseline = errors.New("below baseline")
)

// SchemaMismatchError wraps ErrSchemaMismatch with the offending source and field.
type SchemaMismatchError struct {
	Source  string
	Field   string
	Aliases []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %s has no column for %q (accepted: %v)",
		ErrSchemaMismatch.Error(), e.Source, e.Field, e.Aliases)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NewSchemaMismatch creates a schema mismatch error.
func NewSchemaMismatch(source, field string, aliases []string) error {
	return &SchemaMismatchError{Source: source, Field: field, Aliases: aliases}
}
