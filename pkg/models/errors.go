package models

import "fmt"

// ValidationError represents a precondition failure: caller misuse that
// must fail the whole call rather than apply a partial set.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// CopyError represents a single failed copy during an update batch.
// Copy errors are collected, never raised; the batch continues.
type CopyError struct {
	// RelativePath of the file that failed
	RelativePath string

	// Op is the category of the attempted operation (new, modified, duplicate)
	Op string

	// Err is the underlying failure
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("error copying %s (%s): %v", e.RelativePath, e.Op, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
