package services

import "fmt"

// ExtractionError signals that the PDF could not be fetched or parsed. It is
// fatal for the calling operation and is not retried automatically; the user
// re-uploads or re-triggers generation.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ConflictError carries a user-actionable reason why a username cannot be
// taken. Never a crash, always surfaced as-is to the caller.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
