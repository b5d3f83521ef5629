package service

import "errors"

// Failure taxonomy for the reconciliation pipeline. Non-critical side effects
// (document attachment, order description updates) log and continue; these
// errors mark the failures that must surface to the caller.
var (
	// ErrExtractionFailed indicates the extractor could not parse the
	// document. Partial data is still returned for manual entry.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrCustomerUnresolved indicates the customer cascade exhausted every
	// strategy without a match. No records are created.
	ErrCustomerUnresolved = errors.New("no customer could be resolved")

	// ErrValidation indicates required fields were missing before any
	// persistence began.
	ErrValidation = errors.New("validation failed")
)
