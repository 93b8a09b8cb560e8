package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// Pipeline lifecycle
	ErrStatusRegression = errors.New("status cannot move backward")
	ErrImmutable        = errors.New("item is saved and immutable")
	ErrWrongStage       = errors.New("item is not in the required status")

	// Content handling
	ErrExtraction      = errors.New("text extraction failed")
	ErrInvalidTemplate = errors.New("invalid template")
)
