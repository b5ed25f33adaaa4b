package blobmeta

import (
	"errors"
	"fmt"
)

// Sentinel errors for the blobmeta package.
var (
	// ErrInvalidInput is returned by Extract when no blob is supplied.
	ErrInvalidInput = errors.New("blobmeta: invalid input")

	// ErrNothingToSerialize is returned by the serializers when there is no record.
	ErrNothingToSerialize = errors.New("blobmeta: nothing to serialize")

	// ErrInvalidRecord is returned when a record is built from unknown, duplicate or mistyped fields.
	ErrInvalidRecord = errors.New("blobmeta: invalid record")

	// ErrProbeUnavailable marks a probe whose capability is not configured.
	ErrProbeUnavailable = errors.New("blobmeta: probe unavailable")

	// ErrProbeDecode marks a probe whose capability rejected the content.
	ErrProbeDecode = errors.New("blobmeta: probe could not decode content")

	// ErrDurationUnknown marks media whose duration is missing or not finite.
	ErrDurationUnknown = errors.New("blobmeta: media duration unknown")

	// ErrNotFound is returned when a local file does not exist.
	ErrNotFound = errors.New("blobmeta: file not found")

	// ErrRead is returned when reading blob content fails.
	ErrRead = errors.New("blobmeta: read operation failed")

	// ErrHTTP is returned when fetching a blob from a URL fails.
	ErrHTTP = errors.New("blobmeta: HTTP request failed")

	// ErrS3 is returned when an S3 operation fails.
	ErrS3 = errors.New("blobmeta: S3 operation failed")
)

// MetaError wraps an underlying error with a sentinel from this package.
type MetaError struct {
	// Sentinel is the high-level category error (e.g., ErrS3, ErrProbeDecode).
	Sentinel error
	// Op is the operation that failed (e.g., "Extract", "NewFromURL").
	Op string
	// Err is the underlying error, possibly nil.
	Err error
}

// Error returns the formatted error string.
func (e *MetaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Sentinel, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Sentinel, e.Op)
}

// Unwrap returns the underlying error so errors.Is and errors.As work correctly.
func (e *MetaError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches the sentinel.
func (e *MetaError) Is(target error) bool {
	return errors.Is(e.Sentinel, target)
}

func newError(sentinel error, op string, err error) *MetaError {
	return &MetaError{
		Sentinel: sentinel,
		Op:       op,
		Err:      err,
	}
}
