// Package errors provides the domain error types shared by the pipeline,
// the document store and the HTTP surface.
//
// Usage:
//
//	import mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
//
//	if mferrors.IsNotFound(err) {
//	    // 404
//	}
package errors

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation error")

	// ErrTooLarge indicates an upload above the configured size cap.
	ErrTooLarge = errors.New("payload too large")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTooLarge reports whether any error in err's chain is ErrTooLarge.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
