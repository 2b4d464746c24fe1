package diagnostics

import "errors"

var (
	// ErrMissingConfiguration indicates a required variable is absent.
	ErrMissingConfiguration = errors.New("missing configuration")
	// ErrMalformedCredential indicates a PEM structural assertion failed.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrInitializationFailure wraps an error raised by the initializer.
	ErrInitializationFailure = errors.New("initialization failed")
	// ErrDecodeFailure indicates the base64 key channel could not be decoded.
	ErrDecodeFailure = errors.New("decode failed")
)
