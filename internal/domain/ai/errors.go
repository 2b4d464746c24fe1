package ai

import "errors"

var (
	// ErrQuotaExceeded means the provider refused for quota or rate reasons (HTTP 429).
	// The fallback model is not tried for it.
	ErrQuotaExceeded = errors.New("ai quota exceeded")

	// ErrNoInput is returned when a request carries neither a description nor an image.
	ErrNoInput = errors.New("description or image url is required")

	ErrEmptyResponse = errors.New("model returned no choices")
)
