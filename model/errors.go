package model

import "errors"

var (
	ErrUnsupportedPlatform   = errors.New("unsupported platform")
	ErrAllProvidersExhausted = errors.New("all providers exhausted")
	ErrResolutionDeadline    = errors.New("resolution deadline exceeded")
)
