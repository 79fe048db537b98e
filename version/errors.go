package version

import "errors"

// Comparison failure categories. Result.Err wraps exactly one of these (or
// ErrInvalidDateFormat via ErrInvalidConfig) when the verdict could not be
// decided from the dates.
var (
	ErrEmptyInput         = errors.New("empty build identifier")
	ErrInvalidConfig      = errors.New("invalid comparison config")
	ErrPositionOutOfRange = errors.New("token position out of range")
	ErrEmptyToken         = errors.New("empty version token")
	ErrUnparsableToken    = errors.New("version token does not match date format")

	ErrInvalidDateFormat = errors.New("invalid date format")
)
