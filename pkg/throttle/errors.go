package throttle

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid throttle configuration")
	ErrEmptyKey         = errors.New("throttle key cannot be empty")
	ErrStoreUnavailable = errors.New("throttle store unavailable")
)
