package replay

import (
	"errors"
	"time"
)

const (
	DefaultTTL       = 90 * time.Second // 30s period with one step of tolerance on each side
	DefaultKeyPrefix = "totp:used:"
)

var (
	ErrReplayed     = errors.New("one-time password already used")
	ErrEmptySubject = errors.New("replay subject cannot be empty")
	ErrStoreFailure = errors.New("replay store failure")
)
