package replay

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Store remembers keys for a limited time.
type Store interface {
	// MarkUsed records key for ttl. It returns false when key was already recorded
	// and has not expired yet.
	MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Guard rejects a one-time password that was already accepted for the same
// subject and time step.
type Guard struct {
	store  Store
	ttl    time.Duration
	prefix string
}

// Option configures a Guard.
type Option func(*Guard)

// WithKeyPrefix namespaces keys, e.g. per application sharing one Redis.
func WithKeyPrefix(prefix string) Option {
	return func(g *Guard) {
		g.prefix = prefix
	}
}

// NewGuard creates a guard remembering used codes for ttl.
// The ttl must cover the whole validation window: period * (2 * tolerance + 1).
func NewGuard(store Store, ttl time.Duration, opts ...Option) *Guard {
	if store == nil {
		panic("replay: store is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	g := &Guard{
		store:  store,
		ttl:    ttl,
		prefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTLFor returns the shortest ttl covering a validation window.
func TTLFor(period time.Duration, toleranceSteps uint) time.Duration {
	return period * time.Duration(2*toleranceSteps+1)
}

// Check marks (subject, counter) as used. It fails with ErrReplayed when the
// pair was seen before within ttl.
func (g *Guard) Check(ctx context.Context, subject string, counter uint64) error {
	if strings.TrimSpace(subject) == "" {
		return ErrEmptySubject
	}
	fresh, err := g.store.MarkUsed(ctx, g.key(subject, counter), g.ttl)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if !fresh {
		return ErrReplayed
	}
	return nil
}

func (g *Guard) key(subject string, counter uint64) string {
	return g.prefix + subject + ":" + strconv.FormatUint(counter, 10)
}
