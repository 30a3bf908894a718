package throttle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config describes a token bucket: Capacity attempts at once, RefillRate
// attempts restored every RefillInterval.
type Config struct {
	Capacity       int           `env:"THROTTLE_CAPACITY" envDefault:"5"`         // Burst of attempts
	RefillRate     int           `env:"THROTTLE_REFILL_RATE" envDefault:"1"`      // Attempts restored per interval
	RefillInterval time.Duration `env:"THROTTLE_REFILL_INTERVAL" envDefault:"1m"` // Refill period
}

// DefaultConfig allows five attempts and restores one per minute.
func DefaultConfig() Config {
	return Config{
		Capacity:       5,
		RefillRate:     1,
		RefillInterval: time.Minute,
	}
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of an attempt.
type Result struct {
	Limit     int       // Bucket capacity
	Remaining int       // Attempts left; negative when the attempt was refused
	ResetAt   time.Time // Next refill
}

// Allowed reports whether the attempt may proceed.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait after a refused attempt, relative to now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Store keeps bucket state.
type Store interface {
	// Take removes cost tokens from the bucket at key when enough are left.
	// remaining is the balance after the take, or balance minus cost when refused.
	// A zero cost only refills and reports.
	Take(ctx context.Context, key string, cost int, cfg Config) (remaining int, resetAt time.Time, err error)

	// Reset forgets the bucket at key.
	Reset(ctx context.Context, key string) error
}

// Limiter throttles attempts per key, e.g. one-time password guesses per account.
type Limiter struct {
	store  Store
	cfg    Config
	prefix string
}

// NewLimiter creates a limiter over store.
func NewLimiter(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		panic("throttle: store is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg, prefix: "throttle:"}, nil
}

// Allow spends one attempt for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.take(ctx, key, 1)
}

// Status reports the bucket for key without spending an attempt.
func (l *Limiter) Status(ctx context.Context, key string) (Result, error) {
	return l.take(ctx, key, 0)
}

// Reset restores the full budget for key, e.g. after a successful verification.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return l.store.Reset(ctx, l.prefix+key)
}

func (l *Limiter) take(ctx context.Context, key string, cost int) (Result, error) {
	if strings.TrimSpace(key) == "" {
		return Result{}, ErrEmptyKey
	}
	remaining, resetAt, err := l.store.Take(ctx, l.prefix+key, cost, l.cfg)
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return Result{
		Limit:     l.cfg.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
