package totp

import (
	"crypto/subtle"
	"time"
)

// Validator checks submitted codes against a secret, tolerating clock drift of
// Config.ToleranceSteps steps in both directions. It neither records nor consumes
// codes; single-use enforcement belongs to the caller (see pkg/replay).
type Validator struct {
	cfg   Config
	clock *Clock
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the clock used to derive the current counter.
// The clock step wins over Config.Period.
func WithClock(clock *Clock) ValidatorOption {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// NewValidator creates a validator for cfg. Zero fields of cfg get defaults.
func NewValidator(cfg Config, opts ...ValidatorOption) *Validator {
	cfg = cfg.WithDefaults()
	v := &Validator{cfg: cfg}
	for _, opt := range opts {
		opt(v)
	}
	if v.clock == nil {
		v.clock = NewClock(WithStep(cfg.Period))
	}
	return v
}

// Config returns the effective configuration.
func (v *Validator) Config() Config {
	return v.cfg
}

// Clock returns the clock the validator reads time from.
func (v *Validator) Clock() *Clock {
	return v.clock
}

// Validate checks code against the Base32 secret at the current time.
func (v *Validator) Validate(secret, code string) error {
	_, err := v.Verify(secret, code, v.clock.Now())
	return err
}

// ValidateAt checks code against the Base32 secret at time t.
func (v *Validator) ValidateAt(secret, code string, t time.Time) error {
	_, err := v.Verify(secret, code, t)
	return err
}

// Verify checks code against the Base32 secret at time t and returns the counter
// of the step the code belongs to.
//
// Inputs are checked in a fixed order, each failing with its own error:
// ErrEmptyCode, ErrInvalidCodeFormat, ErrEmptySecret, ErrInvalidSecretFormat.
// A well-formed code that matches no step of the window yields ErrCodeMismatch.
func (v *Validator) Verify(secret, code string, t time.Time) (uint64, error) {
	if code == "" {
		return 0, ErrEmptyCode
	}
	if !isNumeric(code, v.cfg.Digits) {
		return 0, ErrInvalidCodeFormat
	}
	if secret == "" {
		return 0, ErrEmptySecret
	}
	key, err := ParseSecret(secret)
	if err != nil {
		return 0, err
	}
	return v.match(key, code, v.clock.CounterAt(t))
}

// VerifySecret is Verify for an already decoded secret.
func (v *Validator) VerifySecret(secret Secret, code string, t time.Time) (uint64, error) {
	if code == "" {
		return 0, ErrEmptyCode
	}
	if !isNumeric(code, v.cfg.Digits) {
		return 0, ErrInvalidCodeFormat
	}
	if len(secret) == 0 {
		return 0, ErrEmptySecret
	}
	return v.match(secret, code, v.clock.CounterAt(t))
}

// match walks the window exact step first, then -1, +1, -2, +2 and so on.
func (v *Validator) match(key Secret, code string, counter uint64) (uint64, error) {
	for _, c := range window(counter, v.cfg.ToleranceSteps) {
		expected, err := ComputeCode(key, c, v.cfg)
		if err != nil {
			return 0, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return c, nil
		}
	}
	return 0, ErrCodeMismatch
}

// window lists the counters to try. Steps before counter 0 do not exist and are skipped.
func window(counter uint64, tolerance uint) []uint64 {
	counters := make([]uint64, 0, 2*tolerance+1)
	counters = append(counters, counter)
	for d := uint64(1); d <= uint64(tolerance); d++ {
		if counter >= d {
			counters = append(counters, counter-d)
		}
		counters = append(counters, counter+d)
	}
	return counters
}

func isNumeric(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
