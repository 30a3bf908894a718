package totp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

const (
	DefaultSecretSize = 20 // 160-bit secret (RFC 4226 recommendation)
	MinSecretSize     = 10 // 80 bits, the shortest secret ParseSecret accepts

	redacted = "[REDACTED]"
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, no padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+$")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Secret is the raw shared key of a TOTP credential.
// It is redacted whenever it gets printed or logged; use Base32 to export it.
type Secret []byte

// GenerateSecret draws a new DefaultSecretSize-byte secret from the system CSPRNG.
func GenerateSecret() (Secret, error) {
	return GenerateSecretSize(DefaultSecretSize)
}

// GenerateSecretSize draws a new secret of the given size in bytes.
// Sizes below DefaultSecretSize are rejected.
func GenerateSecretSize(size int) (Secret, error) {
	if size < DefaultSecretSize {
		return nil, ErrSecretTooShort
	}
	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Join(ErrFailedToGenerateSecret, err)
	}
	return secret, nil
}

// ParseSecret decodes a canonical secret: uppercase RFC 4648 Base32 without
// padding. Anything else, separators and lowercase included, is
// ErrInvalidSecretFormat. Pass hand-typed input through NormalizeSecret first.
func ParseSecret(s string) (Secret, error) {
	if s == "" || !ValidateSecretKeyRegex.MatchString(s) {
		return nil, ErrInvalidSecretFormat
	}

	key, err := b32.DecodeString(s)
	if err != nil {
		// the decode error carries the offending byte offset only
		return nil, errors.Join(ErrInvalidSecretFormat, err)
	}
	if len(key) < MinSecretSize {
		return nil, ErrInvalidSecretFormat
	}
	return key, nil
}

// Base32 returns the unpadded uppercase RFC 4648 form of the secret.
func (s Secret) Base32() string {
	return b32.EncodeToString(s)
}

// Bits returns the secret length in bits.
func (s Secret) Bits() int {
	return len(s) * 8
}

// Equal reports whether both secrets hold the same bytes in constant time.
func (s Secret) Equal(other Secret) bool {
	return subtle.ConstantTimeCompare(s, other) == 1
}

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return redacted
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// NormalizeSecret turns a secret as a person types or pastes it into canonical
// form: spaces, tabs, newlines and dashes are removed, letters upper-cased and
// trailing padding dropped. The result still has to pass ParseSecret.
func NormalizeSecret(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(strings.ToUpper(s), "=")
}
