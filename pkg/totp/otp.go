package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"strings"
	"time"
)

const (
	DefaultDigits         = 6  // Standard 6-digit TOTP codes
	MinDigits             = 6  // RFC 4226 requires at least 6 digits
	MaxDigits             = 8  // Largest length authenticator apps support
	DefaultPeriod         = 30 // 30-second validity window (RFC 6238 standard)
	DefaultToleranceSteps = 1  // One step of drift on each side
	MaxToleranceSteps     = 10
	DefaultQRSize         = 200

	DefaultAlgorithm = AlgorithmSHA1 // HMAC-SHA1 algorithm (RFC 6238 standard)
)

// Algorithm names the HMAC hash used to derive codes.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

// Valid reports whether the algorithm is supported.
func (a Algorithm) Valid() bool {
	return a.hash() != nil
}

func (a Algorithm) String() string {
	return string(a)
}

// UnmarshalText accepts algorithm names case-insensitively, with or without a dash.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v := Algorithm(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(string(text))), "-", ""))
	if !v.Valid() {
		return ErrUnsupportedAlgorithm
	}
	*a = v
	return nil
}

func (a Algorithm) hash() func() hash.Hash {
	switch a {
	case AlgorithmSHA1:
		return sha1.New
	case AlgorithmSHA256:
		return sha256.New
	case AlgorithmSHA512:
		return sha512.New
	}
	return nil
}

var pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm
// and returns the code left-padded with zeros to the requested number of digits.
func GenerateHOTP(key []byte, counter uint64, digits int, alg Algorithm) (string, error) {
	if len(key) == 0 {
		return "", ErrEmptySecret
	}
	if digits < MinDigits || digits > MaxDigits {
		return "", ErrInvalidDigits
	}
	newHash := alg.hash()
	if newHash == nil {
		return "", ErrUnsupportedAlgorithm
	}

	// Counter as big-endian 8-byte array (RFC 4226 requirement)
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 4-byte window,
	// MSB cleared to keep the value positive
	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", digits, truncated%pow10[digits]), nil
}

// ComputeCode derives the code of the given counter using the digits and algorithm from cfg.
func ComputeCode(secret Secret, counter uint64, cfg Config) (string, error) {
	cfg = cfg.WithDefaults()
	return GenerateHOTP(secret, counter, cfg.Digits, cfg.Algorithm)
}

// GenerateCode derives the code for the time step containing t.
// Useful for testing or generating codes for specific moments.
func GenerateCode(secret Secret, t time.Time, cfg Config) (string, error) {
	cfg = cfg.WithDefaults()
	clock := NewClock(WithStep(cfg.Period))
	return ComputeCode(secret, clock.CounterAt(t), cfg)
}
