package totp

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg     Config
	cfgErr  error
	cfgOnce sync.Once
)

// Config holds the TOTP parameters shared by the code generator, the validator
// and the provisioning URI builder. Pass it explicitly; zero fields fall back to
// RFC 6238 defaults.
type Config struct {
	Issuer         string    `env:"TOTP_ISSUER"`                         // Service name shown in authenticator apps
	Digits         int       `env:"TOTP_DIGITS" envDefault:"6"`          // Code length
	Period         uint      `env:"TOTP_PERIOD" envDefault:"30"`         // Step length in seconds
	Algorithm      Algorithm `env:"TOTP_ALGORITHM" envDefault:"SHA1"`    // HMAC hash
	ToleranceSteps uint      `env:"TOTP_TOLERANCE_STEPS" envDefault:"1"` // Accepted steps on each side of now
	SecretSize     int       `env:"TOTP_SECRET_SIZE" envDefault:"20"`    // Generated secret length in bytes
	QRSize         int       `env:"TOTP_QR_SIZE" envDefault:"200"`       // Default QR image side in pixels
	EncryptionKey  string    `env:"TOTP_ENCRYPTION_KEY"`                 // Base64 AES-256 key for secrets at rest
}

// DefaultConfig returns the interoperable setup: 6 digits, 30 seconds, SHA1, ±1 step.
func DefaultConfig() Config {
	return Config{ToleranceSteps: DefaultToleranceSteps}.WithDefaults()
}

// WithDefaults returns a copy with defaults applied to zero-valued fields.
// ToleranceSteps is left alone since zero is a meaningful value.
func (c Config) WithDefaults() Config {
	if c.Digits == 0 {
		c.Digits = DefaultDigits
	}
	if c.Period == 0 {
		c.Period = DefaultPeriod
	}
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	if c.SecretSize == 0 {
		c.SecretSize = DefaultSecretSize
	}
	if c.QRSize == 0 {
		c.QRSize = DefaultQRSize
	}
	return c
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if c.Digits < MinDigits || c.Digits > MaxDigits {
		return ErrInvalidDigits
	}
	if c.Period == 0 {
		return ErrInvalidPeriod
	}
	if !c.Algorithm.Valid() {
		return ErrUnsupportedAlgorithm
	}
	if c.ToleranceSteps > MaxToleranceSteps {
		return ErrInvalidTolerance
	}
	if c.SecretSize < DefaultSecretSize {
		return ErrSecretTooShort
	}
	if c.QRSize < 0 {
		return ErrInvalidDimensions
	}
	return nil
}

// LoadConfig parses the TOTP_* environment variables once per process.
func LoadConfig() (Config, error) {
	cfgOnce.Do(func() {
		var c Config
		if err := env.Parse(&c); err != nil {
			cfgErr = err
			return
		}
		c = c.WithDefaults()
		if err := c.Validate(); err != nil {
			cfgErr = err
			return
		}
		cfg = c
	})
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	return cfg, nil
}
