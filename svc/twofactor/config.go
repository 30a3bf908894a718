package twofactor

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"

	"github.com/dmitrymomot/mfakit/pkg/replay"
	"github.com/dmitrymomot/mfakit/pkg/throttle"
	"github.com/dmitrymomot/mfakit/pkg/totp"
)

// Config holds settings of the account workflow.
type Config struct {
	ReplayTTL       time.Duration   `env:"TWOFACTOR_REPLAY_TTL"`                               // Zero derives it from the TOTP window
	ReplayKeyPrefix string          `env:"TWOFACTOR_REPLAY_KEY_PREFIX" envDefault:"totp:used:"` // Namespace of used-code keys
	Attempts        throttle.Config `envPrefix:"TWOFACTOR_"`                                    // TWOFACTOR_THROTTLE_* code guess budget
}

var (
	cfg     Config
	cfgErr  error
	cfgOnce sync.Once
)

// LoadConfig parses the TWOFACTOR_* environment variables once per process.
func LoadConfig() (Config, error) {
	cfgOnce.Do(func() {
		cfgErr = env.Parse(&cfg)
	})
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	return cfg, nil
}

// ReplayTTLFor returns the configured TTL or, when unset, the full validation
// window of totpCfg.
func (c Config) ReplayTTLFor(totpCfg totp.Config) time.Duration {
	if c.ReplayTTL > 0 {
		return c.ReplayTTL
	}
	totpCfg = totpCfg.WithDefaults()
	return replay.TTLFor(time.Duration(totpCfg.Period)*time.Second, totpCfg.ToleranceSteps)
}

// NewReplayGuard builds a guard over store sized for totpCfg.
func NewReplayGuard(c Config, totpCfg totp.Config, store replay.Store) *replay.Guard {
	var opts []replay.Option
	if c.ReplayKeyPrefix != "" {
		opts = append(opts, replay.WithKeyPrefix(c.ReplayKeyPrefix))
	}
	return replay.NewGuard(store, c.ReplayTTLFor(totpCfg), opts...)
}

// NewAttemptLimiter builds the per-account code guess limiter over store.
func NewAttemptLimiter(c Config, store throttle.Store) (*throttle.Limiter, error) {
	attempts := c.Attempts
	if attempts == (throttle.Config{}) {
		attempts = throttle.DefaultConfig()
	}
	return throttle.NewLimiter(store, attempts)
}
