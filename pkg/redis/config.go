package redis

import "time"

// Config describes the Redis server shared by the replay guard and the attempt limiter.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // Format "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // Connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`   // Pause between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"` // Upper bound for all attempts together
}
