// Package redis connects to the Redis server behind the shared replay and
// attempt-limit stores.
//
// Config is read from REDIS_* environment variables with
// github.com/caarlos0/env. Connect retries the first ping according to it, and
// Healthcheck wraps a client into a liveness probe.
//
// # Usage
//
//	var cfg redis.Config
//	if err := env.Parse(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err // errors.Is(err, redis.ErrRedisNotReady)
//	}
//	defer client.Close()
//
//	guard := replay.NewGuard(replay.NewRedisStore(client), ttl)
//	limiter, _ := throttle.NewLimiter(throttle.NewRedisStore(client), throttle.DefaultConfig())
package redis
