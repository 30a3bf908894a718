// Package replay prevents a one-time password from being accepted twice.
//
// A TOTP code stays valid for the whole tolerance window, so a code observed
// over the shoulder or replayed from a log can be reused until the window
// closes. Guard records every accepted (subject, counter) pair for a TTL that
// covers the window and rejects repeats with ErrReplayed.
//
// Two stores are provided:
//
//   • MemoryStore – a mutex-protected map with periodic purge, for single
//     instance deployments and tests.
//   • RedisStore  – SET NX PX on github.com/redis/go-redis/v9, shared by all
//     instances of a service.
//
// A client for RedisStore comes from pkg/redis.Connect.
//
// # Usage
//
//	guard := replay.NewGuard(replay.NewRedisStore(rdb), replay.TTLFor(30*time.Second, 1))
//
//	counter, err := validator.Verify(secret, code, time.Now())
//	if err != nil {
//	    return err
//	}
//	if err := guard.Check(ctx, accountID.String(), counter); err != nil {
//	    return err // errors.Is(err, replay.ErrReplayed)
//	}
package replay
