// Package throttle limits how often a key may attempt an action using a token
// bucket. It is used to cap one-time password guesses per account: a six digit
// code has only a million values, so unlimited attempts would let an attacker
// enumerate the tolerance window.
//
// Limiter spends one token per attempt and refuses the attempt once the
// bucket is empty. Tokens come back at Config.RefillRate per
// Config.RefillInterval. Reset restores the full budget, typically after a
// successful verification.
//
// Stores:
//
//   • MemoryStore – mutex-protected map with periodic cleanup of idle buckets.
//   • RedisStore  – a Lua script on github.com/redis/go-redis/v9 so the refill
//     and take happen atomically for every instance.
//
// # Usage
//
//	limiter, err := throttle.NewLimiter(throttle.NewMemoryStore(), throttle.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	res, err := limiter.Allow(ctx, accountID.String())
//	if err != nil {
//	    return err
//	}
//	if !res.Allowed() {
//	    return fmt.Errorf("retry in %s", res.RetryAfter(time.Now()))
//	}
package throttle
