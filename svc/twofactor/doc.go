// Package twofactor manages the lifecycle of a TOTP second factor for an account.
//
// A credential moves between three states:
//
//	not_configured --setup--> pending_verification --enable--> enabled
//	enabled --reset--> pending_verification
//	enabled|pending_verification --disable--> not_configured
//
// Manager implements the transitions as pure functions over a Credential value.
// Each decision runs the transition table through a short-lived
// statemachine.StateMachine whose disable guards check policy first.
// It generates setup material, activates a secret only after a matching code,
// refuses to disable accounts the PolicyChecker marks as privileged and
// demands the current code before rotating an enabled secret.
//
// Service wires a Manager to a Storage implementation for the common account
// settings workflow. It serializes operations per account and has optional
// collaborators:
//
//   • WithEncryptionKey seals secrets at rest with AES-256-GCM (totp.EncryptSecret).
//   • WithReplayGuard rejects a code that was already accepted (package replay).
//   • WithAttemptLimiter caps code guesses per account (package throttle).
//
// # Usage
//
//	mgr, err := twofactor.NewManager(totpCfg,
//	    twofactor.WithPolicy(twofactor.PolicyFunc(isAdmin)),
//	    twofactor.WithLogger(log),
//	)
//	svc := twofactor.NewService(mgr, store,
//	    twofactor.WithReplayGuard(twofactor.NewReplayGuard(cfg, totpCfg, replay.NewRedisStore(rdb))),
//	    twofactor.WithAttemptLimiter(limiter),
//	)
//
//	material, err := svc.Setup(ctx, accountID, "alice@example.com")
//	png, err := mgr.QRCode(material, 0, 0)
//	// user scans the code, then types the current code
//	_, err = svc.Confirm(ctx, accountID, code)
//
// # Error Handling
//
// Validation errors from package totp pass through unchanged, so callers can
// tell totp.ErrCodeMismatch from ErrNotConfigured or ErrPolicyViolation.
// Storage failures are joined with ErrStorage. ErrCodeReused and
// ErrTooManyAttempts report the replay guard and the attempt limiter.
package twofactor
