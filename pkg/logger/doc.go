// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// transparent injection of values stored in context.Context and masking of
// sensitive attribute values.
//
// # Architecture
//
// New picks slog.NewTextHandler or slog.NewJSONHandler based on the configured
// Format and wraps it with LogHandlerDecorator. The decorator runs registered
// ContextExtractor callbacks and replaces the value of every attribute whose key
// is listed in DefaultRedactedKeys (or added with WithRedactedKeys) with
// "[REDACTED]", groups included. TOTP secrets and codes therefore never reach the
// output even when logged by mistake.
//
// Helper constructors in attr.go (AccountID, State, Transition, Operation,
// Counter, Error...) keep attribute naming consistent across packages.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "twofactor"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	log.InfoContext(ctx, "totp enabled",
//	    logger.AccountID(accountID),
//	    logger.Transition("pending_verification", "enabled"),
//	)
//
// # Error Handling
//
// Error produces an attribute only for a non-nil error, so
//
//	log.Info("operation finished", logger.Error(err))
//
// needs no nil check.
package logger
