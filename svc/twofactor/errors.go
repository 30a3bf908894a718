package twofactor

import "errors"

var (
	ErrPolicyViolation    = errors.New("account policy requires two-factor authentication to stay enabled")
	ErrNotConfigured      = errors.New("two-factor authentication is not configured")
	ErrNotEnabled         = errors.New("two-factor authentication is not enabled")
	ErrEmptyAccountID     = errors.New("account ID is required")
	ErrCodeReused         = errors.New("verification code has already been used")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
	ErrCredentialNotFound = errors.New("two-factor credential not found")
	ErrStorage            = errors.New("two-factor credential storage failure")
)
