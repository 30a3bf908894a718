// Package totp implements Time-based One-Time Passwords (RFC 6238) on top of the
// HMAC-based algorithm from RFC 4226, together with the helpers needed to enroll
// an authenticator app.
//
// The package is self-contained: it depends on no third-party TOTP library and
// holds no process-wide mutable state apart from the once-loaded environment
// configuration, so every function is safe for concurrent use.
//
// # Architecture
//
// The package is split into small cohesive pieces.
//
//   • secret    – secret.go generates 160-bit secrets from crypto/rand and converts
//     them to and from unpadded Base32. Secret redacts itself when printed or logged.
//
//   • clock     – clock.go maps wall-clock time to time-step counters and reports the
//     seconds left in the current step. The time source is injectable.
//
//   • algorithm – otp.go implements dynamic truncation (GenerateHOTP) and the
//     ComputeCode/GenerateCode helpers for SHA1, SHA256 and SHA512.
//
//   • validator – validator.go checks a submitted code against a secret, exact step
//     first and then the neighbouring steps allowed by Config.ToleranceSteps.
//
//   • uri       – uri.go builds otpauth:// URIs and renders them as PNG QR codes.
//
//   • crypto    – aes256.go seals secrets with AES-256-GCM for storage at rest.
//
// Configuration is an explicit Config value. LoadConfig reads it from TOTP_*
// environment variables once per process.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.BuildURI(totp.ParamsFromConfig(cfg, "alice@example.com", secret.Base32()))
//	png, _ := totp.RenderQR(uri, totp.DefaultQRSize, totp.DefaultQRSize)
//
//	v := totp.NewValidator(cfg)
//	if err := v.Validate(secret.Base32(), "123456"); err != nil {
//	    switch {
//	    case errors.Is(err, totp.ErrCodeMismatch):
//	        // ask the user to retry
//	    case errors.Is(err, totp.ErrInvalidCodeFormat):
//	        // show a format hint
//	    }
//	}
//
// # Error Handling
//
// Every operation returns a package-level sentinel, possibly wrapped with
// errors.Join. Inspect errors with errors.Is against ErrEmptySecret,
// ErrInvalidSecretFormat, ErrEmptyCode, ErrInvalidCodeFormat, ErrCodeMismatch,
// ErrInvalidDimensions, ErrEmptyLabel and friends. Secret material never appears
// in error messages.
//
// # See Also
//
//   • RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   • RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
//   • https://github.com/google/google-authenticator/wiki/Key-Uri-Format
package totp
