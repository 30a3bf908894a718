package totp

import "errors"

var (
	ErrEmptySecret          = errors.New("missing TOTP secret")
	ErrInvalidSecretFormat  = errors.New("invalid TOTP secret format")
	ErrSecretTooShort       = errors.New("TOTP secret is too short")
	ErrEmptyCode            = errors.New("missing TOTP code")
	ErrInvalidCodeFormat    = errors.New("invalid TOTP code format")
	ErrCodeMismatch         = errors.New("TOTP code does not match")
	ErrInvalidDimensions    = errors.New("invalid QR code dimensions")
	ErrEmptyLabel           = errors.New("missing account label")
	ErrEmptyURI             = errors.New("missing provisioning URI")
	ErrInvalidDigits        = errors.New("invalid number of TOTP digits")
	ErrUnsupportedAlgorithm = errors.New("unsupported TOTP algorithm")
	ErrInvalidPeriod        = errors.New("invalid TOTP period")
	ErrInvalidTolerance     = errors.New("invalid TOTP tolerance window")

	ErrFailedToGenerateSecret        = errors.New("failed to generate TOTP secret")
	ErrFailedToRenderQRCode          = errors.New("failed to render QR code")
	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
)
