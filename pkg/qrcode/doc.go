// Package qrcode renders QR code images as PNG bytes or as data URIs that can be
// embedded directly into HTML pages.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode that adds
// input validation, rectangular canvases and data-URI helpers. It is used to
// show otpauth:// provisioning URIs to users enrolling an authenticator app.
//
// # Usage
//
//	// Square PNG, DefaultSize when size <= 0
//	img, err := qrcode.Generate("otpauth://totp/Acme:alice?secret=...", 0)
//
//	// 320x240 PNG with the code centered
//	img, err = qrcode.GenerateRect("otpauth://totp/Acme:alice?secret=...", 320, 240)
//
//	// <img src="..."> friendly
//	uri := qrcode.DataURI(img)
//
// # Error Handling
//
// The functions return sentinel errors to be compared with errors.Is:
// ErrEmptyContent, ErrInvalidDimensions, ErrSizeTooSmall and
// ErrorFailedToGenerateQRCode.
package qrcode
