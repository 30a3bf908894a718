package totp

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/mfakit/pkg/qrcode"
)

// URIParams contains the parameters for provisioning URI generation
type URIParams struct {
	Secret      string    // Base32-encoded secret (required)
	AccountName string    // Account label like an email (required)
	Issuer      string    // Service name displayed in authenticator apps (optional)
	Algorithm   Algorithm // Defaults to SHA1
	Digits      int       // Defaults to 6
	Period      uint      // Defaults to 30
}

// Validate ensures all required parameters are present and valid
func (p URIParams) Validate() error {
	if strings.TrimSpace(p.AccountName) == "" {
		return ErrEmptyLabel
	}
	if strings.TrimSpace(p.Secret) == "" {
		return ErrEmptySecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecretFormat
	}
	return nil
}

// GetDefaults returns a copy with RFC 6238 standard defaults applied to zero-valued fields
func (p URIParams) GetDefaults() URIParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// ParamsFromConfig fills the issuer, digits, period and algorithm from cfg.
func ParamsFromConfig(cfg Config, accountName, secret string) URIParams {
	cfg = cfg.WithDefaults()
	return URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      cfg.Issuer,
		Algorithm:   cfg.Algorithm,
		Digits:      cfg.Digits,
		Period:      cfg.Period,
	}
}

// BuildURI creates the otpauth:// URI consumed by authenticator apps:
//
//	otpauth://totp/{issuer}:{account}?secret=..&issuer=..&algorithm=SHA1&digits=6&period=30
//
// Parameters are always emitted in this order so the output is stable.
// See https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func BuildURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	params = params.GetDefaults()

	label := escape(params.AccountName)
	if params.Issuer != "" {
		label = escape(params.Issuer) + ":" + label
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(label)
	b.WriteString("?secret=")
	b.WriteString(params.Secret)
	if params.Issuer != "" {
		b.WriteString("&issuer=")
		b.WriteString(escape(params.Issuer))
	}
	b.WriteString("&algorithm=")
	b.WriteString(escape(params.Algorithm.String()))
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(params.Digits))
	b.WriteString("&period=")
	b.WriteString(strconv.FormatUint(uint64(params.Period), 10))

	return b.String(), nil
}

// RenderQR renders the provisioning URI as a width x height PNG image.
// A blank URI carries no secret and fails with ErrEmptySecret as well as ErrEmptyURI.
func RenderQR(uri string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if strings.TrimSpace(uri) == "" {
		return nil, errors.Join(ErrEmptyURI, ErrEmptySecret)
	}
	png, err := qrcode.GenerateRect(uri, width, height)
	if err != nil {
		if errors.Is(err, qrcode.ErrSizeTooSmall) {
			return nil, errors.Join(ErrInvalidDimensions, err)
		}
		return nil, errors.Join(ErrFailedToRenderQRCode, err)
	}
	return png, nil
}

// escape percent-encodes a URI component, spaces included, so the result is
// valid both in the label path and in the query.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
