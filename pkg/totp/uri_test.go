package totp_test

import (
	"bytes"
	"image/png"
	"net/url"
	"testing"

	"github.com/pquerna/otp"

	"github.com/dmitrymomot/mfakit/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.URIParams
		want    string
		wantErr error
	}{
		{
			name: "Basic URI",
			params: totp.URIParams{
				Secret:      "JBSWY3DPEHPK3PXP",
				AccountName: "alice",
				Issuer:      "MyService",
				Digits:      6,
				Period:      30,
			},
			want: "otpauth://totp/MyService:alice?secret=JBSWY3DPEHPK3PXP&issuer=MyService&algorithm=SHA1&digits=6&period=30",
		},
		{
			name: "URI with special characters",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test+user@example.com",
				Issuer:      "Test & App",
			},
			want: "otpauth://totp/Test%20%26%20App:test%2Buser%40example.com?secret=ABCDEFGHIJKLMNOP&issuer=Test%20%26%20App&algorithm=SHA1&digits=6&period=30",
		},
		{
			name: "URI without issuer",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "bob",
				Algorithm:   totp.AlgorithmSHA256,
				Digits:      8,
				Period:      60,
			},
			want: "otpauth://totp/bob?secret=ABCDEFGHIJKLMNOP&algorithm=SHA256&digits=8&period=60",
		},
		{
			name:    "Empty label",
			params:  totp.URIParams{Secret: "ABCDEFGHIJKLMNOP", AccountName: " ", Issuer: "MyService"},
			wantErr: totp.ErrEmptyLabel,
		},
		{
			name:    "Empty secret",
			params:  totp.URIParams{AccountName: "alice", Issuer: "MyService"},
			wantErr: totp.ErrEmptySecret,
		},
		{
			name:    "Invalid secret",
			params:  totp.URIParams{Secret: "abc!", AccountName: "alice", Issuer: "MyService"},
			wantErr: totp.ErrInvalidSecretFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.BuildURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURI_RequiredSubstrings(t *testing.T) {
	t.Parallel()
	uri, err := totp.BuildURI(totp.URIParams{
		Secret:      "JBSWY3DPEHPK3PXP",
		AccountName: "alice",
		Issuer:      "MyService",
		Digits:      6,
		Period:      30,
	})
	require.NoError(t, err)
	for _, s := range []string{"secret=JBSWY3DPEHPK3PXP", "issuer=MyService", "digits=6", "period=30"} {
		assert.Contains(t, uri, s)
	}

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", parsed.Scheme)
	assert.Equal(t, "totp", parsed.Host)
}

func TestBuildURI_ReadableByAuthenticatorLibrary(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	uri, err := totp.BuildURI(totp.ParamsFromConfig(totp.Config{Issuer: "Acme Corp"}, "alice@example.com", secret.Base32()))
	require.NoError(t, err)

	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)
	assert.Equal(t, "totp", key.Type())
	assert.Equal(t, "Acme Corp", key.Issuer())
	assert.Equal(t, "alice@example.com", key.AccountName())
	assert.Equal(t, secret.Base32(), key.Secret())
	assert.Equal(t, uint64(30), key.Period())
	assert.Equal(t, otp.DigitsSix, key.Digits())
	assert.Equal(t, otp.AlgorithmSHA1, key.Algorithm())
}

func TestRenderQR(t *testing.T) {
	t.Parallel()
	uri, err := totp.BuildURI(totp.URIParams{Secret: "JBSWY3DPEHPK3PXP", AccountName: "alice", Issuer: "MyService"})
	require.NoError(t, err)

	t.Run("default square", func(t *testing.T) {
		t.Parallel()
		data, err := totp.RenderQR(uri, totp.DefaultQRSize, totp.DefaultQRSize)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 200, img.Bounds().Dy())
	})

	t.Run("rectangle", func(t *testing.T) {
		t.Parallel()
		data, err := totp.RenderQR(uri, 320, 240)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 320, img.Bounds().Dx())
		assert.Equal(t, 240, img.Bounds().Dy())
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		t.Parallel()
		for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, 100}, {100, -5}} {
			data, err := totp.RenderQR(uri, dims[0], dims[1])
			assert.ErrorIs(t, err, totp.ErrInvalidDimensions)
			assert.Nil(t, data)
		}
	})

	t.Run("too small to hold the code", func(t *testing.T) {
		t.Parallel()
		_, err := totp.RenderQR(uri, 10, 10)
		assert.ErrorIs(t, err, totp.ErrInvalidDimensions)
	})

	t.Run("empty uri", func(t *testing.T) {
		t.Parallel()
		_, err := totp.RenderQR("  ", 200, 200)
		assert.ErrorIs(t, err, totp.ErrEmptyURI)
		assert.ErrorIs(t, err, totp.ErrEmptySecret)
	})
}
