package main

import (
	"bytes"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/totp"
)

func execute(t *testing.T, cfg totp.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testConfig() totp.Config {
	cfg := totp.DefaultConfig()
	cfg.Issuer = "MyService"
	return cfg
}

func TestSecretCmd(t *testing.T) {
	t.Parallel()
	out, err := execute(t, testConfig(), "secret")
	require.NoError(t, err)

	secret, err := totp.ParseSecret(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, 160, secret.Bits())

	_, err = execute(t, testConfig(), "secret", "--size", "8")
	assert.ErrorIs(t, err, totp.ErrSecretTooShort)
}

func TestCodeCmd(t *testing.T) {
	t.Parallel()
	out, err := execute(t, testConfig(), "code", "JBSWY3DPEHPK3PXP", "--at", "59")
	require.NoError(t, err)
	assert.Equal(t, "996554 (1s left)\n", out)

	// typed input is normalized before parsing
	out, err = execute(t, testConfig(), "code", "jbsw-y3dp ehpk-3pxp", "--at", "59")
	require.NoError(t, err)
	assert.Equal(t, "996554 (1s left)\n", out)

	_, err = execute(t, testConfig(), "code", "not-base32!")
	assert.ErrorIs(t, err, totp.ErrInvalidSecretFormat)
}

func TestVerifyCmd(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	code, err := totp.GenerateCode(secret, totp.NewClock().Now(), totp.DefaultConfig())
	require.NoError(t, err)

	out, err := execute(t, testConfig(), "verify", secret.Base32(), code, "--redis-url", "")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = execute(t, testConfig(), "verify", strings.ToLower(secret.Base32()), " "+code+"\n", "--redis-url", "")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, err = execute(t, testConfig(), "verify", secret.Base32(), "12345", "--redis-url", "")
	assert.ErrorIs(t, err, totp.ErrInvalidCodeFormat)
}

func TestURICmd(t *testing.T) {
	t.Parallel()
	out, err := execute(t, testConfig(), "uri", "alice", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, "otpauth://totp/MyService:alice?secret=JBSWY3DPEHPK3PXP&issuer=MyService&algorithm=SHA1&digits=6&period=30\n", out)

	out, err = execute(t, testConfig(), "uri", "alice", "jbsw y3dp ehpk 3pxp")
	require.NoError(t, err)
	assert.Contains(t, out, "secret=JBSWY3DPEHPK3PXP&")

	out, err = execute(t, testConfig(), "uri", "alice", "JBSWY3DPEHPK3PXP", "--digits", "8", "--algorithm", "sha-256")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm=SHA256&digits=8")

	_, err = execute(t, testConfig(), "uri", "alice", "JBSWY3DPEHPK3PXP", "--algorithm", "md5")
	assert.ErrorIs(t, err, totp.ErrUnsupportedAlgorithm)
}

func TestQRCmd(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "qr.png")
	_, err := execute(t, testConfig(), "qr", "alice", "JBSWY3DPEHPK3PXP", "-o", path, "--width", "320", "--height", "240")
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())

	_, err = execute(t, testConfig(), "qr", "alice", "JBSWY3DPEHPK3PXP", "--width", "-1")
	assert.ErrorIs(t, err, totp.ErrInvalidDimensions)
}

func TestKeygenCmd(t *testing.T) {
	t.Parallel()
	out, err := execute(t, testConfig(), "keygen")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.EncryptionKey = strings.TrimSpace(out)
	key, err := totp.GetEncryptionKey(cfg)
	require.NoError(t, err)
	assert.Len(t, key, totp.AESKeySize)

	out, err = execute(t, cfg, "keygen", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	_, err = execute(t, testConfig(), "keygen", "--check")
	assert.ErrorIs(t, err, totp.ErrEncryptionKeyNotSet)
}
