package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/dmitrymomot/mfakit/pkg/qrcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const provisioningURI = "otpauth://totp/MyService:alice?secret=JBSWY3DPEHPK3PXP&issuer=MyService&algorithm=SHA1&digits=6&period=30"

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "Result should be a valid PNG image")
	return img
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns error when content is empty", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.Generate("", 256)
		require.Nil(t, result)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("returns error when content is whitespace only", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.Generate("   \t\n", 256)
		require.Nil(t, result)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("generates QR code with requested size", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.Generate(provisioningURI, 256)
		require.NoError(t, err)

		img := decode(t, result)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	})

	t.Run("uses default size when size is not positive", func(t *testing.T) {
		t.Parallel()
		for _, size := range []int{0, -10} {
			result, err := qrcode.Generate(provisioningURI, size)
			require.NoError(t, err)

			img := decode(t, result)
			assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
			assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dy())
		}
	})
}

func TestGenerateRect(t *testing.T) {
	t.Parallel()

	t.Run("honours width and height", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.GenerateRect(provisioningURI, 400, 250)
		require.NoError(t, err)

		img := decode(t, result)
		assert.Equal(t, 400, img.Bounds().Dx())
		assert.Equal(t, 250, img.Bounds().Dy())

		// the code is centered, so the far left column stays blank
		r, g, b, _ := img.At(0, img.Bounds().Dy()/2).RGBA()
		white := color.White
		wr, wg, wb, _ := white.RGBA()
		assert.Equal(t, [3]uint32{wr, wg, wb}, [3]uint32{r, g, b})
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		t.Parallel()
		for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, -1}} {
			result, err := qrcode.GenerateRect(provisioningURI, dims[0], dims[1])
			assert.Nil(t, result)
			assert.ErrorIs(t, err, qrcode.ErrInvalidDimensions)
		}
	})

	t.Run("rejects canvas smaller than the symbol", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.GenerateRect(provisioningURI, 12, 300)
		assert.ErrorIs(t, err, qrcode.ErrSizeTooSmall)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.GenerateRect("", 100, 100)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestGenerateBase64Image(t *testing.T) {
	t.Parallel()

	t.Run("returns error when content is empty", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.GenerateBase64Image("", 256)
		require.Empty(t, result)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})

	t.Run("can decode base64 content to valid PNG", func(t *testing.T) {
		t.Parallel()
		result, err := qrcode.GenerateBase64Image(provisioningURI, 256)
		require.NoError(t, err)

		const prefix = "data:image/png;base64,"
		require.True(t, strings.HasPrefix(result, prefix))

		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(result, prefix))
		require.NoError(t, err)

		img := decode(t, decoded)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())
	})
}
