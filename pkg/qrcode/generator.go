package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// Error variables for QR code generation
var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrInvalidDimensions is returned when a requested width or height is not positive.
	ErrInvalidDimensions = errors.New("width and height must be positive")
	// ErrSizeTooSmall is returned when the canvas cannot hold every module of the code.
	ErrSizeTooSmall = errors.New("image is too small for the QR code")
	// ErrorFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrorFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// DefaultSize is the side in pixels used when no size is specified
const DefaultSize = 200

// Generate creates a square QR code image in PNG format with the given content.
// A non-positive size falls back to DefaultSize.
func Generate(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return GenerateRect(content, size, size)
}

// GenerateRect creates a width x height PNG with the QR code centered on a white
// background. The code itself is square with a side of min(width, height).
func GenerateRect(content string, width, height int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	q, err := skipqrcode.New(content, skipqrcode.Medium)
	if err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}

	// Image grows beyond the requested side when the symbol needs more pixels
	code := q.Image(min(width, height))
	codeBounds := code.Bounds()
	if codeBounds.Dx() > width || codeBounds.Dy() > height {
		return nil, ErrSizeTooSmall
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	offset := image.Pt((width-codeBounds.Dx())/2, (height-codeBounds.Dy())/2)
	draw.Draw(canvas, codeBounds.Add(offset), code, codeBounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	return buf.Bytes(), nil
}

// GenerateBase64Image creates a data URI of a square QR code image with the given
// content, ready to be embedded in HTML:
//
//	<img src="{{.QrCode}}">
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}

// DataURI wraps PNG bytes into a data:image/png;base64 URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
