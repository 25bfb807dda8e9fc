package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"eventseating/internal/domain"
)

// DefaultSize is the edge length in pixels of rendered codes.
const DefaultSize = 256

type pngRenderer struct {
	size  int
	level qr.ErrorCorrectionLevel
}

// NewRenderer returns a CredentialRenderer producing square QR code PNGs of size pixels.
func NewRenderer(size int) domain.CredentialRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &pngRenderer{size: size, level: qr.M}
}

func (r *pngRenderer) Render(ctx context.Context, code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("empty code")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := qr.Encode(code, r.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(raw, r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
