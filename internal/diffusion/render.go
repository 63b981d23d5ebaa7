package diffusion

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// ErrUnknownFormat is returned for an image format other than webp or tga.
var ErrUnknownFormat = errors.New("diffusion: unknown image format")

// Format is an output image encoding.
type Format string

const (
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts "webp" or "tga" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case WebP, TGA:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Render draws m with one pixel per cell, input bits as rows, and scales it
// up by scale with nearest-neighbor sampling. A probability of 0.5 is mid
// gray; red marks cells that flip too often and blue too rarely.
func Render(m *Matrix, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}

	src := image.NewNRGBA(image.Rect(0, 0, m.Out, m.In))
	for i := 0; i < m.In; i++ {
		for j := 0; j < m.Out; j++ {
			src.SetNRGBA(j, i, cellColor(m.At(i, j)))
		}
	}
	if scale == 1 {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, m.Out*scale, m.In*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func cellColor(p float64) color.NRGBA {
	g := uint8(p*255 + 0.5)
	c := color.NRGBA{R: g, G: g, B: g, A: 255}

	d := p - 0.5
	switch {
	case d > 0.1:
		c.R = 255
	case d < -0.1:
		c.B = 255
	}
	return c
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("diffusion: webp encode: %w", err)
		}
	case TGA:
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("diffusion: tga encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	return nil
}
