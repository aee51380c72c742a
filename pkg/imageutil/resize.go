package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// FitWithin scales (w, h) down so the longer side is at most maxDimension, keeping aspect ratio.
func FitWithin(w, h, maxDimension int) (int, int) {
	if w <= maxDimension && h <= maxDimension {
		return w, h
	}
	if w >= h {
		return maxDimension, max(1, h*maxDimension/w)
	}
	return max(1, w*maxDimension/h), maxDimension
}

// MaxPixels bounds width*height before decoding; a small compressed file can declare a huge canvas.
const MaxPixels = 40_000_000

var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// CompressToJPEG decodes a JPEG, PNG or GIF, downscales it and re-encodes it as JPEG.
// Images larger than MaxPixels are rejected with ErrImageTooLarge before any pixel is decoded.
func CompressToJPEG(data []byte, maxDimension, quality int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header (format: %s): %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
