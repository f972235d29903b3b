package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxDimension bounds the longer side sent to the model.
	DefaultMaxDimension = 1024
	// MaxPixels bounds the decoded size of an upload, about 160 MB as RGBA.
	MaxPixels   = 40_000_000
	jpegQuality = 85
)

// ErrTooManyPixels reports an image whose header declares more than MaxPixels.
var ErrTooManyPixels = errors.New("image dimensions too large")

// GetImageOrientation extracts the EXIF orientation from JPEG data using goexif library
func GetImageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient maps a source pixel to its position after applying an EXIF
// orientation to a w×h image.
func orient(orientation, x, y, w, h int) (int, int) {
	switch orientation {
	case 2: // mirror horizontal
		return w - 1 - x, y
	case 3: // rotate 180
		return w - 1 - x, h - 1 - y
	case 4: // mirror vertical
		return x, h - 1 - y
	case 5: // transpose
		return y, x
	case 6: // rotate 90 clockwise
		return h - 1 - y, x
	case 7: // transverse
		return h - 1 - y, w - 1 - x
	case 8: // rotate 90 counter-clockwise
		return y, w - 1 - x
	default:
		return x, y
	}
}

// CorrectImageOrientation returns img with the EXIF orientation applied.
func CorrectImageOrientation(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := orient(orientation, x, y, w, h)
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Normalize prepares an upload for the model: EXIF orientation is applied and
// the image is scaled so neither side exceeds maxDim, then re-encoded as JPEG.
// JPEGs already upright and within bounds are returned untouched. Data that
// cannot be decoded is passed through with its original MIME type. Images
// declaring more than MaxPixels fail with ErrTooManyPixels before decoding.
func Normalize(data []byte, mimeType string, maxDim int) ([]byte, string, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	// the header alone says how much a full decode would allocate
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
			return nil, "", fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
		}
	}
	orientation := GetImageOrientation(data)

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warnf("Image not decodable, sending as-is (%s, %d bytes): %v", mimeType, len(data), err)
		return data, mimeType, nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if format == "jpeg" && orientation == 1 && w <= maxDim && h <= maxDim {
		return data, "image/jpeg", nil
	}

	if orientation != 1 {
		img = CorrectImageOrientation(img, orientation)
		b = img.Bounds()
		w, h = b.Dx(), b.Dy()
	}

	nw, nh := fitWithin(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode normalized image: %w", err)
	}

	log.Infof("Image normalized: %d bytes -> %d bytes (%s %dx%d -> %dx%d, orientation: %d)",
		len(data), buf.Len(), format, w, h, nw, nh, orientation)
	return buf.Bytes(), "image/jpeg", nil
}

// fitWithin scales w×h down, preserving aspect ratio, so both sides are at
// most max. Sizes already within bounds are kept.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	scale := float64(max) / float64(w)
	if s := float64(max) / float64(h); s < scale {
		scale = s
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw > max {
		nw = max
	}
	if nh > max {
		nh = max
	}
	return nw, nh
}
