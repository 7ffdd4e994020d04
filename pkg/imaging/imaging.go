package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Mode selects how an image is fitted into the target box.
type Mode uint8

const (
	// Fit scales the image to fit inside the box, keeping its aspect ratio.
	// Either dimension may be zero to derive it from the other.
	Fit Mode = iota
	// Fill scales the image to cover the box and crops the overflow from the center.
	Fill
	// Stretch scales to exactly the box, ignoring aspect ratio.
	Stretch
)

// Format is an output encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Ext returns the file extension of the format.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpg"
}

const (
	DefaultQuality = 85
	// MaxPixels caps the decoded source size.
	MaxPixels = 50_000_000
)

// Options describes a resize.
type Options struct {
	// Format of the output. Empty keeps JPEG sources as JPEG and writes PNG
	// for everything else.
	Format  Format
	Width   int
	Height  int
	Quality int
	Mode    Mode
	// Upscale allows Fit to enlarge images smaller than the box.
	Upscale bool
}

// Image is an encoded result.
type Image struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// ContentType returns the MIME type of the encoded data.
func (i *Image) ContentType() string { return i.Format.ContentType() }

// Resize decodes a JPEG, PNG, GIF, WebP or BMP image from r, scales it and
// encodes the result.
func Resize(r io.Reader, opts Options) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	cfg, srcFormat, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	dst, err := Scale(src, opts)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = PNG
		if srcFormat == "jpeg" {
			format = JPEG
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, dst, format, opts.Quality); err != nil {
		return nil, err
	}
	b := dst.Bounds()
	return &Image{Data: buf.Bytes(), Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// Scale resizes src with Catmull-Rom resampling.
func Scale(src image.Image, opts Options) (image.Image, error) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidSize)
	}
	w, h := opts.Width, opts.Height
	if w < 0 || h < 0 || (w == 0 && h == 0) {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}

	srcRect := sb
	switch opts.Mode {
	case Fit:
		scale := math.Inf(1)
		if w > 0 {
			scale = float64(w) / float64(sw)
		}
		if h > 0 {
			scale = math.Min(scale, float64(h)/float64(sh))
		}
		if scale > 1 && !opts.Upscale {
			scale = 1
		}
		w = max(1, int(math.Round(float64(sw)*scale)))
		h = max(1, int(math.Round(float64(sh)*scale)))
	case Fill:
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("%w: fill needs both dimensions", ErrInvalidSize)
		}
		srcRect = cropToAspect(sb, w, h)
	case Stretch:
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("%w: stretch needs both dimensions", ErrInvalidSize)
		}
	default:
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidSize, opts.Mode)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcRect, draw.Src, nil)
	return dst, nil
}

// cropToAspect returns the largest centered rectangle of b with aspect w:h.
func cropToAspect(b image.Rectangle, w, h int) image.Rectangle {
	sw, sh := b.Dx(), b.Dy()
	if sw*h > sh*w {
		cw := max(1, sh*w/h)
		x := b.Min.X + (sw-cw)/2
		return image.Rect(x, b.Min.Y, x+cw, b.Max.Y)
	}
	ch := max(1, sw*h/w)
	y := b.Min.Y + (sh-ch)/2
	return image.Rect(b.Min.X, y, b.Max.X, y+ch)
}

// Encode writes img as JPEG or PNG. Quality applies to JPEG only; zero
// selects DefaultQuality.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	var err error
	switch format {
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	return nil
}
