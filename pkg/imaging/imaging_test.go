package imaging_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/imaging"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func TestScale(t *testing.T) {
	t.Parallel()

	src := solid(400, 200)
	tests := []struct {
		name string
		opts imaging.Options
		w, h int
	}{
		{name: "fit box", opts: imaging.Options{Width: 100, Height: 100}, w: 100, h: 50},
		{name: "fit width only", opts: imaging.Options{Width: 200}, w: 200, h: 100},
		{name: "fit height only", opts: imaging.Options{Height: 50}, w: 100, h: 50},
		{name: "fit no upscale", opts: imaging.Options{Width: 800, Height: 800}, w: 400, h: 200},
		{name: "fit upscale", opts: imaging.Options{Width: 800, Upscale: true}, w: 800, h: 400},
		{name: "fill", opts: imaging.Options{Width: 100, Height: 100, Mode: imaging.Fill}, w: 100, h: 100},
		{name: "stretch", opts: imaging.Options{Width: 30, Height: 90, Mode: imaging.Stretch}, w: 30, h: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dst, err := imaging.Scale(src, tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.w, dst.Bounds().Dx())
			require.Equal(t, tt.h, dst.Bounds().Dy())
		})
	}
}

func TestScale_InvalidSize(t *testing.T) {
	t.Parallel()

	src := solid(10, 10)
	for _, opts := range []imaging.Options{
		{},
		{Width: -1, Height: 5},
		{Width: 10, Mode: imaging.Fill},
		{Height: 10, Mode: imaging.Stretch},
	} {
		_, err := imaging.Scale(src, opts)
		require.ErrorIs(t, err, imaging.ErrInvalidSize)
	}
}

func TestResize(t *testing.T) {
	t.Parallel()

	img, err := imaging.Resize(bytes.NewReader(encodePNG(t, 64, 32)), imaging.Options{Width: 16})
	require.NoError(t, err)
	require.Equal(t, imaging.PNG, img.Format)
	require.Equal(t, "image/png", img.ContentType())
	require.Equal(t, 16, img.Width)
	require.Equal(t, 8, img.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 16, cfg.Width)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, solid(50, 50), nil))
	img, err = imaging.Resize(&jpg, imaging.Options{Width: 10, Height: 10, Mode: imaging.Fill, Quality: 60})
	require.NoError(t, err)
	require.Equal(t, imaging.JPEG, img.Format)
	require.Equal(t, 10, img.Width)
}

func TestResize_Errors(t *testing.T) {
	t.Parallel()

	_, err := imaging.Resize(strings.NewReader("not an image"), imaging.Options{Width: 10})
	require.ErrorIs(t, err, imaging.ErrDecode)

	_, err = imaging.Resize(bytes.NewReader(encodePNG(t, 4, 4)), imaging.Options{Width: 2, Format: "tiff"})
	require.ErrorIs(t, err, imaging.ErrUnsupportedFormat)
}

func TestThumbnailKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "articles/a_200x100.jpg", imaging.ThumbnailKey("articles/a.png", 200, 100, imaging.JPEG))
	require.Equal(t, "raw_8x8.png", imaging.ThumbnailKey("raw", 8, 8, imaging.PNG))
}

func TestThumbnailTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := storage.NewDir(t.TempDir(), "/uploads")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	info, err := storage.PutBytes(ctx, store, encodePNG(t, 120, 60), storage.WithPrefix("covers"))
	require.NoError(t, err)

	task := imaging.NewThumbnailTask(store, 40, 40)
	require.Equal(t, imaging.ThumbnailTaskName, task.Name())
	require.NoError(t, task.Handle(ctx, imaging.ThumbnailPayload{Key: info.Key}))

	rc, err := store.Get(ctx, imaging.ThumbnailKey(info.Key, 40, 40, imaging.JPEG))
	require.NoError(t, err)
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 40, cfg.Width)
	require.Equal(t, 40, cfg.Height)

	fit := imaging.NewThumbnailTask(store, 0, 0, imaging.WithThumbnailMode(imaging.Fit), imaging.WithThumbnailFormat(imaging.PNG))
	require.NoError(t, fit.Handle(ctx, imaging.ThumbnailPayload{Key: info.Key, Width: 30}))
	_, err = store.Get(ctx, imaging.ThumbnailKey(info.Key, 30, 0, imaging.PNG))
	require.NoError(t, err)

	err = task.Handle(ctx, imaging.ThumbnailPayload{Key: "covers/missing.png"})
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, task.Handle(ctx, imaging.ThumbnailPayload{}), storage.ErrInvalidKey)
}
