package imaging

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/dmitrymomot/ultralight/pkg/logger"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

// ThumbnailTaskName is the job name thumbnails are enqueued under.
const ThumbnailTaskName = "imaging.thumbnail"

// ThumbnailPayload identifies the stored image to thumbnail. Zero sizes fall
// back to the task's defaults.
type ThumbnailPayload struct {
	Key    string `json:"key"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ThumbnailTask reads an image from storage, resizes it and stores the
// result next to the original under ThumbnailKey. It is registered with
// job.WithTask.
type ThumbnailTask struct {
	store  storage.Storage
	logger *slog.Logger
	opts   Options
}

// ThumbnailOption configures a ThumbnailTask.
type ThumbnailOption func(*ThumbnailTask)

// WithThumbnailMode sets the resize mode. Default Fill.
func WithThumbnailMode(m Mode) ThumbnailOption {
	return func(t *ThumbnailTask) { t.opts.Mode = m }
}

// WithThumbnailFormat sets the output format. Default JPEG.
func WithThumbnailFormat(f Format) ThumbnailOption {
	return func(t *ThumbnailTask) { t.opts.Format = f }
}

// WithThumbnailLogger sets the logger.
func WithThumbnailLogger(l *slog.Logger) ThumbnailOption {
	return func(t *ThumbnailTask) { t.logger = l }
}

// NewThumbnailTask creates a task producing width x height thumbnails.
func NewThumbnailTask(store storage.Storage, width, height int, opts ...ThumbnailOption) *ThumbnailTask {
	t := &ThumbnailTask{
		store:  store,
		logger: logger.NewNope(),
		opts:   Options{Width: width, Height: height, Mode: Fill, Format: JPEG, Quality: DefaultQuality},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns ThumbnailTaskName.
func (t *ThumbnailTask) Name() string { return ThumbnailTaskName }

// Handle creates the thumbnail.
func (t *ThumbnailTask) Handle(ctx context.Context, p ThumbnailPayload) error {
	if p.Key == "" {
		return fmt.Errorf("%w: empty key", storage.ErrInvalidKey)
	}
	opts := t.opts
	if p.Width > 0 || p.Height > 0 {
		opts.Width, opts.Height = p.Width, p.Height
	}

	rc, err := t.store.Get(ctx, p.Key)
	if err != nil {
		return fmt.Errorf("imaging: read %s: %w", p.Key, err)
	}
	defer rc.Close()

	img, err := Resize(rc, opts)
	if err != nil {
		return fmt.Errorf("imaging: resize %s: %w", p.Key, err)
	}

	dst := ThumbnailKey(p.Key, opts.Width, opts.Height, img.Format)
	if _, err := storage.PutBytes(ctx, t.store, img.Data,
		storage.WithKey(dst),
		storage.WithContentType(img.ContentType()),
		storage.WithACL(storage.ACLPublicRead),
	); err != nil {
		return fmt.Errorf("imaging: store %s: %w", dst, err)
	}

	t.logger.InfoContext(ctx, "thumbnail created",
		slog.String("source", p.Key),
		slog.String("key", dst),
		slog.Int("width", img.Width),
		slog.Int("height", img.Height),
	)
	return nil
}

// ThumbnailKey derives the thumbnail key for an image key:
// "articles/a.png" at 200x100 JPEG becomes "articles/a_200x100.jpg".
func ThumbnailKey(key string, width, height int, format Format) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s_%dx%d%s", base, width, height, format.Ext())
}
