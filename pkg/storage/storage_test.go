package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ultralight/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newDir(t *testing.T) *storage.Dir {
	t.Helper()
	d, err := storage.NewDir(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := newDir(t)

	info, err := storage.PutBytes(ctx, d, pngHeader, storage.WithPrefix("articles/../covers"))
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)
	require.Equal(t, int64(len(pngHeader)), info.Size)
	require.Regexp(t, `^articles/covers/[0-9a-z]{26}\.png$`, info.Key)

	rc, err := d.Get(ctx, info.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, pngHeader, data)

	url, err := d.URL(ctx, info.Key)
	require.NoError(t, err)
	require.Equal(t, "/uploads/"+info.Key, url)

	_, err = d.Put(ctx, strings.NewReader("hello"), 5, storage.WithKey("notes/hello.txt"))
	require.NoError(t, err)
	f, err := d.FS().Open("notes/hello.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, d.Delete(ctx, info.Key))
	_, err = d.Get(ctx, info.Key)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, d.Delete(ctx, info.Key), storage.ErrNotFound)
}

func TestDir_InvalidKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := newDir(t)

	_, err := d.Get(ctx, "")
	require.ErrorIs(t, err, storage.ErrInvalidKey)

	for _, key := range []string{"/etc/passwd", "../escape.txt", "a/../../b", "a//b"} {
		_, err := d.Put(ctx, strings.NewReader("x"), 1, storage.WithKey(key))
		require.ErrorIs(t, err, storage.ErrInvalidKey, key)
		_, err = d.Get(ctx, key)
		require.ErrorIs(t, err, storage.ErrInvalidKey, key)
	}
}

func TestPut_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := newDir(t)

	tests := []struct {
		name string
		data []byte
		rule storage.ValidationRule
		code string
	}{
		{name: "too large", data: pngHeader, rule: storage.MaxSize(4), code: storage.ErrCodeFileTooLarge},
		{name: "too small", data: pngHeader, rule: storage.MinSize(1 << 10), code: storage.ErrCodeFileTooSmall},
		{name: "not an image", data: []byte("plain text"), rule: storage.ImageOnly(), code: storage.ErrCodeInvalidMIME},
		{name: "wrong family", data: pngHeader, rule: storage.AllowedTypes("video/*"), code: storage.ErrCodeInvalidMIME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := storage.PutBytes(ctx, d, tt.data, storage.WithValidation(tt.rule))
			var verr *storage.FileValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Equal(t, tt.code, verr.Code)
			require.Equal(t, "file", verr.Field)
		})
	}

	_, err := storage.PutBytes(ctx, d, pngHeader, storage.WithValidation(storage.NotEmpty(), storage.AllowedTypes("image/*")))
	require.NoError(t, err)

	_, err = storage.PutBytes(ctx, d, nil)
	require.ErrorIs(t, err, storage.ErrEmptyFile)
}

func TestValidateReader(t *testing.T) {
	t.Parallel()

	require.NoError(t, storage.ValidateReader(1024, "image/jpeg", storage.NotEmpty(), storage.MaxSize(5<<20), storage.ImageOnly()))
	require.NoError(t, storage.ValidateReader(1024, "image/jpeg"))
	require.NoError(t, storage.ValidateReader(1024, "IMAGE/PNG; charset=binary", storage.AllowedTypes("image/*")))

	var verr *storage.FileValidationError
	require.True(t, errors.As(storage.ValidateReader(0, "image/jpeg", storage.NotEmpty()), &verr))
	require.Equal(t, storage.ErrCodeEmptyFile, verr.Code)
	require.Equal(t, "file is empty", verr.Error())
}

func TestPutFile(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("cover", "cover.txt")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	fh := req.MultipartForm.File["cover"][0]

	require.Equal(t, "image/png", storage.DetectMIME(fh))
	require.True(t, storage.IsImage(fh))

	info, err := storage.PutFile(context.Background(), newDir(t), fh, storage.WithValidation(storage.ImageOnly()))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(info.Key, ".png"), info.Key)

	_, err = storage.PutFile(context.Background(), newDir(t), nil)
	require.ErrorIs(t, err, storage.ErrEmptyFile)
}

func TestS3_New(t *testing.T) {
	t.Parallel()

	_, err := storage.New(storage.Config{Bucket: "b"})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)

	s, err := storage.New(storage.Config{Bucket: "b", AccessKey: "k", SecretKey: "s", PublicURL: "https://cdn.example.com/"})
	require.NoError(t, err)

	url, err := s.URL(context.Background(), "a/b.png", storage.WithPublic())
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a/b.png", url)

	url, err = s.URL(context.Background(), "a/b.png", storage.WithDownload("b.png"))
	require.NoError(t, err)
	require.Contains(t, url, "X-Amz-Signature=")
	require.Contains(t, url, "response-content-disposition=")
}

func TestExtFromMIME(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".jpg", storage.ExtFromMIME("image/jpeg"))
	require.Equal(t, ".txt", storage.ExtFromMIME("Text/Plain; charset=utf-8"))
	require.Empty(t, storage.ExtFromMIME("application/x-unknown"))
}
