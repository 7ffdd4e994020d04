package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Dir stores files in a local directory and serves them from a URL prefix,
// typically a static route such as "/uploads". It suits development and
// single-server deployments.
type Dir struct {
	root    *os.Root
	baseURL string
}

var _ Storage = (*Dir)(nil)

// NewDir opens or creates dir.
func NewDir(dir, baseURL string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Dir{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// FS exposes the directory for serving with http.FileServerFS.
func (d *Dir) FS() fs.FS { return d.root.FS() }

// Close releases the directory handle.
func (d *Dir) Close() error { return d.root.Close() }

// Put writes r to the directory. ACLs are recorded but not enforced.
func (d *Dir) Put(_ context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := newPutOptions(ACLPublicRead, opts)

	contentType, body, err := sniff(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if o.contentType != "" {
		contentType = o.contentType
	}
	if err := ValidateReader(size, contentType, o.rules...); err != nil {
		return nil, err
	}

	key := o.key
	if key == "" {
		key = newKey(o.prefix, contentType)
	} else if err := checkKey(key); err != nil {
		return nil, err
	}

	if dir := path.Dir(key); dir != "." {
		if err := d.root.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}
	f, err := d.root.Create(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &FileInfo{Key: key, Size: n, ContentType: contentType, ACL: o.acl}, nil
}

// Get opens a stored file.
func (d *Dir) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	f, err := d.root.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored file.
func (d *Dir) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := d.root.Remove(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// URL joins the base URL and key. Signing options are ignored.
func (d *Dir) URL(_ context.Context, key string, _ ...URLOption) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return d.baseURL + "/" + key, nil
}
