package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
)

// PutFile stores a multipart upload. Validation rules see the sniffed type,
// not the client-supplied one.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open upload: %w", err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}

// PutBytes stores data.
func PutBytes(ctx context.Context, s Storage, data []byte, opts ...Option) (*FileInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}
