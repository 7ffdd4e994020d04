package storage

import (
	"context"
	"io"
	"time"
)

// Storage keeps uploaded files.
type Storage interface {
	// Put stores r under a generated or explicit key. size is the content
	// length in bytes.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get opens a stored file. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, key string) error

	// URL returns an address the browser can fetch the file from.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// FileInfo describes a stored file.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL is the access level of a stored file.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion    = "us-east-1"
	DefaultURLExpiry = 15 * time.Minute
)

// Config configures the S3 backend. Fields map to environment variables.
type Config struct {
	Bucket     string `env:"STORAGE_BUCKET"`
	AccessKey  string `env:"STORAGE_ACCESS_KEY"`
	SecretKey  string `env:"STORAGE_SECRET_KEY"`
	Endpoint   string `env:"STORAGE_ENDPOINT"`
	Region     string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	PublicURL  string `env:"STORAGE_PUBLIC_URL"`
	DefaultACL ACL    `env:"STORAGE_DEFAULT_ACL" envDefault:"private"`
	PathStyle  bool   `env:"STORAGE_PATH_STYLE"`
}

// Enabled reports whether enough is set to reach a bucket.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
}
