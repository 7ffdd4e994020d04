package storage

import "time"

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	key         string
	prefix      string
	contentType string
	acl         ACL
	rules       []ValidationRule
}

func newPutOptions(acl ACL, opts []Option) *putOptions {
	o := &putOptions{acl: acl}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithKey stores the file under key, overwriting any existing file.
func WithKey(key string) Option {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix puts generated keys under prefix, e.g. "articles" gives
// "articles/01J...jpg".
func WithPrefix(prefix string) Option {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithContentType skips content sniffing.
func WithContentType(ct string) Option {
	return func(o *putOptions) { o.contentType = ct }
}

// WithACL overrides the backend's default ACL.
func WithACL(acl ACL) Option {
	return func(o *putOptions) { o.acl = acl }
}

// WithValidation rejects the upload with a *FileValidationError when a rule fails.
func WithValidation(rules ...ValidationRule) Option {
	return func(o *putOptions) { o.rules = append(o.rules, rules...) }
}

// URLOption configures URL.
type URLOption func(*urlOptions)

type urlOptions struct {
	download string
	expiry   time.Duration
	signed   bool
	public   bool
}

func newURLOptions(opts []URLOption) *urlOptions {
	o := &urlOptions{expiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithExpiry sets how long a signed URL stays valid.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) { o.expiry = d }
}

// WithDownload makes the browser save the file as filename. Implies a signed URL.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.download = filename
		o.signed = true
	}
}

// WithSigned forces a signed URL. A zero expiry keeps the default.
func WithSigned(expiry time.Duration) URLOption {
	return func(o *urlOptions) {
		o.signed = true
		if expiry > 0 {
			o.expiry = expiry
		}
	}
}

// WithPublic returns the unsigned address. The file must be readable publicly.
func WithPublic() URLOption {
	return func(o *urlOptions) { o.public = true }
}
