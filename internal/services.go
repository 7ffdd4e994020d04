package internal

import (
	"io"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/ultralight/pkg/job"
	"github.com/dmitrymomot/ultralight/pkg/storage"
)

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookies().Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookies().Set(c.rw, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookies().Delete(c.rw, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.cookies().GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.cookies().SetSigned(c.rw, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.cookies().GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.cookies().SetEncrypted(c.rw, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.cookies().Flash(c.rw, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.cookies().SetFlash(c.rw, key, value)
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobs.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) EnqueueTx(tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobs.EnqueueTx(c.Context(), tx, name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.app.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.app.storage, nil
}

func (c *requestContext) Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	s, err := c.Storage()
	if err != nil {
		return nil, err
	}
	return s.Put(c.Context(), r, size, opts...)
}

func (c *requestContext) Download(key string) (io.ReadCloser, error) {
	s, err := c.Storage()
	if err != nil {
		return nil, err
	}
	return s.Get(c.Context(), key)
}

func (c *requestContext) DeleteFile(key string) error {
	s, err := c.Storage()
	if err != nil {
		return err
	}
	return s.Delete(c.Context(), key)
}

func (c *requestContext) FileURL(key string, opts ...storage.URLOption) (string, error) {
	s, err := c.Storage()
	if err != nil {
		return "", err
	}
	return s.URL(c.Context(), key, opts...)
}
