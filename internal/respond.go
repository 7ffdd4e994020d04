package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/ultralight/pkg/form"
	"github.com/dmitrymomot/ultralight/pkg/model"
)

const (
	mimeJSON = "application/json; charset=utf-8"
	mimeText = "text/plain; charset=utf-8"
	mimeHTML = "text/html; charset=utf-8"
)

func (c *requestContext) Blob(code int, contentType string, data []byte) error {
	if contentType != "" {
		c.rw.Header().Set("Content-Type", contentType)
	}
	c.rw.WriteHeader(code)
	_, err := c.rw.Write(data)
	return err
}

func (c *requestContext) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return c.Blob(code, mimeJSON, append(data, '\n'))
}

func (c *requestContext) String(code int, s string) error {
	return c.Blob(code, mimeText, []byte(s))
}

func (c *requestContext) HTML(code int, html string) error {
	return c.Blob(code, mimeHTML, []byte(html))
}

func (c *requestContext) NoContent(code int) error {
	c.rw.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.rw, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.rw.Header().Set("Content-Type", mimeHTML)
	c.rw.WriteHeader(code)
	return component.Render(c.Context(), c.rw)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool { return c.rw.Written() }

func (c *requestContext) Bind(v any) (ValidationErrors, error) {
	if err := form.Bind(c.request, v); err != nil {
		return nil, fmt.Errorf("bind form: %w", err)
	}
	err := model.Validate(v)
	var ve ValidationErrors
	switch {
	case err == nil:
		return nil, nil
	case errors.As(err, &ve):
		return ve, nil
	default:
		return nil, fmt.Errorf("validate: %w", err)
	}
}
