package form

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

// CSRFHeader is the request header checked when no _csrf field is submitted.
const CSRFHeader = "X-CSRF-Token"

// NewToken returns a random URL-safe token.
func NewToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TokenFromRequest returns the submitted CSRF token, from the form or the header.
func TokenFromRequest(r *http.Request) string {
	if v := r.PostFormValue(CSRFField); v != "" {
		return v
	}
	return r.Header.Get(CSRFHeader)
}

// VerifyToken compares tokens in constant time.
func VerifyToken(expected, got string) error {
	if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
