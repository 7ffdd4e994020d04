package cookie

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
)

// MinSecretLen is the shortest secret accepted by WithSecret.
const MinSecretLen = 32

// Manager reads and writes cookies with shared attributes. Signed and
// encrypted cookies need a secret.
type Manager struct {
	keys     []keyPair
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
	now      func() time.Time
}

type Option func(*Manager)

// New returns a Manager with Path "/", HttpOnly and SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret sets the current secret. Secrets shorter than MinSecretLen
// are ignored, leaving signing and encryption disabled.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) < MinSecretLen {
			return
		}
		m.keys = append([]keyPair{deriveKeys(secret)}, m.keys...)
	}
}

// WithPreviousSecrets keeps accepting cookies written with retired secrets.
// New cookies are always written with the secret from WithSecret.
func WithPreviousSecrets(secrets ...string) Option {
	return func(m *Manager) {
		for _, s := range secrets {
			if len(s) >= MinSecretLen {
				m.keys = append(m.keys, deriveKeys(s))
			}
		}
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// HasSecret reports whether signed and encrypted cookies are available.
func (m *Manager) HasSecret() bool { return len(m.keys) > 0 }

// Get returns the raw value of the named cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie. maxAge follows http.Cookie: zero makes a
// session cookie and a negative value deletes it.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.build(name, value, maxAge))
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.build(name, "", -1)
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// GetSigned returns the value of a cookie written by SetSigned. Values moved
// between cookie names fail verification.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if !m.HasSecret() {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(name, raw)
}

// SetSigned writes value in clear text with an HMAC-SHA256 tag.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	http.SetCookie(w, m.build(name, m.sign(name, value), maxAge))
	return nil
}

// GetEncrypted returns the value of a cookie written by SetEncrypted.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if !m.HasSecret() {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.open(name, raw)
}

// SetEncrypted writes value sealed with AES-256-GCM.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	sealed, err := m.seal(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.build(name, sealed, maxAge))
	return nil
}

func (m *Manager) build(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
	if maxAge > 0 {
		c.Expires = m.now().Add(time.Duration(maxAge) * time.Second).UTC()
	}
	return c
}
