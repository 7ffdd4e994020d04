package cookie

import (
	"encoding/json"
	"errors"
	"net/http"
)

const flashPrefix = "flash_"

// SetFlash stores value as an encrypted JSON cookie that lives until the
// next Flash call for key.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data), 0)
}

// Flash decodes the flash message for key into dest and deletes it. The
// cookie is deleted even when it cannot be decrypted.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	if !m.HasSecret() {
		return ErrNoSecret
	}
	name := flashPrefix + key
	raw, err := m.GetEncrypted(r, name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.Delete(w, name)
		}
		return err
	}
	m.Delete(w, name)
	return json.Unmarshal([]byte(raw), dest)
}
