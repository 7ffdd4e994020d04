package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

var b64 = base64.RawURLEncoding

// keyPair holds independent keys for signing and encryption derived from
// one secret.
type keyPair struct {
	sign []byte
	seal cipher.AEAD
}

func deriveKeys(secret string) keyPair {
	signKey, err := hkdf.Key(sha256.New, []byte(secret), nil, "ultralight cookie sign", 32)
	if err != nil {
		panic(err)
	}
	sealKey, err := hkdf.Key(sha256.New, []byte(secret), nil, "ultralight cookie seal", 32)
	if err != nil {
		panic(err)
	}
	block, err := aes.NewCipher(sealKey)
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return keyPair{sign: signKey, seal: aead}
}

func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

// sign encodes as base64(value).base64(tag).
func (m *Manager) sign(name, value string) string {
	tag := mac(m.keys[0].sign, name, value)
	return b64.EncodeToString([]byte(value)) + "." + b64.EncodeToString(tag)
}

func (m *Manager) verify(name, raw string) (string, error) {
	encoded, encodedTag, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := b64.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}
	tag, err := b64.DecodeString(encodedTag)
	if err != nil {
		return "", ErrBadSig
	}
	for _, k := range m.keys {
		if hmac.Equal(tag, mac(k.sign, name, string(value))) {
			return string(value), nil
		}
	}
	return "", ErrBadSig
}

// seal encodes as base64(nonce || ciphertext). The cookie name is
// authenticated as additional data.
func (m *Manager) seal(name, value string) (string, error) {
	aead := m.keys[0].seal
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return b64.EncodeToString(aead.Seal(nonce, nonce, []byte(value), []byte(name))), nil
}

func (m *Manager) open(name, raw string) (string, error) {
	data, err := b64.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	for _, k := range m.keys {
		n := k.seal.NonceSize()
		if len(data) < n {
			return "", ErrDecrypt
		}
		if plain, err := k.seal.Open(nil, data[:n], data[n:], []byte(name)); err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecrypt
}
