package utils

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	errInvalidEncryptionKeyLength = errors.New("TOKEN_ENCRYPTION_KEY must be exactly 32 bytes")
	errCiphertextTooShort         = errors.New("encrypted token is too short or malformed")
)

// EncryptToken seals token with XChaCha20-Poly1305 and returns base64 text.
// An empty key disables encryption and returns the token unchanged.
func EncryptToken(key, token string) (string, error) {
	if key == "" {
		return token, nil
	}
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(token)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptToken reverses EncryptToken. An empty key assumes plaintext.
func DecryptToken(key, encrypted string) (string, error) {
	if key == "" {
		return encrypted, nil
	}
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return "", errCiphertextTooShort
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newAEAD(key string) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errInvalidEncryptionKeyLength
	}
	return chacha20poly1305.NewX([]byte(key))
}
