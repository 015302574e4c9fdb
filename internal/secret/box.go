// Package secret seals override credentials before they are written to the
// store, so a Redis dump never contains plaintext API keys.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// Box seals and opens short strings with a key derived from the server
// secret. Sealed values are nonce-prefixed and base64-encoded.
type Box struct {
	key [32]byte
}

// NewBox derives a sealing key from the configured server secret.
func NewBox(serverSecret string) (*Box, error) {
	if serverSecret == "" {
		return nil, errors.New("sealing secret must not be empty")
	}
	return &Box{key: sha256.Sum256([]byte(serverSecret))}, nil
}

// Seal encrypts plain and returns a base64 string safe to persist.
func (b *Box) Seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &b.key)
	if !ok {
		return "", errors.New("sealed value failed authentication")
	}
	return string(plain), nil
}
