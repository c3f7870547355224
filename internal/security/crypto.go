package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

var (
	// ErrUnavailable is returned by NewCipher when no key is configured.
	ErrUnavailable = errors.New("crypto key is not configured")
	// ErrInvalidToken is returned when a stored token cannot be opened.
	ErrInvalidToken = errors.New("invalid encrypted token")
)

// Cipher encrypts short identifier strings for at-rest storage. It is an
// optional helper: callers without a key keep values in plaintext.
type Cipher struct {
	key [32]byte
}

// NewCipher builds a Cipher from a base64-encoded 32-byte key.
func NewCipher(encodedKey string) (*Cipher, error) {
	if encodedKey == "" {
		return nil, ErrUnavailable
	}
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decoding crypto key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("crypto key must be 32 bytes, got %d", len(raw))
	}
	cipher := &Cipher{}
	copy(cipher.key[:], raw)
	return cipher, nil
}

// Encrypt seals value with a random nonce and returns a base64 token.
// Empty values pass through unchanged.
func (c *Cipher) Encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt. Forged or corrupted tokens
// return ErrInvalidToken.
func (c *Cipher) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(raw) < 24 {
		return "", ErrInvalidToken
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	opened, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", ErrInvalidToken
	}
	return string(opened), nil
}
