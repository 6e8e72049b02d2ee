package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	keySize   = 32
	ivSize    = 16
	tagSize   = 16
	separator = ":"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// TokenCipher encrypts secrets with AES-256-GCM.
// Stored format: hex(iv):hex(tag):hex(ciphertext), 16-byte iv.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher builds a cipher from a 64 character hex key.
func NewTokenCipher(hexKey string) (*TokenCipher, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, errors.New("encryption key is not configured")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key must be hex encoded: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes (%d hex characters), got %d bytes", keySize, keySize*2, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, err
	}
	return &TokenCipher{aead: aead}, nil
}

// GenerateKey returns a random key in the format NewTokenCipher expects.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func (c *TokenCipher) Encrypt(plainText string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, iv, []byte(plainText), nil)
	body, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + separator + hex.EncodeToString(tag) + separator + hex.EncodeToString(body), nil
}

func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, separator)
	if len(parts) != 3 {
		return "", ErrMalformedCiphertext
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformedCiphertext
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrMalformedCiphertext
	}
	body, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	plain, err := c.aead.Open(nil, iv, append(body, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

// IsEncrypted reports whether value has the shape produced by Encrypt.
func IsEncrypted(value string) bool {
	parts := strings.Split(value, separator)
	if len(parts) != 3 || len(parts[0]) != ivSize*2 || len(parts[1]) != tagSize*2 {
		return false
	}
	for _, p := range parts {
		if _, err := hex.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}
