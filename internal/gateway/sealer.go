package gateway

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const sealedPrefix = "sealed:"

var (
	// ErrSealed is returned when a sealed value is read without a key.
	ErrSealed = errors.New("sealed value requires GATEWAY_SECRET_KEY")
	// ErrReservedPrefix is returned when a plaintext stored without a key
	// would read back as a sealed value.
	ErrReservedPrefix = errors.New("value must not start with " + sealedPrefix)
)

// Sealer encrypts gateway secrets at rest. A nil Sealer stores values as is.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32 byte key.
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("gateway sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to context, typically gateway and option name.
// A nil Sealer returns plaintext unless it carries the sealed prefix.
func (s *Sealer) Seal(plaintext, context string) (string, error) {
	if s == nil {
		if strings.HasPrefix(plaintext, sealedPrefix) {
			return "", ErrReservedPrefix
		}
		return plaintext, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("gateway sealer nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(context))
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as is.
func (s *Sealer) Open(value, context string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}
	if s == nil {
		return "", ErrSealed
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("gateway sealer decode: %w", err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.New("gateway sealer: ciphertext too short")
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(context))
	if err != nil {
		return "", fmt.Errorf("gateway sealer open: %w", err)
	}
	return string(plain), nil
}
