// Package auth protects user credentials at rest.
package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of the key used to seal credentials.
const KeySize = chacha20poly1305.KeySize

const (
	nonceSize = chacha20poly1305.NonceSizeX
	totalOH   = nonceSize + chacha20poly1305.Overhead
)

// Sealer encrypts and authenticates credentials with XChaCha20-Poly1305.
// A Sealer is safe for concurrent use.
type Sealer struct {
	enc  cipher.AEAD
	rand io.Reader
}

// NewSealer creates a sealer using the given key.
func NewSealer(key [KeySize]byte) *Sealer {
	enc, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		panic(err)
	}
	return &Sealer{enc: enc, rand: rand.Reader}
}

// Seal encrypts a credential. The additional data binds the result to its
// context, e.g. the owner of the credential; the same data must be passed
// to Open.
func (s *Sealer) Seal(ptxt string, ad []byte) []byte {
	b := make([]byte, nonceSize, totalOH+len(ptxt))
	if _, err := io.ReadFull(s.rand, b); err != nil {
		panic(fmt.Errorf("couldn't read nonce: %w", err))
	}
	return s.enc.Seal(b, b, []byte(ptxt), ad)
}

// Open decrypts a credential sealed with the same key and additional data.
func (s *Sealer) Open(b []byte, ad []byte) (string, error) {
	if len(b) < totalOH {
		return "", errors.New("sealed data is too short")
	}
	nonce, text := b[:nonceSize], b[nonceSize:]
	p, err := s.enc.Open(nil, nonce, text, ad)
	if err != nil {
		return "", fmt.Errorf("couldn't open sealed credential: %w", err)
	}
	return string(p), nil
}
