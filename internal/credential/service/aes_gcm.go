package service

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// AESGCMCipher seals and opens messages with AES-256-GCM, keeping the
// authentication tag separate from the ciphertext as the envelope format requires.
//
// Properties:
//   - 256-bit key
//   - 12-byte nonce read from the supplied random source per call
//   - 16-byte tag
//
// The instance is stateless and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes;
// it is expanded into the cipher schedule and may be zeroed by the caller afterwards.
// rand is the nonce source and must be cryptographically secure outside tests.
func NewAESGCM(key []byte, rand io.Reader) (*AESGCMCipher, error) {
	if len(key) != credentialDomain.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, credentialDomain.TagSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead, rand: rand}, nil
}

// Seal encrypts plaintext under a fresh nonce. The returned ciphertext has the
// same length as plaintext; tag is 16 bytes. aad may be nil.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(a.rand, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - a.aead.Overhead()

	return nonce, sealed[:split], sealed[split:], nil
}

// Open verifies tag over ciphertext and returns the plaintext. Nothing is
// returned unless verification succeeds.
func (a *AESGCMCipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes", a.aead.NonceSize())
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
