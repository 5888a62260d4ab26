package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// CredentialCipher implements Cipher with AES-256-GCM under a single key taken
// from a KeyProvider.
//
// Each call loads the key, builds the cipher and zeroes the key bytes before
// returning. There is no shared mutable state, so one instance can serve any
// number of goroutines.
type CredentialCipher struct {
	keys   *KeyLoader
	logger *slog.Logger
	rand   io.Reader
}

// NewCredentialCipher creates a CredentialCipher reading its key from provider.
func NewCredentialCipher(provider KeyProvider, logger *slog.Logger) *CredentialCipher {
	return &CredentialCipher{
		keys:   NewKeyLoader(provider),
		logger: logger,
		rand:   rand.Reader,
	}
}

// IsConfigured reports whether the key value is present and decodes to exactly
// 32 bytes. Parse failures are reported as false.
func (c *CredentialCipher) IsConfigured() bool {
	key, err := c.keys.Load()
	credentialDomain.Zero(key)
	valid := err == nil

	value, present := c.keys.provider.EncryptionKey()
	keyLength := 0
	if decoded, decodeErr := hex.DecodeString(value); decodeErr == nil {
		keyLength = len(decoded)
		credentialDomain.Zero(decoded)
	}

	c.logger.Debug("encryption key configuration checked",
		slog.Bool("present", present),
		slog.Bool("valid", valid),
		slog.Int("key_length", keyLength),
	)

	return valid
}

// Encrypt seals the UTF-8 bytes of plaintext into an envelope.
func (c *CredentialCipher) Encrypt(plaintext string) (credentialDomain.Envelope, error) {
	aead, err := c.newAEAD()
	if err != nil {
		return credentialDomain.Envelope{}, err
	}

	nonce, ciphertext, tag, err := aead.Seal([]byte(plaintext), nil)
	if err != nil {
		return credentialDomain.Envelope{}, err
	}

	return credentialDomain.NewEnvelope(nonce, ciphertext, tag), nil
}

// Decrypt verifies and opens envelope.
//
// Errors:
//   - ErrConfiguration (wrapped) if the key is unavailable
//   - ErrMalformedEnvelope if a field is not valid base64 or has the wrong length
//   - ErrAuthentication if the tag does not verify, whatever the cause
//   - ErrEncoding if the verified plaintext is not valid UTF-8
func (c *CredentialCipher) Decrypt(envelope credentialDomain.Envelope) (string, error) {
	aead, err := c.newAEAD()
	if err != nil {
		return "", err
	}

	nonce, ciphertext, tag, err := envelope.Decode()
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nonce, ciphertext, tag, nil)
	if err != nil {
		return "", credentialDomain.ErrAuthentication
	}

	if !utf8.Valid(plaintext) {
		credentialDomain.Zero(plaintext)
		return "", credentialDomain.ErrEncoding
	}

	return string(plaintext), nil
}

// EncryptCredentials seals the canonical form of pair.
func (c *CredentialCipher) EncryptCredentials(
	pair credentialDomain.CredentialPair,
) (credentialDomain.Envelope, error) {
	payload, err := pair.Canonical()
	if err != nil {
		return credentialDomain.Envelope{}, err
	}
	defer credentialDomain.Zero(payload)

	return c.Encrypt(string(payload))
}

// DecryptCredentials opens envelope and parses the credential pair inside it.
// Returns ErrMalformedPayload if the verified plaintext is not a credential pair.
func (c *CredentialCipher) DecryptCredentials(
	envelope credentialDomain.Envelope,
) (credentialDomain.CredentialPair, error) {
	plaintext, err := c.Decrypt(envelope)
	if err != nil {
		return credentialDomain.CredentialPair{}, err
	}

	return credentialDomain.ParseCredentialPair([]byte(plaintext))
}

// newAEAD loads the key and builds a cipher from it, zeroing the key bytes.
func (c *CredentialCipher) newAEAD() (*AESGCMCipher, error) {
	key, err := c.keys.Load()
	if err != nil {
		return nil, err
	}
	defer credentialDomain.Zero(key)

	aead, err := NewAESGCM(key, c.rand)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return aead, nil
}
