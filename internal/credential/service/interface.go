// Package service implements the credential cipher: key loading from configuration,
// AES-256-GCM sealing into envelopes and the credential pair convenience layer.
package service

import (
	"context"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// KeyProvider supplies the raw encryption key configuration value.
//
// Implementations must be safe for concurrent use. The returned string is the
// 64-character hex form; ok is false when no value is configured.
type KeyProvider interface {
	EncryptionKey() (value string, ok bool)
}

// Cipher defines the credential encryption operations.
type Cipher interface {
	// IsConfigured reports whether a valid key is available. It never fails.
	IsConfigured() bool

	// Encrypt seals plaintext into an envelope under a fresh nonce.
	Encrypt(plaintext string) (credentialDomain.Envelope, error)

	// Decrypt verifies and opens an envelope.
	Decrypt(envelope credentialDomain.Envelope) (string, error)

	// EncryptCredentials seals the canonical form of a credential pair.
	EncryptCredentials(pair credentialDomain.CredentialPair) (credentialDomain.Envelope, error)

	// DecryptCredentials opens an envelope and parses the credential pair inside it.
	DecryptCredentials(envelope credentialDomain.Envelope) (credentialDomain.CredentialPair, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to wrap and unwrap the encryption key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
