package service

import (
	"encoding/hex"
	"fmt"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// KeyLoader turns the configured hex value into key material.
//
// Nothing is cached: every Load re-reads the provider and re-validates, so a
// missing or invalid value fails identically on every call.
type KeyLoader struct {
	provider KeyProvider
}

// NewKeyLoader creates a KeyLoader backed by provider.
func NewKeyLoader(provider KeyProvider) *KeyLoader {
	return &KeyLoader{provider: provider}
}

// Load returns the 32-byte key. Callers should Zero it when done.
//
// Returns ErrEncryptionKeyNotSet when the value is absent and ErrInvalidEncryptionKey
// when it is not exactly 32 bytes of hex. The value is never truncated or padded.
func (l *KeyLoader) Load() ([]byte, error) {
	value, ok := l.provider.EncryptionKey()
	if !ok {
		return nil, credentialDomain.ErrEncryptionKeyNotSet
	}

	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, credentialDomain.ErrInvalidEncryptionKey
	}
	if len(key) != credentialDomain.KeySize {
		credentialDomain.Zero(key)
		return nil, fmt.Errorf(
			"%w: decoded to %d bytes",
			credentialDomain.ErrInvalidEncryptionKey,
			len(key),
		)
	}

	return key, nil
}
