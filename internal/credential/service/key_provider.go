package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/allisson/go-env"
)

// EnvKeyProvider reads the encryption key from a process environment variable
// on every call.
type EnvKeyProvider struct {
	name string
}

// NewEnvKeyProvider creates a provider for the named environment variable.
func NewEnvKeyProvider(name string) *EnvKeyProvider {
	return &EnvKeyProvider{name: name}
}

// EncryptionKey returns the variable's value. An empty variable counts as unset.
func (p *EnvKeyProvider) EncryptionKey() (string, bool) {
	value := env.GetString(p.name, "")
	return value, value != ""
}

// StaticKeyProvider serves a fixed value. Useful for tests and CLI flags.
type StaticKeyProvider struct {
	value string
}

// NewStaticKeyProvider creates a provider that always returns value.
func NewStaticKeyProvider(value string) *StaticKeyProvider {
	return &StaticKeyProvider{value: value}
}

// EncryptionKey returns the fixed value. An empty value counts as unset.
func (p *StaticKeyProvider) EncryptionKey() (string, bool) {
	return p.value, p.value != ""
}

// KMSKeyProvider serves a key that is stored wrapped by a KMS.
//
// The wrapped value (base64 of the KMS ciphertext) is read from the inner provider
// and unwrapped once, at construction. Afterwards the hex key is served from memory.
type KMSKeyProvider struct {
	value string
}

// NewKMSKeyProvider unwraps the value from inner using the keeper at keyURI.
//
// An unset inner value yields a provider that reports the key as unset, so the
// cipher fails with ErrEncryptionKeyNotSet exactly as it would without KMS.
func NewKMSKeyProvider(
	ctx context.Context,
	kmsService KMSService,
	keyURI string,
	inner KeyProvider,
) (*KMSKeyProvider, error) {
	wrapped, ok := inner.EncryptionKey()
	if !ok {
		return &KMSKeyProvider{}, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to decode KMS-wrapped encryption key: %w", err)
	}

	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap encryption key with KMS: %w", err)
	}

	return &KMSKeyProvider{value: string(plaintext)}, nil
}

// EncryptionKey returns the unwrapped hex key.
func (p *KMSKeyProvider) EncryptionKey() (string, bool) {
	return p.value, p.value != ""
}
