// Package usecase stores and retrieves named credentials, sealing each pair with the
// credential cipher before it reaches the repository.
package usecase

import (
	"context"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// CredentialRepository defines the interface for Credential persistence operations.
type CredentialRepository interface {
	Create(ctx context.Context, credential *credentialDomain.Credential) error
	Update(ctx context.Context, credential *credentialDomain.Credential) error
	GetByName(ctx context.Context, name string) (*credentialDomain.Credential, error)
	GetByNameForUpdate(ctx context.Context, name string) (*credentialDomain.Credential, error)
	List(ctx context.Context, offset, limit int) ([]*credentialDomain.Credential, error)
	Delete(ctx context.Context, name string) error
}

// CredentialUseCase defines the interface for credential store business logic.
type CredentialUseCase interface {
	// Put encrypts pair and stores it under name, replacing any existing envelope.
	Put(
		ctx context.Context,
		name string,
		pair credentialDomain.CredentialPair,
	) (*credentialDomain.Credential, error)
	// Get returns the stored record without decrypting it.
	Get(ctx context.Context, name string) (*credentialDomain.Credential, error)
	// Reveal returns the decrypted credential pair stored under name.
	//
	// Security Note: the returned pair holds the plaintext password. Never log it
	// except through its LogValue form.
	Reveal(ctx context.Context, name string) (credentialDomain.CredentialPair, error)
	List(ctx context.Context, offset, limit int) ([]*credentialDomain.Credential, error)
	Delete(ctx context.Context, name string) error
}
