package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	credentialService "github.com/allisson/credvault/internal/credential/service"
	"github.com/allisson/credvault/internal/database"
)

// credentialUseCase implements the CredentialUseCase interface.
type credentialUseCase struct {
	txManager      database.TxManager
	credentialRepo CredentialRepository
	cipher         credentialService.Cipher
}

// Put seals pair and creates or replaces the credential stored under name.
//
// Encryption happens before the transaction opens so a configuration failure never
// touches the database. The existing row is locked while its envelope is replaced.
// A create that loses the race against a concurrent Put for the same new name is
// retried once, and the retry takes the replace path.
func (c *credentialUseCase) Put(
	ctx context.Context,
	name string,
	pair credentialDomain.CredentialPair,
) (*credentialDomain.Credential, error) {
	envelope, err := c.cipher.EncryptCredentials(pair)
	if err != nil {
		return nil, err
	}

	stored, err := c.put(ctx, name, envelope)
	if errors.Is(err, credentialDomain.ErrCredentialAlreadyExists) {
		stored, err = c.put(ctx, name, envelope)
	}
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// put runs one create-or-replace transaction.
func (c *credentialUseCase) put(
	ctx context.Context,
	name string,
	envelope credentialDomain.Envelope,
) (*credentialDomain.Credential, error) {
	var stored *credentialDomain.Credential
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()

		existing, err := c.credentialRepo.GetByNameForUpdate(txCtx, name)
		if err != nil && !errors.Is(err, credentialDomain.ErrCredentialNotFound) {
			return err
		}

		if existing != nil {
			existing.Envelope = envelope
			existing.UpdatedAt = now
			if err := c.credentialRepo.Update(txCtx, existing); err != nil {
				return err
			}
			stored = existing
			return nil
		}

		credential := &credentialDomain.Credential{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      name,
			Envelope:  envelope,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := c.credentialRepo.Create(txCtx, credential); err != nil {
			return err
		}
		stored = credential
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// Get retrieves the stored credential by name.
func (c *credentialUseCase) Get(ctx context.Context, name string) (*credentialDomain.Credential, error) {
	return c.credentialRepo.GetByName(ctx, name)
}

// Reveal retrieves the credential and decrypts its pair.
func (c *credentialUseCase) Reveal(
	ctx context.Context,
	name string,
) (credentialDomain.CredentialPair, error) {
	credential, err := c.credentialRepo.GetByName(ctx, name)
	if err != nil {
		return credentialDomain.CredentialPair{}, err
	}

	return c.cipher.DecryptCredentials(credential.Envelope)
}

// List retrieves stored credentials ordered by name.
func (c *credentialUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	return c.credentialRepo.List(ctx, offset, limit)
}

// Delete removes the credential stored under name.
func (c *credentialUseCase) Delete(ctx context.Context, name string) error {
	return c.credentialRepo.Delete(ctx, name)
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(
	txManager database.TxManager,
	credentialRepo CredentialRepository,
	cipher credentialService.Cipher,
) CredentialUseCase {
	return &credentialUseCase{
		txManager:      txManager,
		credentialRepo: credentialRepo,
		cipher:         cipher,
	}
}
