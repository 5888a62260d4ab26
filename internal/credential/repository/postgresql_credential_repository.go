// Package repository implements persistence for encrypted credentials.
// Repositories support both PostgreSQL and MySQL and store only envelopes, never plaintext.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	"github.com/allisson/credvault/internal/database"
	apperrors "github.com/allisson/credvault/internal/errors"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL databases.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential. Returns ErrCredentialAlreadyExists if the name is taken.
func (p *PostgreSQLCredentialRepository) Create(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (id, name, iv, ciphertext, tag, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.Name,
		credential.Envelope.IV,
		credential.Envelope.Ciphertext,
		credential.Envelope.Tag,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return credentialDomain.ErrCredentialAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update replaces the envelope of an existing credential.
func (p *PostgreSQLCredentialRepository) Update(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials
			  SET iv = $1, ciphertext = $2, tag = $3, updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		credential.Envelope.IV,
		credential.Envelope.Ciphertext,
		credential.Envelope.Tag,
		credential.UpdatedAt,
		credential.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return checkAffected(result, "failed to update credential")
}

// GetByName retrieves a credential by its unique name.
func (p *PostgreSQLCredentialRepository) GetByName(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  WHERE name = $1`

	return p.getOne(ctx, query, name)
}

// GetByNameForUpdate retrieves a credential by name and locks its row until the
// surrounding transaction ends.
func (p *PostgreSQLCredentialRepository) GetByNameForUpdate(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  WHERE name = $1
			  FOR UPDATE`

	return p.getOne(ctx, query, name)
}

// List retrieves credentials ordered by name with pagination.
func (p *PostgreSQLCredentialRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  ORDER BY name ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		var credential credentialDomain.Credential
		if err := rows.Scan(
			&credential.ID,
			&credential.Name,
			&credential.Envelope.IV,
			&credential.Envelope.Ciphertext,
			&credential.Envelope.Tag,
			&credential.CreatedAt,
			&credential.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		credentials = append(credentials, &credential)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}

	return credentials, nil
}

// Delete removes a credential by name.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE name = $1`, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}

	return checkAffected(result, "failed to delete credential")
}

func (p *PostgreSQLCredentialRepository) getOne(
	ctx context.Context,
	query string,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	var credential credentialDomain.Credential
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&credential.ID,
		&credential.Name,
		&credential.Envelope.IV,
		&credential.Envelope.Ciphertext,
		&credential.Envelope.Tag,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential by name")
	}

	return &credential, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}

// checkAffected maps a write that touched no rows to ErrCredentialNotFound.
func checkAffected(result sql.Result, msg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, msg)
	}
	if affected == 0 {
		return credentialDomain.ErrCredentialNotFound
	}
	return nil
}
