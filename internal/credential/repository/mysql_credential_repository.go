package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	"github.com/allisson/credvault/internal/database"
	apperrors "github.com/allisson/credvault/internal/errors"
)

// mysqlDuplicateEntry is the MySQL error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLCredentialRepository implements Credential persistence for MySQL databases.
// IDs are stored as BINARY(16).
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential. Returns ErrCredentialAlreadyExists if the name is taken.
func (m *MySQLCredentialRepository) Create(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO credentials (id, name, iv, ciphertext, tag, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		credential.Name,
		credential.Envelope.IV,
		credential.Envelope.Ciphertext,
		credential.Envelope.Tag,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return credentialDomain.ErrCredentialAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update replaces the envelope of an existing credential.
func (m *MySQLCredentialRepository) Update(
	ctx context.Context,
	credential *credentialDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials
			  SET iv = ?, ciphertext = ?, tag = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		credential.Envelope.IV,
		credential.Envelope.Ciphertext,
		credential.Envelope.Tag,
		credential.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	return checkAffected(result, "failed to update credential")
}

// GetByName retrieves a credential by its unique name.
func (m *MySQLCredentialRepository) GetByName(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  WHERE name = ?`

	return m.getOne(ctx, query, name)
}

// GetByNameForUpdate retrieves a credential by name and locks its row until the
// surrounding transaction ends.
func (m *MySQLCredentialRepository) GetByNameForUpdate(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  WHERE name = ?
			  FOR UPDATE`

	return m.getOne(ctx, query, name)
}

// List retrieves credentials ordered by name with pagination.
func (m *MySQLCredentialRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, iv, ciphertext, tag, created_at, updated_at
			  FROM credentials
			  ORDER BY name ASC
			  LIMIT ? OFFSET ?`

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
		var id []byte

		if err := rows.Scan(
			&id,
			&credential.Name,
			&credential.Envelope.IV,
			&credential.Envelope.Ciphertext,
			&credential.Envelope.Tag,
			&credential.CreatedAt,
			&credential.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}

		if err := credential.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
		}

		credentials = append(credentials, &credential)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}

	return credentials, nil
}

// Delete removes a credential by name.
func (m *MySQLCredentialRepository) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE name = ?`, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}

	return checkAffected(result, "failed to delete credential")
}

func (m *MySQLCredentialRepository) getOne(
	ctx context.Context,
	query string,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	var credential credentialDomain.Credential
	var id []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&id,
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

	if err := credential.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}

	return &credential, nil
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
