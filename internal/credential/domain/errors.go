// Package domain defines the credential encryption domain models and errors.
package domain

import (
	"github.com/allisson/credvault/internal/errors"
)

// Credential encryption error definitions.
//
// Every error wraps one of the standard errors from internal/errors so the HTTP
// layer can map it to a status code without knowing about this package.
var (
	// ErrConfiguration indicates the encryption key is missing or invalid. Any
	// encrypt or decrypt attempt fails with it until configuration is fixed.
	//
	// HTTP Status: 503 Service Unavailable
	ErrConfiguration = errors.Wrap(errors.ErrUnavailable, "encryption is not configured")

	// ErrEncryptionKeyNotSet indicates the key configuration value is absent or empty.
	ErrEncryptionKeyNotSet = errors.Wrap(ErrConfiguration, "encryption key not set")

	// ErrInvalidEncryptionKey indicates the key configuration value does not decode
	// to exactly 32 bytes of hex.
	ErrInvalidEncryptionKey = errors.Wrap(ErrConfiguration, "encryption key must be 64 hex characters")

	// ErrMalformedEnvelope indicates an envelope field is not valid base64 or has the
	// wrong decoded length (iv must be 12 bytes, tag 16 bytes).
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrAuthentication indicates the authentication tag did not verify.
	//
	// The cause (tampering, wrong key, corrupted ciphertext) is deliberately not
	// distinguished.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrAuthentication = errors.Wrap(errors.ErrInvalidInput, "message authentication failed")

	// ErrEncoding indicates the verified plaintext is not valid UTF-8.
	ErrEncoding = errors.Wrap(errors.ErrInvalidInput, "plaintext is not valid UTF-8")

	// ErrMalformedPayload indicates the verified plaintext is not a credential pair.
	ErrMalformedPayload = errors.Wrap(errors.ErrInvalidInput, "malformed credential payload")

	// ErrCredentialNotFound indicates no stored credential has the requested name.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrCredentialAlreadyExists indicates a stored credential already uses the name.
	ErrCredentialAlreadyExists = errors.Wrap(errors.ErrConflict, "credential already exists")
)
