package commands

import (
	"fmt"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	credentialService "github.com/allisson/credvault/internal/credential/service"
)

// RunEncryptCredentials seals a username/password pair and writes the envelope as JSON.
// An empty password is read from the reader instead, which keeps it out of shell history.
func RunEncryptCredentials(
	cipher credentialService.Cipher,
	io IOTuple,
	username string,
	password string,
) error {
	if password == "" {
		input, err := readSecret(io.Reader)
		if err != nil {
			return err
		}
		password = input
	}

	envelope, err := cipher.EncryptCredentials(credentialDomain.CredentialPair{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	return writeJSON(io.Writer, envelope)
}

// RunDecryptCredentials opens an envelope and writes the credential pair as JSON.
// The envelope JSON comes from envelopeJSON, or from the reader when it is empty.
func RunDecryptCredentials(
	cipher credentialService.Cipher,
	io IOTuple,
	envelopeJSON string,
) error {
	if envelopeJSON == "" {
		input, err := readInput(io.Reader)
		if err != nil {
			return err
		}
		envelopeJSON = input
	}

	envelope, err := credentialDomain.ParseEnvelope([]byte(envelopeJSON))
	if err != nil {
		return err
	}

	pair, err := cipher.DecryptCredentials(envelope)
	if err != nil {
		return fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	return writeJSON(io.Writer, pair)
}
