package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	credentialService "github.com/allisson/credvault/internal/credential/service"
)

// RunCreateEncryptionKey generates a fresh 32-byte credential encryption key and
// prints it as an environment assignment for keyEnv.
//
// Without kmsKeyURI the key is printed as 64 hex characters. With kmsKeyURI the hex
// key is wrapped by the KMS keeper and printed as base64 ciphertext, together with
// the KMS_KEY_URI that unwraps it. Key material is zeroed after encoding.
//
// For local development use kmsKeyURI="base64key://<32-byte-base64-key>". Never use
// base64key:// in production.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService credentialService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyEnv string,
	kmsKeyURI string,
) error {
	key := make([]byte, credentialDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer credentialDomain.Zero(key)

	keyHex := make([]byte, hex.EncodedLen(len(key)))
	hex.Encode(keyHex, key)
	defer credentialDomain.Zero(keyHex)

	if kmsKeyURI == "" {
		logger.Info("generated encryption key")

		_, _ = fmt.Fprintln(writer, "# Credential encryption key")
		_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
		_, _ = fmt.Fprintln(writer)
		_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", keyEnv, keyHex)
		return nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := keeper.Encrypt(ctx, keyHex)
	if err != nil {
		return fmt.Errorf("failed to encrypt encryption key with KMS: %w", err)
	}

	logger.Info("generated KMS-wrapped encryption key")

	_, _ = fmt.Fprintln(writer, "# Credential encryption key (KMS mode)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "%s=\"%s\"\n", keyEnv, base64.StdEncoding.EncodeToString(wrapped))

	return nil
}

// checkEncryptionResult is the JSON output of check-encryption.
type checkEncryptionResult struct {
	Configured bool   `json:"configured"`
	KeyEnv     string `json:"key_env"`
}

// RunCheckEncryption runs the cipher's configuration probe and reports the result.
// It returns ErrConfiguration when the key is missing or invalid so the process
// exits non-zero. The key value is never printed.
func RunCheckEncryption(
	cipher credentialService.Cipher,
	writer io.Writer,
	keyEnv string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	configured := cipher.IsConfigured()

	if format == formatJSON {
		if err := writeJSON(writer, checkEncryptionResult{Configured: configured, KeyEnv: keyEnv}); err != nil {
			return err
		}
	} else {
		status := "configured"
		if !configured {
			status = "not configured"
		}
		_, _ = fmt.Fprintf(writer, "Credential encryption (%s): %s\n", keyEnv, status)
	}

	if !configured {
		return credentialDomain.ErrConfiguration
	}
	return nil
}
