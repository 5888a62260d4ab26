package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	credentialService "github.com/allisson/credvault/internal/credential/service"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// Manual mocks for KMS so the commands can be tested without a real provider.
type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (credentialService.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(credentialService.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCipher(keyHex string) *credentialService.CredentialCipher {
	return credentialService.NewCredentialCipher(credentialService.NewStaticKeyProvider(keyHex), discardLogger())
}

func TestRunCreateEncryptionKey(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success-plain", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCreateEncryptionKey(ctx, nil, logger, &out, "CREDENTIAL_ENCRYPTION_KEY", "")
		require.NoError(t, err)

		matches := regexp.MustCompile(`CREDENTIAL_ENCRYPTION_KEY="([0-9a-f]{64})"`).FindStringSubmatch(out.String())
		require.Len(t, matches, 2)

		assert.True(t, newTestCipher(matches[1]).IsConfigured())
	})

	t.Run("success-unique-keys", func(t *testing.T) {
		var first, second bytes.Buffer

		require.NoError(t, RunCreateEncryptionKey(ctx, nil, logger, &first, "KEY", ""))
		require.NoError(t, RunCreateEncryptionKey(ctx, nil, logger, &second, "KEY", ""))

		assert.NotEqual(t, first.String(), second.String())
	})

	t.Run("success-kms-mock", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://test").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.MatchedBy(func(plaintext []byte) bool {
			_, err := hex.DecodeString(string(plaintext))
			return len(plaintext) == 64 && err == nil
		})).Return([]byte("wrapped"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, mockService, logger, &out, "CREDENTIAL_ENCRYPTION_KEY", "base64key://test")
		require.NoError(t, err)

		assert.Contains(t, out.String(), `KMS_KEY_URI="base64key://test"`)
		assert.Contains(t, out.String(), `CREDENTIAL_ENCRYPTION_KEY="`+base64.StdEncoding.EncodeToString([]byte("wrapped"))+`"`)

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("success-kms-localsecrets-roundtrip", func(t *testing.T) {
		secret := make([]byte, 32)
		_, err := rand.Read(secret)
		require.NoError(t, err)
		keyURI := "base64key://" + base64.URLEncoding.EncodeToString(secret)

		kmsService := credentialService.NewKMSService()

		var out bytes.Buffer
		require.NoError(t, RunCreateEncryptionKey(ctx, kmsService, logger, &out, "KEY", keyURI))

		matches := regexp.MustCompile(`KEY="([^"]+)"`).FindStringSubmatch(out.String())
		require.Len(t, matches, 2)

		provider, err := credentialService.NewKMSKeyProvider(
			ctx,
			kmsService,
			keyURI,
			credentialService.NewStaticKeyProvider(matches[1]),
		)
		require.NoError(t, err)

		cipher := credentialService.NewCredentialCipher(provider, logger)
		assert.True(t, cipher.IsConfigured())
	})

	t.Run("open-keeper-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "invalid://uri").Return(nil, errors.New("open failed"))

		err := RunCreateEncryptionKey(ctx, mockService, logger, io.Discard, "KEY", "invalid://uri")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open failed")
	})

	t.Run("encrypt-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://test").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.Anything).Return(nil, errors.New("kms down"))
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, mockService, logger, &out, "KEY", "base64key://test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encrypt encryption key with KMS")
		assert.Empty(t, out.String())

		mockKeeper.AssertExpectations(t)
	})
}

func TestRunCheckEncryption(t *testing.T) {
	t.Run("configured-text", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckEncryption(newTestCipher(testKeyHex), &out, "CREDENTIAL_ENCRYPTION_KEY", "text")
		require.NoError(t, err)
		assert.Equal(t, "Credential encryption (CREDENTIAL_ENCRYPTION_KEY): configured\n", out.String())
	})

	t.Run("configured-json", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckEncryption(newTestCipher(testKeyHex), &out, "KEY", "json")
		require.NoError(t, err)

		var result checkEncryptionResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, checkEncryptionResult{Configured: true, KeyEnv: "KEY"}, result)
	})

	t.Run("not-configured", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckEncryption(newTestCipher(testKeyHex[:10]), &out, "KEY", "text")
		require.ErrorIs(t, err, credentialDomain.ErrConfiguration)
		assert.Contains(t, out.String(), "not configured")
		assert.NotContains(t, out.String(), testKeyHex[:10])
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunCheckEncryption(newTestCipher(testKeyHex), io.Discard, "KEY", "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})
}
