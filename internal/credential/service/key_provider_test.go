package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// mockKMSService is a mock implementation of KMSService for testing.
type mockKMSService struct {
	mock.Mock
}

func (m *mockKMSService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(KMSKeeper), args.Error(1)
}

// mockKMSKeeper is a mock implementation of KMSKeeper for testing.
type mockKMSKeeper struct {
	mock.Mock
}

func (m *mockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKMSKeeper) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestEnvKeyProvider(t *testing.T) {
	t.Run("Success_Set", func(t *testing.T) {
		t.Setenv("TEST_ENV_KEY_PROVIDER", validKeyHex)

		value, ok := NewEnvKeyProvider("TEST_ENV_KEY_PROVIDER").EncryptionKey()

		assert.True(t, ok)
		assert.Equal(t, validKeyHex, value)
	})

	t.Run("Unset", func(t *testing.T) {
		value, ok := NewEnvKeyProvider("TEST_ENV_KEY_PROVIDER_MISSING").EncryptionKey()

		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("EmptyCountsAsUnset", func(t *testing.T) {
		t.Setenv("TEST_ENV_KEY_PROVIDER", "")

		_, ok := NewEnvKeyProvider("TEST_ENV_KEY_PROVIDER").EncryptionKey()

		assert.False(t, ok)
	})
}

func TestStaticKeyProvider(t *testing.T) {
	value, ok := NewStaticKeyProvider(validKeyHex).EncryptionKey()
	assert.True(t, ok)
	assert.Equal(t, validKeyHex, value)

	_, ok = NewStaticKeyProvider("").EncryptionKey()
	assert.False(t, ok)
}

func TestNewKMSKeyProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		kmsService := NewKMSService()
		keyURI := generateLocalSecretsURI(t)

		keeper, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		wrapped, err := keeper.Encrypt(ctx, []byte(validKeyHex))
		require.NoError(t, err)
		require.NoError(t, keeper.Close())

		provider, err := NewKMSKeyProvider(
			ctx,
			kmsService,
			keyURI,
			NewStaticKeyProvider(base64.StdEncoding.EncodeToString(wrapped)),
		)
		require.NoError(t, err)

		value, ok := provider.EncryptionKey()
		assert.True(t, ok)
		assert.Equal(t, validKeyHex, value)

		c := newTestCipher(t, "")
		c.keys = NewKeyLoader(provider)
		assert.True(t, c.IsConfigured())
	})

	t.Run("Success_UnsetInnerValue", func(t *testing.T) {
		kmsService := &mockKMSService{}

		provider, err := NewKMSKeyProvider(ctx, kmsService, "base64key://unused", NewStaticKeyProvider(""))
		require.NoError(t, err)

		_, ok := provider.EncryptionKey()
		assert.False(t, ok)

		_, err = NewKeyLoader(provider).Load()
		assert.ErrorIs(t, err, credentialDomain.ErrEncryptionKeyNotSet)
		kmsService.AssertNotCalled(t, "OpenKeeper", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		kmsService := &mockKMSService{}

		provider, err := NewKMSKeyProvider(ctx, kmsService, "base64key://unused", NewStaticKeyProvider("!!!"))

		assert.Nil(t, provider)
		assert.ErrorContains(t, err, "failed to decode KMS-wrapped encryption key")
	})

	t.Run("Error_OpenKeeper", func(t *testing.T) {
		kmsService := &mockKMSService{}
		kmsService.On("OpenKeeper", ctx, "awskms://bad").
			Return(nil, errors.New("failed to open KMS keeper: boom"))

		provider, err := NewKMSKeyProvider(ctx, kmsService, "awskms://bad", NewStaticKeyProvider("AAAA"))

		assert.Nil(t, provider)
		assert.ErrorContains(t, err, "failed to open KMS keeper")
		kmsService.AssertExpectations(t)
	})

	t.Run("Error_DecryptClosesKeeper", func(t *testing.T) {
		kmsService := &mockKMSService{}
		keeper := &mockKMSKeeper{}
		kmsService.On("OpenKeeper", ctx, "awskms://key").Return(keeper, nil)
		keeper.On("Decrypt", ctx, []byte{0, 0, 0}).Return(nil, errors.New("access denied"))
		keeper.On("Close").Return(nil)

		provider, err := NewKMSKeyProvider(ctx, kmsService, "awskms://key", NewStaticKeyProvider("AAAA"))

		assert.Nil(t, provider)
		assert.ErrorContains(t, err, "failed to unwrap encryption key with KMS")
		kmsService.AssertExpectations(t)
		keeper.AssertExpectations(t)
	})
}
