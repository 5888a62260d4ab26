package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// MockCredentialUseCase is a mock implementation of CredentialUseCase for testing.
type MockCredentialUseCase struct {
	mock.Mock
}

// Put mocks the Put method of CredentialUseCase.
func (m *MockCredentialUseCase) Put(
	ctx context.Context,
	name string,
	pair credentialDomain.CredentialPair,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, name, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

// Get mocks the Get method of CredentialUseCase.
func (m *MockCredentialUseCase) Get(ctx context.Context, name string) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

// Reveal mocks the Reveal method of CredentialUseCase.
func (m *MockCredentialUseCase) Reveal(
	ctx context.Context,
	name string,
) (credentialDomain.CredentialPair, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(credentialDomain.CredentialPair), args.Error(1)
}

// List mocks the List method of CredentialUseCase.
func (m *MockCredentialUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

// Delete mocks the Delete method of CredentialUseCase.
func (m *MockCredentialUseCase) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
