package app

import (
	"context"
	"fmt"

	credentialHTTP "github.com/allisson/credvault/internal/credential/http"
	credentialRepository "github.com/allisson/credvault/internal/credential/repository"
	credentialService "github.com/allisson/credvault/internal/credential/service"
	credentialUseCase "github.com/allisson/credvault/internal/credential/usecase"
	"github.com/allisson/credvault/internal/database"
)

// KMSService returns the KMS service used to unwrap a KMS-protected encryption key.
func (c *Container) KMSService() credentialService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = credentialService.NewKMSService()
	})
	return c.kmsService
}

// KeyProvider returns the source of the encryption key.
//
// The key is read from the configured environment variable. When KMS_KEY_URI is set
// the variable holds a KMS-wrapped key that is unwrapped once here.
func (c *Container) KeyProvider() (credentialService.KeyProvider, error) {
	c.keyProviderInit.Do(func() {
		provider, err := c.initKeyProvider()
		if err != nil {
			c.setInitError("keyProvider", err)
			return
		}
		c.keyProvider = provider
	})
	if err := c.initError("keyProvider"); err != nil {
		return nil, err
	}
	return c.keyProvider, nil
}

// Cipher returns the credential cipher, decorated with metrics when enabled.
func (c *Container) Cipher() (credentialService.Cipher, error) {
	c.cipherInit.Do(func() {
		cipher, err := c.initCipher()
		if err != nil {
			c.setInitError("cipher", err)
			return
		}
		c.cipher = cipher
	})
	if err := c.initError("cipher"); err != nil {
		return nil, err
	}
	return c.cipher, nil
}

// CredentialRepository returns the credential repository for the configured driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	c.credentialRepositoryInit.Do(func() {
		repo, err := c.initCredentialRepository()
		if err != nil {
			c.setInitError("credentialRepository", err)
			return
		}
		c.credentialRepository = repo
	})
	if err := c.initError("credentialRepository"); err != nil {
		return nil, err
	}
	return c.credentialRepository, nil
}

// CredentialUseCase returns the credential store use case.
func (c *Container) CredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	c.credentialUseCaseInit.Do(func() {
		useCase, err := c.initCredentialUseCase()
		if err != nil {
			c.setInitError("credentialUseCase", err)
			return
		}
		c.credentialUseCase = useCase
	})
	if err := c.initError("credentialUseCase"); err != nil {
		return nil, err
	}
	return c.credentialUseCase, nil
}

// CryptoHandler returns the HTTP handler for the encrypt and decrypt endpoints.
func (c *Container) CryptoHandler() (*credentialHTTP.CryptoHandler, error) {
	c.cryptoHandlerInit.Do(func() {
		cipher, err := c.Cipher()
		if err != nil {
			c.setInitError("cryptoHandler", fmt.Errorf("failed to get cipher for crypto handler: %w", err))
			return
		}
		c.cryptoHandler = credentialHTTP.NewCryptoHandler(cipher, c.Logger())
	})
	if err := c.initError("cryptoHandler"); err != nil {
		return nil, err
	}
	return c.cryptoHandler, nil
}

// CredentialHandler returns the HTTP handler for the credential store endpoints.
func (c *Container) CredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	c.credentialHandlerInit.Do(func() {
		useCase, err := c.CredentialUseCase()
		if err != nil {
			c.setInitError(
				"credentialHandler",
				fmt.Errorf("failed to get credential use case for credential handler: %w", err),
			)
			return
		}
		c.credentialHandler = credentialHTTP.NewCredentialHandler(useCase, c.Logger())
	})
	if err := c.initError("credentialHandler"); err != nil {
		return nil, err
	}
	return c.credentialHandler, nil
}

// initKeyProvider selects the environment or KMS key provider.
func (c *Container) initKeyProvider() (credentialService.KeyProvider, error) {
	envProvider := credentialService.NewEnvKeyProvider(c.config.EncryptionKeyEnv)
	if c.config.KMSKeyURI == "" {
		return envProvider, nil
	}

	provider, err := credentialService.NewKMSKeyProvider(
		context.Background(),
		c.KMSService(),
		c.config.KMSKeyURI,
		envProvider,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load KMS-wrapped encryption key: %w", err)
	}
	return provider, nil
}

// initCipher creates the credential cipher.
func (c *Container) initCipher() (credentialService.Cipher, error) {
	provider, err := c.KeyProvider()
	if err != nil {
		return nil, err
	}

	var cipher credentialService.Cipher = credentialService.NewCredentialCipher(provider, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for cipher: %w", err)
		}
		cipher = credentialService.NewCipherWithMetrics(cipher, businessMetrics)
	}

	return cipher, nil
}

// initCredentialRepository creates the credential repository based on the database driver.
func (c *Container) initCredentialRepository() (credentialUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	case database.DriverMySQL:
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}

	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	cipher, err := c.Cipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher for credential use case: %w", err)
	}

	useCase := credentialUseCase.NewCredentialUseCase(txManager, repo, cipher)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		useCase = credentialUseCase.NewCredentialUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}
