package usecase

import (
	"context"
	"time"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	"github.com/allisson/credvault/internal/metrics"
)

const metricsDomain = "credentials"

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFromError(err)
	c.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	c.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Put records metrics for credential create/replace operations.
func (c *credentialUseCaseWithMetrics) Put(
	ctx context.Context,
	name string,
	pair credentialDomain.CredentialPair,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Put(ctx, name, pair)
	c.record(ctx, "credential_put", start, err)
	return credential, err
}

// Get records metrics for credential retrieval operations.
func (c *credentialUseCaseWithMetrics) Get(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Get(ctx, name)
	c.record(ctx, "credential_get", start, err)
	return credential, err
}

// Reveal records metrics for credential decryption operations.
func (c *credentialUseCaseWithMetrics) Reveal(
	ctx context.Context,
	name string,
) (credentialDomain.CredentialPair, error) {
	start := time.Now()
	pair, err := c.next.Reveal(ctx, name)
	c.record(ctx, "credential_reveal", start, err)
	return pair, err
}

// List records metrics for credential listing operations.
func (c *credentialUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	start := time.Now()
	credentials, err := c.next.List(ctx, offset, limit)
	c.record(ctx, "credential_list", start, err)
	return credentials, err
}

// Delete records metrics for credential deletion operations.
func (c *credentialUseCaseWithMetrics) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := c.next.Delete(ctx, name)
	c.record(ctx, "credential_delete", start, err)
	return err
}
