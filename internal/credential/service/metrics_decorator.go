package service

import (
	"context"
	"time"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	"github.com/allisson/credvault/internal/metrics"
)

const metricsDomain = "cipher"

// cipherWithMetrics decorates Cipher with metrics instrumentation.
type cipherWithMetrics struct {
	next    Cipher
	metrics metrics.BusinessMetrics
}

// NewCipherWithMetrics wraps a Cipher with metrics recording. Cipher calls carry
// no context, so measurements are recorded against context.Background().
func NewCipherWithMetrics(cipher Cipher, m metrics.BusinessMetrics) Cipher {
	return &cipherWithMetrics{
		next:    cipher,
		metrics: m,
	}
}

func (c *cipherWithMetrics) record(operation string, start time.Time, err error) {
	ctx := context.Background()
	status := metrics.StatusFromError(err)
	c.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	c.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// IsConfigured is not instrumented; readiness probes call it constantly.
func (c *cipherWithMetrics) IsConfigured() bool {
	return c.next.IsConfigured()
}

func (c *cipherWithMetrics) Encrypt(plaintext string) (credentialDomain.Envelope, error) {
	start := time.Now()
	envelope, err := c.next.Encrypt(plaintext)
	c.record("encrypt", start, err)
	return envelope, err
}

func (c *cipherWithMetrics) Decrypt(envelope credentialDomain.Envelope) (string, error) {
	start := time.Now()
	plaintext, err := c.next.Decrypt(envelope)
	c.record("decrypt", start, err)
	return plaintext, err
}

func (c *cipherWithMetrics) EncryptCredentials(
	pair credentialDomain.CredentialPair,
) (credentialDomain.Envelope, error) {
	start := time.Now()
	envelope, err := c.next.EncryptCredentials(pair)
	c.record("encrypt_credentials", start, err)
	return envelope, err
}

func (c *cipherWithMetrics) DecryptCredentials(
	envelope credentialDomain.Envelope,
) (credentialDomain.CredentialPair, error) {
	start := time.Now()
	pair, err := c.next.DecryptCredentials(envelope)
	c.record("decrypt_credentials", start, err)
	return pair, err
}
