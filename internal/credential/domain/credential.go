package domain

import (
	"time"

	"github.com/google/uuid"
)

// Credential is a named, persisted envelope whose plaintext is a CredentialPair.
//
// The store only ever sees the envelope; revealing the pair requires the
// encryption key that produced it.
type Credential struct {
	ID        uuid.UUID
	Name      string
	Envelope  Envelope
	CreatedAt time.Time
	UpdatedAt time.Time
}
