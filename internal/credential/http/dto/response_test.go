package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

func newTestCredential() *credentialDomain.Credential {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return &credentialDomain.Credential{
		ID:   uuid.Must(uuid.NewV7()),
		Name: "smtp",
		Envelope: credentialDomain.Envelope{
			IV:         "AAAAAAAAAAAAAAAA",
			Ciphertext: "psIsUSI=",
			Tag:        "i5CPf2L/zqapL6vvOb9Nkw==",
		},
		CreatedAt: now,
		UpdatedAt: now.Add(time.Minute),
	}
}

func TestMapCredentialToResponse(t *testing.T) {
	credential := newTestCredential()

	response := MapCredentialToResponse(credential)

	assert.Equal(t, credential.ID.String(), response.ID)
	assert.Equal(t, "smtp", response.Name)
	assert.Equal(t, credential.CreatedAt, response.CreatedAt)
	assert.Equal(t, credential.UpdatedAt, response.UpdatedAt)

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "psIsUSI=")
}

func TestMapCredentialToEnvelopeResponse(t *testing.T) {
	body, err := json.Marshal(MapCredentialToEnvelopeResponse(newTestCredential()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "smtp",
		"iv": "AAAAAAAAAAAAAAAA",
		"ciphertext": "psIsUSI=",
		"tag": "i5CPf2L/zqapL6vvOb9Nkw=="
	}`, string(body))
}

func TestMapPairToRevealResponse(t *testing.T) {
	response := MapPairToRevealResponse("smtp", credentialDomain.CredentialPair{Username: "alice", Password: "p@ss"})

	assert.Equal(t, RevealCredentialResponse{Name: "smtp", Username: "alice", Password: "p@ss"}, response)
}

func TestMapCredentialsToListResponse(t *testing.T) {
	t.Run("Success_WithItems", func(t *testing.T) {
		response := MapCredentialsToListResponse([]*credentialDomain.Credential{newTestCredential()})

		require.Len(t, response.Data, 1)
		assert.Equal(t, "smtp", response.Data[0].Name)
	})

	t.Run("Success_EmptyRendersArray", func(t *testing.T) {
		body, err := json.Marshal(MapCredentialsToListResponse(nil))
		require.NoError(t, err)

		assert.JSONEq(t, `{"data":[]}`, string(body))
	})
}
