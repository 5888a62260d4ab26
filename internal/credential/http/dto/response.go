package dto

import (
	"time"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

// DecryptResponse carries an opened plaintext.
// SECURITY: must only be transmitted over HTTPS.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// CredentialResponse describes a stored credential without any secret material.
type CredentialResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RevealCredentialResponse carries a decrypted credential pair.
// SECURITY: contains the plaintext password.
type RevealCredentialResponse struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialEnvelopeResponse carries the stored envelope of a credential.
type CredentialEnvelopeResponse struct {
	Name       string `json:"name"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

// ListCredentialsResponse represents a page of stored credentials.
type ListCredentialsResponse struct {
	Data []CredentialResponse `json:"data"`
}

// MapCredentialToResponse converts a stored credential to its metadata response.
func MapCredentialToResponse(credential *credentialDomain.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        credential.ID.String(),
		Name:      credential.Name,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}

// MapCredentialToEnvelopeResponse exposes the stored envelope of a credential.
func MapCredentialToEnvelopeResponse(credential *credentialDomain.Credential) CredentialEnvelopeResponse {
	return CredentialEnvelopeResponse{
		Name:       credential.Name,
		IV:         credential.Envelope.IV,
		Ciphertext: credential.Envelope.Ciphertext,
		Tag:        credential.Envelope.Tag,
	}
}

// MapPairToRevealResponse converts a decrypted pair into its response.
func MapPairToRevealResponse(name string, pair credentialDomain.CredentialPair) RevealCredentialResponse {
	return RevealCredentialResponse{
		Name:     name,
		Username: pair.Username,
		Password: pair.Password,
	}
}

// MapCredentialsToListResponse converts stored credentials into a list response.
func MapCredentialsToListResponse(credentials []*credentialDomain.Credential) ListCredentialsResponse {
	data := make([]CredentialResponse, 0, len(credentials))
	for _, credential := range credentials {
		data = append(data, MapCredentialToResponse(credential))
	}

	return ListCredentialsResponse{Data: data}
}
