// Package dto provides data transfer objects for the credential HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	customValidation "github.com/allisson/credvault/internal/validation"
)

// EncryptRequest contains the plaintext to seal. An empty string is valid;
// an absent field is not.
type EncryptRequest struct {
	Plaintext *string `json:"plaintext"`
}

// Validate checks that plaintext is present.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext, validation.NotNil),
	)
}

// PutCredentialRequest contains the pair to store. The name comes from the URL.
type PutCredentialRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that username and password are usable.
func (r *PutCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.RuneLength(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.RuneLength(1, 1024),
		),
	)
}

// ToCredentialPair converts the request into a domain pair.
func (r *PutCredentialRequest) ToCredentialPair() credentialDomain.CredentialPair {
	return credentialDomain.CredentialPair{Username: r.Username, Password: r.Password}
}

// ValidateCredentialName checks a name taken from the URL path.
func ValidateCredentialName(name string) error {
	return validation.Validate(name, validation.Required, customValidation.CredentialName)
}
