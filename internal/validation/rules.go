// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credvault/internal/errors"
)

// MaxCredentialNameLength matches the width of the credentials.name column.
const MaxCredentialNameLength = 255

var credentialNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that a string has no leading or trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// CredentialName validates a credential name: ASCII letters, digits, dot,
// underscore and hyphen, starting with a letter or digit.
var CredentialName = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= MaxCredentialNameLength && credentialNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_credential_name",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-' (max 255)",
	),
)
