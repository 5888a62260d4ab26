package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

const redacted = "[REDACTED]"

// CredentialPair is the plaintext username/password payload of an envelope.
//
// It is never persisted unencrypted. String and LogValue redact the password so a
// stray log statement cannot leak it.
type CredentialPair struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Canonical returns the deterministic text form used as plaintext:
// {"username":"...","password":"..."} with the field order fixed and HTML
// characters left unescaped. Returns ErrEncoding if either field is not valid
// UTF-8, since JSON cannot carry such text unchanged.
func (c CredentialPair) Canonical() ([]byte, error) {
	if !utf8.ValidString(c.Username) {
		return nil, fmt.Errorf("%w: username", ErrEncoding)
	}
	if !utf8.ValidString(c.Password) {
		return nil, fmt.Errorf("%w: password", ErrEncoding)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to marshal credential pair: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// String implements fmt.Stringer without exposing the password.
func (c CredentialPair) String() string {
	return fmt.Sprintf("CredentialPair{Username: %q, Password: %s}", c.Username, redacted)
}

// LogValue implements slog.LogValuer without exposing the password.
func (c CredentialPair) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", redacted),
	)
}

// ParseCredentialPair parses the canonical text form back into a CredentialPair.
// Returns ErrMalformedPayload unless data is a single JSON object holding exactly
// the string fields "username" and "password", each once.
func ParseCredentialPair(data []byte) (CredentialPair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return CredentialPair{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}

	var pair CredentialPair
	seen := make(map[string]bool, 2)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return CredentialPair{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		name, _ := tok.(string)

		var target *string
		switch name {
		case "username":
			target = &pair.Username
		case "password":
			target = &pair.Password
		default:
			return CredentialPair{}, fmt.Errorf("%w: unexpected field %q", ErrMalformedPayload, name)
		}
		if seen[name] {
			return CredentialPair{}, fmt.Errorf("%w: duplicate field %q", ErrMalformedPayload, name)
		}
		seen[name] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return CredentialPair{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if bytes.Equal(raw, []byte("null")) {
			return CredentialPair{}, fmt.Errorf("%w: %q must be a string", ErrMalformedPayload, name)
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return CredentialPair{}, fmt.Errorf("%w: %q must be a string", ErrMalformedPayload, name)
		}
	}

	if _, err := dec.Token(); err != nil {
		return CredentialPair{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return CredentialPair{}, fmt.Errorf("%w: trailing data after object", ErrMalformedPayload)
	}

	for _, name := range []string{"username", "password"} {
		if !seen[name] {
			return CredentialPair{}, fmt.Errorf("%w: missing %q", ErrMalformedPayload, name)
		}
	}

	return pair, nil
}
