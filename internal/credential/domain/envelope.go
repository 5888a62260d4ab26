package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Envelope is the stored and transmitted form of one AES-256-GCM ciphertext.
//
// Each field is standard base64 text:
//   - IV: the 12-byte nonce generated for this encryption
//   - Ciphertext: the cipher output, same length as the plaintext
//   - Tag: the 16-byte authentication tag
//
// An envelope carries no key identifier. It can only be opened with the key
// that sealed it. The JSON field names are part of the storage format.
type Envelope struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

// NewEnvelope base64-encodes the raw nonce, ciphertext and tag into an Envelope.
func NewEnvelope(iv, ciphertext, tag []byte) Envelope {
	return Envelope{
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Tag:        base64.StdEncoding.EncodeToString(tag),
	}
}

// Decode returns the raw nonce, ciphertext and tag.
// Returns ErrMalformedEnvelope if a field is not valid base64 or the nonce or tag
// has the wrong length.
func (e Envelope) Decode() (iv, ciphertext, tag []byte, err error) {
	iv, err = base64.StdEncoding.DecodeString(e.IV)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: iv: %v", ErrMalformedEnvelope, err)
	}
	if len(iv) != NonceSize {
		return nil, nil, nil, fmt.Errorf(
			"%w: iv must be %d bytes, got %d",
			ErrMalformedEnvelope,
			NonceSize,
			len(iv),
		)
	}

	ciphertext, err = base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: ciphertext: %v", ErrMalformedEnvelope, err)
	}

	tag, err = base64.StdEncoding.DecodeString(e.Tag)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: tag: %v", ErrMalformedEnvelope, err)
	}
	if len(tag) != TagSize {
		return nil, nil, nil, fmt.Errorf(
			"%w: tag must be %d bytes, got %d",
			ErrMalformedEnvelope,
			TagSize,
			len(tag),
		)
	}

	return iv, ciphertext, tag, nil
}

// envelopeJSON requires every key to be present when parsing.
type envelopeJSON struct {
	IV         *string `json:"iv"`
	Ciphertext *string `json:"ciphertext"`
	Tag        *string `json:"tag"`
}

// ParseEnvelope parses the JSON object form of an envelope.
//
// The object must have exactly the keys "iv", "ciphertext" and "tag", all strings.
// Field contents are not decoded here; Decode does that.
func ParseEnvelope(data []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw envelopeJSON
	if err := dec.Decode(&raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if dec.More() {
		return Envelope{}, fmt.Errorf("%w: trailing data after envelope", ErrMalformedEnvelope)
	}
	if raw.IV == nil || raw.Ciphertext == nil || raw.Tag == nil {
		return Envelope{}, fmt.Errorf(
			"%w: envelope requires iv, ciphertext and tag",
			ErrMalformedEnvelope,
		)
	}

	return Envelope{IV: *raw.IV, Ciphertext: *raw.Ciphertext, Tag: *raw.Tag}, nil
}
