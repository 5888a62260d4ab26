package domain

// Sizes fixed by the envelope format. Changing any of them invalidates every stored envelope.
const (
	// KeySize is the length of the AES-256 key in bytes.
	KeySize = 32

	// KeyHexLength is the length of the hex-encoded key as it appears in configuration.
	KeyHexLength = KeySize * 2

	// NonceSize is the length of the GCM nonce (the envelope "iv") in bytes.
	NonceSize = 12

	// TagSize is the length of the GCM authentication tag in bytes.
	TagSize = 16
)
