package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
)

func newTestCipher(t *testing.T, keyHex string) *CredentialCipher {
	t.Helper()
	return NewCredentialCipher(NewStaticKeyProvider(keyHex), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func flipBit(t *testing.T, encoded string, bit int) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	raw[bit/8] ^= 1 << (bit % 8)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestCredentialCipher_IsConfigured(t *testing.T) {
	t.Run("Success_ValidKey", func(t *testing.T) {
		assert.True(t, newTestCipher(t, validKeyHex).IsConfigured())
	})

	tests := []struct {
		name  string
		value string
	}{
		{"NotSet", ""},
		{"TooShort", validKeyHex[:62]},
		{"TooLong", validKeyHex + "0a"},
		{"NonHex", strings.Repeat("g", 64)},
		{"OddLength", validKeyHex[:63]},
	}

	for _, tt := range tests {
		t.Run("NotConfigured_"+tt.name, func(t *testing.T) {
			c := newTestCipher(t, tt.value)

			assert.False(t, c.IsConfigured())

			_, err := c.Encrypt("hello")
			assert.ErrorIs(t, err, credentialDomain.ErrConfiguration)

			_, err = c.Decrypt(credentialDomain.Envelope{})
			assert.ErrorIs(t, err, credentialDomain.ErrConfiguration)

			_, err = c.EncryptCredentials(credentialDomain.CredentialPair{Username: "a", Password: "b"})
			assert.ErrorIs(t, err, credentialDomain.ErrConfiguration)

			_, err = c.DecryptCredentials(credentialDomain.Envelope{})
			assert.ErrorIs(t, err, credentialDomain.ErrConfiguration)
		})
	}

	t.Run("LogsWithoutKeyValue", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		c := NewCredentialCipher(NewStaticKeyProvider(validKeyHex[:62]), logger)

		assert.False(t, c.IsConfigured())

		output := buf.String()
		assert.Contains(t, output, `"present":true`)
		assert.Contains(t, output, `"valid":false`)
		assert.Contains(t, output, `"key_length":31`)
		assert.NotContains(t, output, validKeyHex[:62])
	})
}

func TestCredentialCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t, validKeyHex)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"Empty", ""},
		{"ASCII", "hello"},
		{"MultiByte", "héllo wörld, 日本語 🔐"},
		{"JSON", `{"username":"alice","password":"p@ss"}`},
		{"Large", strings.Repeat("x", 64*1024)},
	}

	for _, tt := range tests {
		t.Run("Success_"+tt.name, func(t *testing.T) {
			envelope, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)

			ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
			require.NoError(t, err)
			assert.Len(t, ciphertext, len(tt.plaintext))

			decrypted, err := c.Decrypt(envelope)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestCredentialCipher_Encrypt(t *testing.T) {
	t.Run("Success_PinnedVector", func(t *testing.T) {
		c := newTestCipher(t, zeroKeyHex)
		c.rand = bytes.NewReader(make([]byte, credentialDomain.NonceSize))

		envelope, err := c.Encrypt("hello")

		require.NoError(t, err)
		assert.Equal(t, "AAAAAAAAAAAAAAAA", envelope.IV)
		assert.Equal(t, "psIsUSI=", envelope.Ciphertext)
		assert.Equal(t, "i5CPf2L/zqapL6vvOb9Nkw==", envelope.Tag)
	})

	t.Run("Success_PinnedVectorEmptyPlaintext", func(t *testing.T) {
		c := newTestCipher(t, zeroKeyHex)
		c.rand = bytes.NewReader(make([]byte, credentialDomain.NonceSize))

		envelope, err := c.Encrypt("")

		require.NoError(t, err)
		assert.Equal(t, "", envelope.Ciphertext)
		assert.Equal(t, "Uw+K+8dFNrmpY7TxxMtziw==", envelope.Tag)
	})

	t.Run("Success_DecryptsPinnedVector", func(t *testing.T) {
		c := newTestCipher(t, zeroKeyHex)

		plaintext, err := c.Decrypt(credentialDomain.Envelope{
			IV:         "AAAAAAAAAAAAAAAA",
			Ciphertext: "psIsUSI=",
			Tag:        "i5CPf2L/zqapL6vvOb9Nkw==",
		})

		require.NoError(t, err)
		assert.Equal(t, "hello", plaintext)
	})

	t.Run("Success_NonceUniqueness", func(t *testing.T) {
		c := newTestCipher(t, validKeyHex)
		seen := make(map[string]struct{}, 1000)

		for i := 0; i < 1000; i++ {
			envelope, err := c.Encrypt("same plaintext")
			require.NoError(t, err)

			_, dup := seen[envelope.IV]
			require.False(t, dup, "nonce reused at iteration %d", i)
			seen[envelope.IV] = struct{}{}
		}
	})

	t.Run("Error_RandomSourceFailure", func(t *testing.T) {
		c := newTestCipher(t, validKeyHex)
		c.rand = bytes.NewReader(nil)

		envelope, err := c.Encrypt("hello")

		assert.Error(t, err)
		assert.Equal(t, credentialDomain.Envelope{}, envelope)
	})
}

func TestCredentialCipher_Decrypt(t *testing.T) {
	c := newTestCipher(t, validKeyHex)

	envelope, err := c.Encrypt("hello")
	require.NoError(t, err)

	t.Run("Error_EveryCiphertextBitFlip", func(t *testing.T) {
		for bit := 0; bit < len("hello")*8; bit++ {
			tampered := envelope
			tampered.Ciphertext = flipBit(t, envelope.Ciphertext, bit)

			plaintext, err := c.Decrypt(tampered)
			assert.ErrorIs(t, err, credentialDomain.ErrAuthentication, "bit %d", bit)
			assert.Empty(t, plaintext)
		}
	})

	t.Run("Error_EveryTagBitFlip", func(t *testing.T) {
		for bit := 0; bit < credentialDomain.TagSize*8; bit++ {
			tampered := envelope
			tampered.Tag = flipBit(t, envelope.Tag, bit)

			plaintext, err := c.Decrypt(tampered)
			assert.ErrorIs(t, err, credentialDomain.ErrAuthentication, "bit %d", bit)
			assert.Empty(t, plaintext)
		}
	})

	t.Run("Error_IVBitFlip", func(t *testing.T) {
		tampered := envelope
		tampered.IV = flipBit(t, envelope.IV, 0)

		_, err := c.Decrypt(tampered)
		assert.ErrorIs(t, err, credentialDomain.ErrAuthentication)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		other := newTestCipher(t, otherKeyHex)

		plaintext, err := other.Decrypt(envelope)

		assert.ErrorIs(t, err, credentialDomain.ErrAuthentication)
		assert.Empty(t, plaintext)
	})

	t.Run("Error_TruncatedCiphertext", func(t *testing.T) {
		tampered := envelope
		tampered.Ciphertext = base64.StdEncoding.EncodeToString([]byte("hell"))

		_, err := c.Decrypt(tampered)
		assert.ErrorIs(t, err, credentialDomain.ErrAuthentication)
	})

	malformed := []struct {
		name   string
		mutate func(e *credentialDomain.Envelope)
	}{
		{"InvalidIVBase64", func(e *credentialDomain.Envelope) { e.IV = "not base64!" }},
		{"InvalidCiphertextBase64", func(e *credentialDomain.Envelope) { e.Ciphertext = "%%%" }},
		{"InvalidTagBase64", func(e *credentialDomain.Envelope) { e.Tag = "***" }},
		{"ShortIV", func(e *credentialDomain.Envelope) { e.IV = base64.StdEncoding.EncodeToString(make([]byte, 8)) }},
		{"LongIV", func(e *credentialDomain.Envelope) { e.IV = base64.StdEncoding.EncodeToString(make([]byte, 16)) }},
		{"ShortTag", func(e *credentialDomain.Envelope) { e.Tag = base64.StdEncoding.EncodeToString(make([]byte, 12)) }},
		{"EmptyTag", func(e *credentialDomain.Envelope) { e.Tag = "" }},
	}

	for _, tt := range malformed {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			tampered := envelope
			tt.mutate(&tampered)

			_, err := c.Decrypt(tampered)
			assert.ErrorIs(t, err, credentialDomain.ErrMalformedEnvelope)
		})
	}

	t.Run("Error_InvalidUTF8", func(t *testing.T) {
		key, err := NewKeyLoader(NewStaticKeyProvider(validKeyHex)).Load()
		require.NoError(t, err)
		aead, err := NewAESGCM(key, c.rand)
		require.NoError(t, err)

		nonce, ciphertext, tag, err := aead.Seal([]byte{0xff, 0xfe, 0xfd}, nil)
		require.NoError(t, err)

		plaintext, err := c.Decrypt(credentialDomain.NewEnvelope(nonce, ciphertext, tag))
		assert.ErrorIs(t, err, credentialDomain.ErrEncoding)
		assert.Empty(t, plaintext)
	})
}

func TestCredentialCipher_Credentials(t *testing.T) {
	c := newTestCipher(t, validKeyHex)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		pair := credentialDomain.CredentialPair{Username: "alice", Password: "p@ss"}

		envelope, err := c.EncryptCredentials(pair)
		require.NoError(t, err)

		decrypted, err := c.DecryptCredentials(envelope)
		require.NoError(t, err)
		assert.Equal(t, pair, decrypted)
	})

	t.Run("Success_CanonicalPlaintext", func(t *testing.T) {
		envelope, err := c.EncryptCredentials(credentialDomain.CredentialPair{Username: "alice", Password: "p@ss"})
		require.NoError(t, err)

		plaintext, err := c.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, `{"username":"alice","password":"p@ss"}`, plaintext)
	})

	t.Run("Success_PinnedVector", func(t *testing.T) {
		zero := newTestCipher(t, zeroKeyHex)
		zero.rand = bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})

		envelope, err := zero.EncryptCredentials(credentialDomain.CredentialPair{Username: "alice", Password: "p@ss"})

		require.NoError(t, err)
		assert.Equal(t, "AAECAwQFBgcICQoL", envelope.IV)
		assert.Equal(t, "8+lGIWWP4ZivHXDf32KyZTcJirad7e6FvLyLeekXNU2ct8/Wbho=", envelope.Ciphertext)
		assert.Equal(t, "eL4pdIUv9jL2ugj8PVAZtg==", envelope.Tag)
	})

	t.Run("Success_SpecialCharacters", func(t *testing.T) {
		pair := credentialDomain.CredentialPair{Username: `bob "the" <admin>`, Password: "pä$$\\wörd\n"}

		envelope, err := c.EncryptCredentials(pair)
		require.NoError(t, err)

		decrypted, err := c.DecryptCredentials(envelope)
		require.NoError(t, err)
		assert.Equal(t, pair, decrypted)
	})

	t.Run("Error_InvalidUTF8Rejected", func(t *testing.T) {
		envelope, err := c.EncryptCredentials(credentialDomain.CredentialPair{Username: "a\xffb", Password: "p@ss"})

		assert.ErrorIs(t, err, credentialDomain.ErrEncoding)
		assert.Equal(t, credentialDomain.Envelope{}, envelope)
	})

	t.Run("Error_DuplicateFieldPayload", func(t *testing.T) {
		envelope, err := c.Encrypt(`{"username":"a","username":"b","password":"c"}`)
		require.NoError(t, err)

		pair, err := c.DecryptCredentials(envelope)

		assert.ErrorIs(t, err, credentialDomain.ErrMalformedPayload)
		assert.Equal(t, credentialDomain.CredentialPair{}, pair)
	})

	payloads := []struct {
		name      string
		plaintext string
	}{
		{"NotJSON", "not json"},
		{"Array", `["alice","p@ss"]`},
		{"MissingPassword", `{"username":"alice"}`},
		{"ExtraField", `{"username":"alice","password":"p@ss","admin":true}`},
		{"NonStringPassword", `{"username":"alice","password":1234}`},
	}

	for _, tt := range payloads {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			envelope, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)

			_, err = c.DecryptCredentials(envelope)
			assert.ErrorIs(t, err, credentialDomain.ErrMalformedPayload)
		})
	}

	t.Run("Error_TamperedEnvelope", func(t *testing.T) {
		envelope, err := c.EncryptCredentials(credentialDomain.CredentialPair{Username: "alice", Password: "p@ss"})
		require.NoError(t, err)
		envelope.Tag = flipBit(t, envelope.Tag, 7)

		_, err = c.DecryptCredentials(envelope)
		assert.ErrorIs(t, err, credentialDomain.ErrAuthentication)
	})
}

func TestCredentialCipher_Concurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := newTestCipher(t, validKeyHex)

	const workers = 16
	const iterations = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				plaintext := fmt.Sprintf("worker-%d-message-%d", w, i)

				envelope, err := c.Encrypt(plaintext)
				if err != nil {
					errs <- err
					return
				}

				decrypted, err := c.Decrypt(envelope)
				if err != nil {
					errs <- err
					return
				}
				if decrypted != plaintext {
					errs <- fmt.Errorf("worker %d: got %q, want %q", w, decrypted, plaintext)
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
