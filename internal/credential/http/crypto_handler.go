// Package http provides HTTP handlers for the credential cipher and the credential store.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	credentialDomain "github.com/allisson/credvault/internal/credential/domain"
	"github.com/allisson/credvault/internal/credential/http/dto"
	credentialService "github.com/allisson/credvault/internal/credential/service"
	"github.com/allisson/credvault/internal/httputil"
	customValidation "github.com/allisson/credvault/internal/validation"
)

// CryptoHandler exposes the cipher's encrypt and decrypt operations.
type CryptoHandler struct {
	cipher credentialService.Cipher
	logger *slog.Logger
}

// NewCryptoHandler creates a new crypto handler.
func NewCryptoHandler(cipher credentialService.Cipher, logger *slog.Logger) *CryptoHandler {
	return &CryptoHandler{
		cipher: cipher,
		logger: logger,
	}
}

// EncryptHandler seals a plaintext.
// POST /v1/encrypt - Returns 200 OK with the envelope {iv, ciphertext, tag}.
func (h *CryptoHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	envelope, err := h.cipher.Encrypt(*req.Plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// DecryptHandler opens an envelope.
// POST /v1/decrypt - Body must be exactly {iv, ciphertext, tag}. Returns 200 OK with
// {plaintext}. A tag mismatch yields 422 with no detail about the cause.
func (h *CryptoHandler) DecryptHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	envelope, err := credentialDomain.ParseEnvelope(body)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	plaintext, err := h.cipher.Decrypt(envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DecryptResponse{Plaintext: plaintext})
}
