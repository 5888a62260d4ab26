package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/credvault/internal/credential/http/dto"
	credentialUseCase "github.com/allisson/credvault/internal/credential/usecase"
	"github.com/allisson/credvault/internal/httputil"
	customValidation "github.com/allisson/credvault/internal/validation"
)

// CredentialHandler handles HTTP requests for the credential store.
type CredentialHandler struct {
	credentialUseCase credentialUseCase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(
	credentialUseCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

// credentialName reads and validates the :name path parameter, writing a 422
// response when it is invalid.
func (h *CredentialHandler) credentialName(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if err := dto.ValidateCredentialName(name); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return "", false
	}
	return name, true
}

// PutHandler creates or replaces a credential.
// PUT /v1/credentials/:name - Returns 200 OK with metadata only.
func (h *CredentialHandler) PutHandler(c *gin.Context) {
	name, ok := h.credentialName(c)
	if !ok {
		return
	}

	var req dto.PutCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	credential, err := h.credentialUseCase.Put(c.Request.Context(), name, req.ToCredentialPair())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialToResponse(credential))
}

// GetHandler decrypts and returns a credential pair.
// GET /v1/credentials/:name - Returns 200 OK with username and password.
func (h *CredentialHandler) GetHandler(c *gin.Context) {
	name, ok := h.credentialName(c)
	if !ok {
		return
	}

	pair, err := h.credentialUseCase.Reveal(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPairToRevealResponse(name, pair))
}

// GetEnvelopeHandler returns the stored envelope without decrypting it.
// GET /v1/credentials/:name/envelope - Returns 200 OK.
func (h *CredentialHandler) GetEnvelopeHandler(c *gin.Context) {
	name, ok := h.credentialName(c)
	if !ok {
		return
	}

	credential, err := h.credentialUseCase.Get(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialToEnvelopeResponse(credential))
}

// ListHandler lists stored credentials with pagination.
// GET /v1/credentials?offset=0&limit=50 - Returns 200 OK with metadata only.
func (h *CredentialHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	credentials, err := h.credentialUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialsToListResponse(credentials))
}

// DeleteHandler removes a credential.
// DELETE /v1/credentials/:name - Returns 204 No Content.
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	name, ok := h.credentialName(c)
	if !ok {
		return
	}

	if err := h.credentialUseCase.Delete(c.Request.Context(), name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
