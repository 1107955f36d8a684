package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskops/helpdesk-engine/internal/api/dto"
	"github.com/helpdeskops/helpdesk-engine/internal/auth"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// AuthHandler exchanges a collaborator API key for a bearer token.
type AuthHandler struct {
	middleware *auth.AuthMiddleware
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(middleware *auth.AuthMiddleware) *AuthHandler {
	return &AuthHandler{middleware: middleware}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Service) == "" {
		return apperrors.NewValidationError("service required", nil)
	}
	if err := h.middleware.VerifyAPIKey(req.APIKey); err != nil {
		return err
	}

	token, expiresAt, err := h.middleware.Tokens().GenerateToken(req.Service)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt}})
}
