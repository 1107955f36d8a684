package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated collaborator service.
type Principal struct {
	Service string
}

// AuthMiddleware validates bearer tokens. When no API key hash is
// configured, authentication is disabled (development mode).
type AuthMiddleware struct {
	tokens     *TokenManager
	apiKeyHash string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, apiKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, apiKeyHash: apiKeyHash}
}

// Enabled reports whether authentication is enforced.
func (m *AuthMiddleware) Enabled() bool {
	return m.apiKeyHash != ""
}

// VerifyAPIKey compares the presented API key against the configured
// bcrypt hash.
func (m *AuthMiddleware) VerifyAPIKey(apiKey string) error {
	if !m.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.apiKeyHash), []byte(apiKey)); err != nil {
		return apperrors.NewUnauthorized("invalid api key")
	}
	return nil
}

// Tokens exposes the token manager for the auth handler.
func (m *AuthMiddleware) Tokens() *TokenManager {
	return m.tokens
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if !m.Enabled() {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{Service: claims.Service})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated collaborator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
