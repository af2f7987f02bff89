package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/payamancoders/trustcheck/internal/domain"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token into the caller identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Auth validates the Authorization header and attaches the caller identity.
type Auth struct {
	Verifier TokenVerifier
}

// NewAuth constructs the bearer token middleware.
func NewAuth(verifier TokenVerifier) *Auth {
	return &Auth{Verifier: verifier}
}

// Authenticate ensures the request has a valid bearer token.
func (m *Auth) Authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authorization header required."})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Bearer token required."})
		return
	}
	identity, err := m.Verifier.Verify(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Invalid access token."})
		return
	}
	c.Set(identityKey, identity)
	c.Next()
}

// RequireRole rejects authenticated callers whose role is not in roles.
// It must run after Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "error_description": "Insufficient role for this resource."})
	}
}

// GetIdentity exposes the authenticated caller to handlers.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}
