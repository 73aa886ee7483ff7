package authctx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reminder-engine/internal/domain/interfaces"
)

const (
	identityContextKey = "identity"
	userIDContextKey   = "user_id"
)

// Middleware validates the Authorization bearer token on every request and
// stores the resolved Identity (plus a bare user_id for the logging
// middleware) in the gin context, following the teacher's
// AuthMiddlewareGORM shape.
func Middleware(verifier interfaces.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(identityContextKey, identity)
		c.Set(userIDContextKey, identity.UserID)
		c.Next()
	}
}

// SetIdentity stores identity on c the same way Middleware does; used by
// handler tests that exercise routes without running the real middleware.
func SetIdentity(c *gin.Context, identity interfaces.Identity) {
	c.Set(identityContextKey, identity)
	c.Set(userIDContextKey, identity.UserID)
}

// FromContext retrieves the Identity stored by Middleware. The second
// return is false if the middleware never ran for this request.
func FromContext(c *gin.Context) (interfaces.Identity, bool) {
	val, exists := c.Get(identityContextKey)
	if !exists {
		return interfaces.Identity{}, false
	}
	identity, ok := val.(interfaces.Identity)
	return identity, ok
}
