package auth

import (
	"net/http"
	"strings"

	"chat-rooms/domain"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Middleware returns a gin handler that validates the Authorization header
// and binds the resolved Principal to the request context. Requests without
// a valid bearer token are rejected before any handler runs.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authorization token is missing"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(principalKey, domain.Principal{UserID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// PrincipalFrom extracts the Principal bound by Middleware.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
