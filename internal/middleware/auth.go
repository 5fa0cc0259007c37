package middleware

import (
	"net/http"
	"strings"

	"farmdirect-be/internal/user"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequireAuth validates the Bearer token and stores the resolved
// principal in the request context. Requests without a valid token are
// rejected; use OptionalAuth for routes that serve anonymous traffic.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFromHeader(c, jwtSecret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// OptionalAuth resolves the principal when a valid token is present and
// lets the request through either way.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := principalFromHeader(c, jwtSecret); ok {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not in the
// allowed set. It must run after RequireAuth.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// Principal returns the authenticated caller stored by RequireAuth.
func Principal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}

func principalFromHeader(c *gin.Context, jwtSecret string) (user.Principal, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return user.Principal{}, false
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return user.Principal{}, false
	}

	claims, err := user.ParseJWT(jwtSecret, tokenStr)
	if err != nil {
		return user.Principal{}, false
	}

	return user.Principal{ID: claims.UserID, Role: user.Role(claims.Role)}, true
}
