package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
)

const (
	userIDKey    = "user_id"
	principalKey = "principal"
)

// Authenticator resolves a bearer token to its principal.
type Authenticator interface {
	Authenticate(token string) (*auth.Principal, error)
}

// JWTAuthMiddleware rejects requests without a valid, unrevoked bearer token.
func JWTAuthMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No bearer token"})
			return
		}
		p, err := a.Authenticate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearer(c); ok {
			if p, err := a.Authenticate(tokenStr); err == nil {
				setPrincipal(c, p)
			}
		}
		c.Next()
	}
}

// Principal returns the principal set by one of the auth middlewares.
func Principal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}

// UserID returns the signed-in user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalKey, p)
	c.Set(userIDKey, p.UserID)
}
