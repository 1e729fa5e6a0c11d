package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/auth"
)

// ClaimsKey is the gin context key holding *auth.Claims for authenticated requests.
const ClaimsKey = "claims"

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// IsPublic reports whether a request bypasses the auth gate.
func IsPublic(method, path string) bool {
	switch {
	case strings.HasPrefix(path, "/health"):
		return true
	case method == http.MethodPost && (path == "/api/auth/login" || path == "/api/auth/refresh" || path == "/api/users"):
		return true
	}
	return false
}

// RequireAuth gates every non-public route behind a Bearer access token.
// When enabled is false all requests pass through.
func RequireAuth(enabled bool, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || IsPublic(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			apierr.Abort(c, apierr.MissingAuthorization())
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			apierr.Abort(c, apierr.InvalidAuthorization())
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			apierr.Abort(c, apierr.InvalidToken("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims set by RequireAuth, if any.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
