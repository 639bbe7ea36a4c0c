package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deforest-api/internal/core/auth"
	"deforest-api/internal/domain"
	resp "deforest-api/internal/transport/http/response"
)

// CookieName is the session credential cookie. HttpOnly + SameSite=Strict,
// Secure in production, Max-Age matches the token TTL.
const CookieName = "accessToken"

// keyClaims is where verified claims live in the gin context. Handlers read
// identity from here only — never from the request body or headers.
const keyClaims = "claims"

// Session authenticates the request from the accessToken cookie. Missing,
// invalid and expired credentials are all 401; the distinction stays in the
// server logs, not the response.
func Session(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(CookieName)
		if err != nil || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Access denied. Please login."))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Invalid token. Please login again."))
			return
		}
		c.Set(keyClaims, claims)
		c.Next()
	}
}

// RequireAdmin layers the role check on Session: a valid credential without
// the admin role is 403, distinct from the 401 of a missing/invalid one.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Access denied. Please login."))
			return
		}
		if claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Fail("Access denied. Admin privileges required."))
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the verified claims set by Session, or nil.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(keyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
