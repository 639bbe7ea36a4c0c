package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deforest-api/internal/core/auth"
	"deforest-api/internal/core/oauth"
	"deforest-api/internal/domain"
	"deforest-api/internal/service"
	"deforest-api/internal/transport/http/middleware"
	resp "deforest-api/internal/transport/http/response"
)

const (
	oauthStateCookie = "oauthState"
	cookieMaxAge     = 24 * 60 * 60 // matches the token TTL
)

type AuthHandler struct {
	svc          *service.AuthService
	google       *oauth.GoogleProvider
	jwter        *auth.JWTer
	frontendURL  string
	cookieSecure bool
	log          *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, google *oauth.GoogleProvider, jwter *auth.JWTer, frontendURL string, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		google:       google,
		jwter:        jwter,
		frontendURL:  frontendURL,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

type signupIn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var in signupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Fail("All fields are required."))
		return
	}

	err := h.svc.Signup(in.Username, in.Email, in.Password)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, resp.Fail(ve.Message))
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, resp.Fail("An account with this email already exists."))
	case err != nil:
		h.log.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error. Please try again later."))
	default:
		c.JSON(http.StatusCreated, resp.OK("Account created successfully! Please login."))
	}
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Fail("Email and password are required."))
		return
	}

	u, err := h.svc.Login(in.Email, in.Password)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, resp.Fail(ve.Message))
		return
	case errors.Is(err, domain.ErrWrongProvider):
		c.JSON(http.StatusBadRequest, resp.Fail("This account uses Google login. Please use 'Login with Google'."))
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, resp.Fail("Invalid email or password."))
		return
	case err != nil:
		h.log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error. Please try again later."))
		return
	}

	tok, err := h.jwter.Issue(u)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error. Please try again later."))
		return
	}
	h.setSessionCookie(c, tok)
	c.JSON(http.StatusOK, resp.OK("Login successful!").With("user", gin.H{
		"email":    u.Email,
		"username": u.Username,
		"role":     u.Role,
	}))
}

// GET /api/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		h.log.Error("oauth state generation failed", zap.Error(err))
		h.redirectLoginError(c, "server_error")
		return
	}
	// CSRF state cookie, verified on the callback leg
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.LoginURL(state))
}

// GET /api/auth/google/callback
// Every failure stage redirects to the frontend login page with an error
// code; nothing here surfaces a raw error to the browser.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie != state {
		h.log.Warn("oauth state mismatch")
		h.redirectLoginError(c, "google_auth_failed")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cookieSecure, true)

	code := c.Query("code")
	if code == "" {
		// user denied consent or Google reported an error
		h.redirectLoginError(c, "google_auth_failed")
		return
	}

	id, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Error("google code exchange failed", zap.Error(err))
		h.redirectLoginError(c, "google_auth_failed")
		return
	}

	u, err := h.svc.ResolveOAuthUser(service.OAuthIdentity{
		Subject: id.Subject,
		Email:   id.Email,
		Name:    id.Name,
	})
	switch {
	case errors.Is(err, domain.ErrIdentityIncomplete):
		h.redirectLoginError(c, "missing_email")
		return
	case err != nil:
		h.log.Error("oauth user resolution failed", zap.Error(err))
		h.redirectLoginError(c, "server_error")
		return
	}

	tok, err := h.jwter.Issue(u)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		h.redirectLoginError(c, "server_error")
		return
	}
	h.setSessionCookie(c, tok)
	c.Redirect(http.StatusFound, h.frontendURL+"/dashboard")
}

// GET /api/auth/logout
// Purely client-side: the cookie is cleared, the token itself stays valid
// until expiry (stateless session model).
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, resp.OK("Logged out successfully"))
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	tok, err := c.Cookie(middleware.CookieName)
	if err != nil || tok == "" {
		c.JSON(http.StatusUnauthorized, resp.Fail("Not authenticated").With("user", nil))
		return
	}
	claims, err := h.jwter.Parse(tok)
	if err != nil {
		c.JSON(http.StatusUnauthorized, resp.Fail("Invalid token").With("user", nil))
		return
	}
	c.JSON(http.StatusOK, resp.OK("").With("user", gin.H{
		"email":    claims.Email,
		"username": claims.Username,
		"role":     claims.Role,
	}))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, token, cookieMaxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) redirectLoginError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+code)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
