package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"deforest-api/internal/domain"
	"deforest-api/pkg/utils"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError carries a client-facing message for malformed signup input.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthService owns signup, local login and the OAuth create-or-link bridge.
type AuthService struct {
	store domain.UserStore
	log   *zap.Logger
}

func NewAuthService(store domain.UserStore, log *zap.Logger) *AuthService {
	return &AuthService{store: store, log: log}
}

// Signup validates, hashes and stores a new local account. It never logs the
// plaintext or the hash, and does not log the user in.
func (s *AuthService) Signup(username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return validationErrorf("All fields are required.")
	}
	if len(username) < 3 {
		return validationErrorf("Username must be at least 3 characters long.")
	}
	if !emailRe.MatchString(email) {
		return validationErrorf("Please provide a valid email address.")
	}
	if !strongPassword(password) {
		return validationErrorf("Password must be at least 6 characters and include uppercase, lowercase, number, and symbol.")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Provider:     domain.ProviderLocal,
		Role:         domain.RoleUser,
	}
	if err := s.store.Create(u); err != nil {
		return err
	}
	s.log.Info("user created", zap.String("email", u.Email))
	return nil
}

// Login verifies local credentials. Unknown email and wrong password both
// map to ErrInvalidCredentials; OAuth-owned accounts get ErrWrongProvider so
// the handler can point the user at Google login.
func (s *AuthService) Login(email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationErrorf("Email and password are required.")
	}
	if !emailRe.MatchString(email) {
		return nil, validationErrorf("Please provide a valid email address.")
	}

	u, err := s.store.FindByEmail(email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Provider == domain.ProviderGoogle || u.PasswordHash == "" {
		return nil, domain.ErrWrongProvider
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// OAuthIdentity is a verified third-party assertion (Google userinfo).
type OAuthIdentity struct {
	Subject string
	Email   string
	Name    string
}

// ResolveOAuthUser turns an identity assertion into a local user record:
// unknown email creates a google-provider account, a known email without a
// linkage gets linked (externalID set, provider flipped, role preserved),
// and an already-linked account passes through untouched. Calling it twice
// with the same assertion yields the same user.
func (s *AuthService) ResolveOAuthUser(id OAuthIdentity) (*domain.User, error) {
	if id.Email == "" {
		return nil, domain.ErrIdentityIncomplete
	}

	u, err := s.store.FindByEmail(id.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = &domain.User{
			ID:         utils.NewID(),
			Email:      id.Email,
			Username:   id.Name,
			Provider:   domain.ProviderGoogle,
			ExternalID: id.Subject,
			Role:       domain.RoleUser,
		}
		if err := s.store.Create(u); err != nil {
			return nil, err
		}
		s.log.Info("google user created", zap.String("email", u.Email))
		return u, nil

	case err != nil:
		return nil, err

	default:
		if u.ExternalID == "" {
			u.ExternalID = id.Subject
			u.Provider = domain.ProviderGoogle
			if err := s.store.Save(u); err != nil {
				return nil, err
			}
			s.log.Info("linked existing account to google", zap.String("email", u.Email))
		}
		return u, nil
	}
}

// strongPassword requires >=6 chars with upper, lower, digit and symbol.
func strongPassword(pw string) bool {
	if len(pw) < 6 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
