package auth

import (
	"errors"
	"testing"
	"time"

	"deforest-api/internal/domain"
)

func testJWTer(ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "deforest-api", TTL: ttl}
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "u-1",
		Email:    "a@x.com",
		Username: "ann",
		Role:     domain.RoleUser,
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	j := testJWTer(time.Hour)

	tok, err := j.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UID != "u-1" {
		t.Errorf("uid = %q, want %q", claims.UID, "u-1")
	}
	if claims.Email != "a@x.com" {
		t.Errorf("email = %q, want %q", claims.Email, "a@x.com")
	}
	if claims.Username != "ann" {
		t.Errorf("username = %q, want %q", claims.Username, "ann")
	}
	if claims.Role != domain.RoleUser {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleUser)
	}
}

func TestParseExpired(t *testing.T) {
	j := testJWTer(-time.Minute)

	tok, err := j.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := j.Parse(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Parse error = %v, want ErrTokenExpired", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	tok, err := testJWTer(time.Hour).Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := &JWTer{Secret: []byte("another-secret"), Issuer: "deforest-api", TTL: time.Hour}
	if _, err := other.Parse(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTampered(t *testing.T) {
	j := testJWTer(time.Hour)
	tok, err := j.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	mangled := tok[:len(tok)-2] + "xx"
	if _, err := j.Parse(mangled); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseGarbage(t *testing.T) {
	j := testJWTer(time.Hour)
	if _, err := j.Parse("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse error = %v, want ErrTokenInvalid", err)
	}
}
