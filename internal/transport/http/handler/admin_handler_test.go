package handler_test

import (
	"net/http"
	"testing"

	"deforest-api/internal/domain"
	"deforest-api/pkg/utils"
)

func seedAdminAndUser(t *testing.T, env *testEnv) (admin, user *domain.User) {
	t.Helper()
	admin = &domain.User{
		ID: utils.NewID(), Email: "admin@x.com", Username: "Admin",
		PasswordHash: "irrelevant", Provider: domain.ProviderLocal, Role: domain.RoleAdmin,
	}
	user = &domain.User{
		ID: utils.NewID(), Email: "u@x.com", Username: "user",
		PasswordHash: "irrelevant", Provider: domain.ProviderLocal, Role: domain.RoleUser,
	}
	for _, u := range []*domain.User{admin, user} {
		if err := env.store.Create(u); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	return admin, user
}

func (e *testEnv) cookieFor(t *testing.T, u *domain.User) *http.Cookie {
	t.Helper()
	tok, err := e.jwter.Issue(u)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return &http.Cookie{Name: "accessToken", Value: tok}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t, nil)
	_, user := seedAdminAndUser(t, env)

	// no credential at all
	if w := env.do(t, http.MethodGet, "/api/admin/users", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}
	// valid credential, insufficient role
	if w := env.do(t, http.MethodGet, "/api/admin/users", "", env.cookieFor(t, user)); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", w.Code)
	}
}

func TestAdminListUsersStripsSecrets(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := seedAdminAndUser(t, env)

	w := env.do(t, http.MethodGet, "/api/admin/users", "", env.cookieFor(t, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2", body["total"])
	}
	users, _ := body["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("users = %v", body["users"])
	}
	for _, v := range users {
		u := v.(map[string]any)
		for _, forbidden := range []string{"passwordHash", "PasswordHash", "externalId", "ExternalID"} {
			if _, ok := u[forbidden]; ok {
				t.Errorf("user payload leaks %s: %v", forbidden, u)
			}
		}
	}
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, user := seedAdminAndUser(t, env)
	adminCk := env.cookieFor(t, admin)

	// self-deletion refused
	if w := env.do(t, http.MethodDelete, "/api/admin/users/"+admin.ID, "", adminCk); w.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d, want 400", w.Code)
	}
	// unknown target
	if w := env.do(t, http.MethodDelete, "/api/admin/users/no-such-id", "", adminCk); w.Code != http.StatusNotFound {
		t.Fatalf("missing target status = %d, want 404", w.Code)
	}
	// another admin is protected
	second := &domain.User{ID: utils.NewID(), Email: "admin2@x.com", Username: "Admin2", Provider: domain.ProviderLocal, Role: domain.RoleAdmin}
	if err := env.store.Create(second); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if w := env.do(t, http.MethodDelete, "/api/admin/users/"+second.ID, "", adminCk); w.Code != http.StatusForbidden {
		t.Fatalf("delete admin status = %d, want 403", w.Code)
	}
	// plain user goes away
	if w := env.do(t, http.MethodDelete, "/api/admin/users/"+user.ID, "", adminCk); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	users, _ := env.store.List(domain.Filter{})
	for _, u := range users {
		if u.ID == user.ID {
			t.Fatal("deleted user still present")
		}
	}
}

func TestAdminPromoteUser(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, user := seedAdminAndUser(t, env)
	adminCk := env.cookieFor(t, admin)

	w := env.do(t, http.MethodPatch, "/api/admin/users/"+user.ID+"/promote", "", adminCk)
	if w.Code != http.StatusOK {
		t.Fatalf("promote status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	promoted, _ := body["user"].(map[string]any)
	if promoted["role"] != domain.RoleAdmin {
		t.Fatalf("promoted payload = %v", body)
	}

	// already admin
	if w := env.do(t, http.MethodPatch, "/api/admin/users/"+user.ID+"/promote", "", adminCk); w.Code != http.StatusBadRequest {
		t.Fatalf("re-promote status = %d, want 400", w.Code)
	}
	// unknown target
	if w := env.do(t, http.MethodPatch, "/api/admin/users/no-such-id/promote", "", adminCk); w.Code != http.StatusNotFound {
		t.Fatalf("missing target status = %d, want 404", w.Code)
	}
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t, nil)
	admin, _ := seedAdminAndUser(t, env)
	if err := env.store.Create(&domain.User{
		ID: utils.NewID(), Email: "g@x.com", Username: "G",
		Provider: domain.ProviderGoogle, ExternalID: "sub-1", Role: domain.RoleUser,
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/admin/stats", "", env.cookieFor(t, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	stats, _ := decodeBody(t, w)["stats"].(map[string]any)
	want := map[string]float64{
		"totalUsers": 3, "adminUsers": 1, "regularUsers": 2, "googleUsers": 1, "localUsers": 2,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%s] = %v, want %v", k, stats[k], v)
		}
	}
}
