package repo

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"deforest-api/internal/domain"
)

func newUser(email string) *domain.User {
	return &domain.User{
		Email:    email,
		Username: "someone",
		Provider: domain.ProviderLocal,
		Role:     domain.RoleUser,
	}
}

func TestMemoryCreateAssignsIDAndTimestamps(t *testing.T) {
	s := NewMemoryUserStore()
	u := newUser("a@x.com")
	if err := s.Create(u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestMemoryCreateDuplicateEmail(t *testing.T) {
	s := NewMemoryUserStore()
	if err := s.Create(newUser("a@x.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	err := s.Create(newUser("a@x.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("Create error = %v, want ErrDuplicateEmail", err)
	}
	n, _ := s.Count(domain.Filter{})
	if n != 1 {
		t.Fatalf("count = %d after duplicate create, want 1", n)
	}
}

func TestMemoryFindLookups(t *testing.T) {
	s := NewMemoryUserStore()
	u := newUser("a@x.com")
	u.ExternalID = "google-sub-1"
	if err := s.Create(u); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	byID, err := s.FindByID(u.ID)
	if err != nil || byID.Email != "a@x.com" {
		t.Fatalf("FindByID = (%v, %v)", byID, err)
	}
	byEmail, err := s.FindByEmail("a@x.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("FindByEmail = (%v, %v)", byEmail, err)
	}
	byExt, err := s.FindByExternalID("google-sub-1")
	if err != nil || byExt.ID != u.ID {
		t.Fatalf("FindByExternalID = (%v, %v)", byExt, err)
	}

	if _, err := s.FindByEmail("missing@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindByEmail missing = %v, want ErrNotFound", err)
	}
	if _, err := s.FindByExternalID(""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindByExternalID empty = %v, want ErrNotFound", err)
	}
}

func TestMemorySaveUpdatesRecord(t *testing.T) {
	s := NewMemoryUserStore()
	u := newUser("a@x.com")
	if err := s.Create(u); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	u.Role = domain.RoleAdmin
	u.ExternalID = "sub-9"
	u.Provider = domain.ProviderGoogle
	if err := s.Save(u); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := s.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.Provider != domain.ProviderGoogle || got.ExternalID != "sub-9" {
		t.Fatalf("saved record = %+v", got)
	}

	if err := s.Save(newUser("ghost@x.com")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Save unknown id error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemoryUserStore()
	u := newUser("a@x.com")
	if err := s.Create(u); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := s.Delete(u.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete error = %v, want ErrNotFound", err)
	}
	users, _ := s.List(domain.Filter{})
	if len(users) != 0 {
		t.Fatalf("List after delete = %d users, want 0", len(users))
	}
}

func TestMemoryListAndCountFiltered(t *testing.T) {
	s := NewMemoryUserStore()
	admin := newUser("admin@x.com")
	admin.Role = domain.RoleAdmin
	google := newUser("g@x.com")
	google.Provider = domain.ProviderGoogle
	for _, u := range []*domain.User{admin, google, newUser("c@x.com")} {
		if err := s.Create(u); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	if n, _ := s.Count(domain.Filter{}); n != 3 {
		t.Errorf("total = %d, want 3", n)
	}
	if n, _ := s.Count(domain.Filter{Role: domain.RoleAdmin}); n != 1 {
		t.Errorf("admins = %d, want 1", n)
	}
	if n, _ := s.Count(domain.Filter{Provider: domain.ProviderGoogle}); n != 1 {
		t.Errorf("google = %d, want 1", n)
	}
	if n, _ := s.Count(domain.Filter{Provider: domain.ProviderLocal}); n != 2 {
		t.Errorf("local = %d, want 2", n)
	}

	users, _ := s.List(domain.Filter{Role: domain.RoleUser})
	if len(users) != 2 {
		t.Errorf("List(role=user) = %d users, want 2", len(users))
	}
}

func TestMemoryConcurrentWrites(t *testing.T) {
	s := NewMemoryUserStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser(fmt.Sprintf("u%d@x.com", i))
			if err := s.Create(u); err != nil {
				t.Errorf("Create error: %v", err)
				return
			}
			u.Username = "renamed"
			_ = s.Save(u)
			_, _ = s.FindByEmail(u.Email)
		}(i)
	}
	wg.Wait()

	if n, _ := s.Count(domain.Filter{}); n != 50 {
		t.Fatalf("count = %d, want 50", n)
	}
}
