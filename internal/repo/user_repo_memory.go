package repo

import (
	"sort"
	"sync"
	"time"

	"deforest-api/internal/domain"

	"deforest-api/pkg/utils"
)

// MemoryUserStore is the process-local fallback used when the database is
// unreachable at startup. Everything here is lost on restart; main logs that
// loudly when it selects this store. All access goes through one RWMutex so
// concurrent request handlers cannot corrupt a record (e.g. a promote racing
// a delete).
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domain.User)}
}

func (r *MemoryUserStore) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserStore) FindByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserStore) FindByEmail(email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == email })
}

func (r *MemoryUserStore) FindByExternalID(externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, domain.ErrNotFound
	}
	return r.findBy(func(u domain.User) bool { return u.ExternalID == externalID })
}

func (r *MemoryUserStore) findBy(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserStore) Save(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserStore) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserStore) List(f domain.Filter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if matches(u, f) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUserStore) Count(f domain.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.users {
		if matches(u, f) {
			n++
		}
	}
	return n, nil
}

func matches(u domain.User, f domain.Filter) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Provider != "" && u.Provider != f.Provider {
		return false
	}
	return true
}

var _ domain.UserStore = (*MemoryUserStore)(nil)
