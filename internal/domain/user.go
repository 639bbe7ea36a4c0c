package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Username     string    `gorm:"size:64" json:"username"`
	PasswordHash string    `gorm:"size:191" json:"-"`
	Provider     string    `gorm:"size:16;not null;default:local" json:"provider"`
	ExternalID   string    `gorm:"index;size:64" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// PublicUser is the sanitized representation returned to clients.
// PasswordHash and ExternalID never leave the process through it.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Provider  string    `json:"provider"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Provider:  u.Provider,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Filter narrows List/Count by exact field match. Zero values match everything.
type Filter struct {
	Role     string
	Provider string
}

// UserStore is the credential store contract. Two implementations exist:
// a gorm-backed durable store and a process-local in-memory fallback used
// when the database is unreachable at startup. The choice is made once at
// startup and never changes mid-session.
type UserStore interface {
	// Create persists a new user. Returns ErrDuplicateEmail if the email
	// is already taken; the existing record is left untouched.
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByExternalID(externalID string) (*User, error)
	// Save updates an existing record. Returns ErrNotFound for unknown ids.
	Save(u *User) error
	// Delete removes a record permanently. Returns ErrNotFound for unknown ids.
	Delete(id string) error
	List(f Filter) ([]User, error)
	Count(f Filter) (int64, error)
}
