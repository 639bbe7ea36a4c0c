package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"deforest-api/internal/domain"
)

// GormUserStore is the durable credential store. Email uniqueness rides on
// the unique index; update/delete use the database's own atomic operations.
type GormUserStore struct{ db *gorm.DB }

func NewGormUserStore(db *gorm.DB) *GormUserStore { return &GormUserStore{db: db} }

func (r *GormUserStore) Create(u *domain.User) error {
	err := r.db.Create(u).Error
	if err != nil && isDupKey(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *GormUserStore) FindByID(id string) (*domain.User, error) {
	return r.findOne("id = ?", id)
}

func (r *GormUserStore) FindByEmail(email string) (*domain.User, error) {
	return r.findOne("email = ?", email)
}

func (r *GormUserStore) FindByExternalID(externalID string) (*domain.User, error) {
	return r.findOne("external_id = ?", externalID)
}

func (r *GormUserStore) findOne(query string, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserStore) Save(u *domain.User) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"email":         u.Email,
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"provider":      u.Provider,
		"external_id":   u.ExternalID,
		"role":          u.Role,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormUserStore) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormUserStore) List(f domain.Filter) ([]domain.User, error) {
	var users []domain.User
	err := r.scope(f).Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *GormUserStore) Count(f domain.Filter) (int64, error) {
	var total int64
	err := r.scope(f).Count(&total).Error
	return total, err
}

func (r *GormUserStore) scope(f domain.Filter) *gorm.DB {
	q := r.db.Model(&domain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Provider != "" {
		q = q.Where("provider = ?", f.Provider)
	}
	return q
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

var _ domain.UserStore = (*GormUserStore)(nil)
