package service

import (
	"go.uber.org/zap"

	"deforest-api/internal/domain"
)

// AdminService owns the user-management operations behind the admin gate.
type AdminService struct {
	store domain.UserStore
	log   *zap.Logger
}

func NewAdminService(store domain.UserStore, log *zap.Logger) *AdminService {
	return &AdminService{store: store, log: log}
}

func (s *AdminService) ListUsers() ([]domain.PublicUser, error) {
	users, err := s.store.List(domain.Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// DeleteUser removes a user on behalf of actorID. Self-deletion and deleting
// another admin are refused; the store's native delete keeps the operation
// atomic against a concurrent promote.
func (s *AdminService) DeleteUser(actorID, targetID string) error {
	if targetID == actorID {
		return domain.ErrSelfDelete
	}
	target, err := s.store.FindByID(targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return domain.ErrAdminProtected
	}
	if err := s.store.Delete(targetID); err != nil {
		return err
	}
	s.log.Info("user deleted",
		zap.String("user_id", targetID),
		zap.String("deleted_by", actorID),
	)
	return nil
}

// PromoteUser raises a user to admin. The only role transition in the system;
// it is never triggered by the affected user's own request.
func (s *AdminService) PromoteUser(actorID, targetID string) (*domain.User, error) {
	target, err := s.store.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, domain.ErrAlreadyAdmin
	}
	target.Role = domain.RoleAdmin
	if err := s.store.Save(target); err != nil {
		return nil, err
	}
	s.log.Info("user promoted to admin",
		zap.String("user_id", targetID),
		zap.String("promoted_by", actorID),
	)
	return target, nil
}

type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	AdminUsers   int64 `json:"adminUsers"`
	RegularUsers int64 `json:"regularUsers"`
	GoogleUsers  int64 `json:"googleUsers"`
	LocalUsers   int64 `json:"localUsers"`
}

func (s *AdminService) Stats() (*Stats, error) {
	var out Stats
	var err error
	if out.TotalUsers, err = s.store.Count(domain.Filter{}); err != nil {
		return nil, err
	}
	if out.AdminUsers, err = s.store.Count(domain.Filter{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	if out.RegularUsers, err = s.store.Count(domain.Filter{Role: domain.RoleUser}); err != nil {
		return nil, err
	}
	if out.GoogleUsers, err = s.store.Count(domain.Filter{Provider: domain.ProviderGoogle}); err != nil {
		return nil, err
	}
	if out.LocalUsers, err = s.store.Count(domain.Filter{Provider: domain.ProviderLocal}); err != nil {
		return nil, err
	}
	return &out, nil
}
