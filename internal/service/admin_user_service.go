package service

import (
	"context"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
)

// AdminUserService provides admin-only user management operations.
type AdminUserService interface {
	ListUsers(ctx context.Context, actor model.Actor, role model.Role, limit, offset int) ([]*model.User, error)
	SuspendUser(ctx context.Context, actor model.Actor, id string, suspend bool) error
}

type adminUserService struct {
	userRepo repository.UserRepository
}

// NewAdminUserService creates an AdminUserService.
func NewAdminUserService(userRepo repository.UserRepository) AdminUserService {
	return &adminUserService{userRepo: userRepo}
}

func (s *adminUserService) ListUsers(ctx context.Context, actor model.Actor, role model.Role, limit, offset int) ([]*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return nil, invalidf("unknown role %q", role)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.userRepo.ListByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// SuspendUser blocks or unblocks an account. Admins cannot suspend themselves.
func (s *adminUserService) SuspendUser(ctx context.Context, actor model.Actor, id string, suspend bool) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	if suspend && id == actor.UserID {
		return invalidf("cannot suspend yourself")
	}
	return storeErr("suspend user", s.userRepo.Suspend(ctx, id, suspend))
}
