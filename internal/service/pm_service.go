package service

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/validation"
)

// PMService is the admin roster of project managers.
type PMService interface {
	List(ctx context.Context, actor model.Actor) ([]*model.ProjectManager, error)
	Create(ctx context.Context, actor model.Actor, pm *model.ProjectManager) (*model.ProjectManager, error)
	Update(ctx context.Context, actor model.Actor, id string, patch model.ProjectManagerPatch) (*model.ProjectManager, error)
}

// PMServiceImpl は PMService の実装
type PMServiceImpl struct {
	pms   repository.ProjectManagerRepository
	users repository.UserRepository
}

// NewPMService は PMServiceImpl を生成する
func NewPMService(pms repository.ProjectManagerRepository, users repository.UserRepository) PMService {
	return &PMServiceImpl{pms: pms, users: users}
}

func (s *PMServiceImpl) List(ctx context.Context, actor model.Actor) ([]*model.ProjectManager, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	pms, err := s.pms.List(ctx)
	if err != nil {
		return nil, storeErr("list pms", err)
	}
	return pms, nil
}

// Create registers a PM. The PM shares its id with a user of role pm; the
// user is created when no account exists for the email yet.
func (s *PMServiceImpl) Create(ctx context.Context, actor model.Actor, pm *model.ProjectManager) (*model.ProjectManager, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	pm.Name = strings.TrimSpace(pm.Name)
	pm.Email = strings.ToLower(strings.TrimSpace(pm.Email))
	if err := validation.Struct(pm); err != nil {
		return nil, invalid(err)
	}

	u, err := s.users.FindByEmail(ctx, pm.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		u = &model.User{Email: pm.Email, Name: pm.Name, Phone: pm.Phone, Role: model.RolePM}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, storeErr("create pm user", err)
		}
	case err != nil:
		return nil, storeErr("find user", err)
	case u.Role != model.RolePM:
		return nil, invalidf("%s is registered as %s", pm.Email, u.Role)
	}

	pm.ID = u.ID
	if err := s.pms.Create(ctx, pm); err != nil {
		return nil, storeErr("create pm", err)
	}
	return pm, nil
}

func (s *PMServiceImpl) Update(ctx context.Context, actor model.Actor, id string, patch model.ProjectManagerPatch) (*model.ProjectManager, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, invalid(err)
	}
	pm, err := s.pms.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get pm", err)
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, invalidf("name must not be blank")
		}
		pm.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		pm.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Phone != nil {
		pm.Phone = *patch.Phone
	}
	if patch.Specialties != nil {
		pm.Specialties = patch.Specialties
	}
	if patch.Available != nil {
		pm.Available = *patch.Available
	}
	if err := s.pms.Update(ctx, pm); err != nil {
		return nil, storeErr("update pm", err)
	}
	return pm, nil
}
