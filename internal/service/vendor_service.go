package service

import (
	"context"
	"strings"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/validation"
)

// VendorService manages partner vendors. PMs may read the directory to
// assign vendors to checklist items; only admins write.
type VendorService interface {
	List(ctx context.Context, actor model.Actor, category string) ([]*model.Vendor, error)
	Create(ctx context.Context, actor model.Actor, v *model.Vendor) (*model.Vendor, error)
	Update(ctx context.Context, actor model.Actor, id string, v *model.Vendor) (*model.Vendor, error)
}

// VendorServiceImpl は VendorService の実装
type VendorServiceImpl struct {
	repo repository.VendorRepository
}

// NewVendorService は VendorServiceImpl を生成する
func NewVendorService(repo repository.VendorRepository) VendorService {
	return &VendorServiceImpl{repo: repo}
}

func (s *VendorServiceImpl) List(ctx context.Context, actor model.Actor, category string) ([]*model.Vendor, error) {
	if err := requireRole(actor, model.RolePM, model.RoleAdmin); err != nil {
		return nil, err
	}
	vendors, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, storeErr("list vendors", err)
	}
	return vendors, nil
}

func (s *VendorServiceImpl) Create(ctx context.Context, actor model.Actor, v *model.Vendor) (*model.Vendor, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	normalizeVendor(v)
	if err := validation.Struct(v); err != nil {
		return nil, invalid(err)
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, storeErr("create vendor", err)
	}
	return v, nil
}

// Update replaces the vendor's editable fields.
func (s *VendorServiceImpl) Update(ctx context.Context, actor model.Actor, id string, v *model.Vendor) (*model.Vendor, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, storeErr("get vendor", err)
	}
	v.ID = id
	normalizeVendor(v)
	if err := validation.Struct(v); err != nil {
		return nil, invalid(err)
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, storeErr("update vendor", err)
	}
	return v, nil
}

func normalizeVendor(v *model.Vendor) {
	v.Name = strings.TrimSpace(v.Name)
	v.Category = strings.TrimSpace(v.Category)
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
}
