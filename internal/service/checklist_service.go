package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/metrics"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/stage"
)

// ChecklistService edits the checklist embedded in a project. Edits never
// touch the frozen estimate.
type ChecklistService interface {
	UpdateItem(ctx context.Context, actor model.Actor, projectID, itemID string, patch model.ChecklistPatch, expectedVersion int64) (*model.Project, error)
	AddItem(ctx context.Context, actor model.Actor, projectID string, item model.ChecklistItem, expectedVersion int64) (*model.Project, error)
	DeleteItem(ctx context.Context, actor model.Actor, projectID, itemID string, expectedVersion int64) (*model.Project, error)
}

// VendorLookup checks vendor references on checklist items.
type VendorLookup interface {
	GetByID(ctx context.Context, id string) (*model.Vendor, error)
}

// ChecklistServiceImpl は ChecklistService の実装
type ChecklistServiceImpl struct {
	projects repository.ProjectRepository
	vendors  VendorLookup
}

// NewChecklistService は ChecklistServiceImpl を生成する
func NewChecklistService(projects repository.ProjectRepository, vendors VendorLookup) ChecklistService {
	return &ChecklistServiceImpl{projects: projects, vendors: vendors}
}

// UpdateItem applies patch to one item. The assigned PM may change every
// field; the customer may change status and comment until completion.
func (s *ChecklistServiceImpl) UpdateItem(ctx context.Context, actor model.Actor, projectID, itemID string, patch model.ChecklistPatch, expectedVersion int64) (*model.Project, error) {
	p, err := s.load(ctx, projectID, expectedVersion)
	if err != nil {
		return nil, err
	}
	managed := p.IsManagedBy(actor)
	if !managed {
		if actor.Role != model.RoleCustomer || actor.UserID != p.CustomerID {
			return nil, ErrForbidden
		}
		if patch.EstimatedCost != nil || patch.VendorID != nil || p.CurrentStep >= stage.Completion {
			return nil, ErrForbidden
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidf("unknown checklist status %q", *patch.Status)
	}
	if patch.EstimatedCost != nil && *patch.EstimatedCost < 0 {
		return nil, invalidf("estimated_cost must not be negative")
	}
	if patch.VendorID != nil && *patch.VendorID != "" {
		if err := s.checkVendor(ctx, *patch.VendorID); err != nil {
			return nil, err
		}
	}

	i := indexOf(p.Checklist, itemID)
	if i < 0 {
		return nil, ErrNotFound
	}
	item := &p.Checklist[i]
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Comment != nil {
		item.Comment = *patch.Comment
	}
	if patch.EstimatedCost != nil {
		item.EstimatedCost = patch.EstimatedCost
	}
	if patch.VendorID != nil {
		item.VendorID = *patch.VendorID
	}
	return s.save(ctx, p, "checklist_update")
}

// AddItem appends a custom item. PM only.
func (s *ChecklistServiceImpl) AddItem(ctx context.Context, actor model.Actor, projectID string, item model.ChecklistItem, expectedVersion int64) (*model.Project, error) {
	p, err := s.load(ctx, projectID, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !p.IsManagedBy(actor) {
		return nil, ErrForbidden
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, invalidf("title is required")
	}
	if item.Status == "" {
		item.Status = model.ChecklistUnchecked
	}
	if !item.Status.Valid() {
		return nil, invalidf("unknown checklist status %q", item.Status)
	}
	if item.EstimatedCost != nil && *item.EstimatedCost < 0 {
		return nil, invalidf("estimated_cost must not be negative")
	}
	if item.VendorID != "" {
		if err := s.checkVendor(ctx, item.VendorID); err != nil {
			return nil, err
		}
	}
	item.ID = uuid.NewString()
	item.Custom = true
	p.Checklist = append(p.Checklist, item)
	return s.save(ctx, p, "checklist_add")
}

// DeleteItem removes a custom item. Catalog milestones cannot be deleted.
func (s *ChecklistServiceImpl) DeleteItem(ctx context.Context, actor model.Actor, projectID, itemID string, expectedVersion int64) (*model.Project, error) {
	p, err := s.load(ctx, projectID, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !p.IsManagedBy(actor) {
		return nil, ErrForbidden
	}
	i := indexOf(p.Checklist, itemID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if !p.Checklist[i].Custom {
		return nil, ErrForbidden
	}
	p.Checklist = slices.Delete(p.Checklist, i, i+1)
	return s.save(ctx, p, "checklist_delete")
}

// load fetches the project and rejects stale or cancelled ones. With no
// expected version the write is still compare-and-set against the loaded row.
func (s *ChecklistServiceImpl) load(ctx context.Context, projectID string, expectedVersion int64) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if expectedVersion != 0 && expectedVersion != p.Version {
		metrics.VersionConflicts.WithLabelValues("checklist").Inc()
		return nil, ErrConflict
	}
	if p.Status == model.StatusCancelled {
		return nil, stage.ErrProjectCancelled
	}
	return p, nil
}

func (s *ChecklistServiceImpl) save(ctx context.Context, p *model.Project, op string) (*model.Project, error) {
	if err := s.projects.Update(ctx, p, p.Version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.VersionConflicts.WithLabelValues("checklist").Inc()
		}
		return nil, storeErr(op, err)
	}
	return p, nil
}

func (s *ChecklistServiceImpl) checkVendor(ctx context.Context, id string) error {
	if s.vendors == nil {
		return invalidf("vendor %q not found", id)
	}
	v, err := s.vendors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalidf("vendor %q not found", id)
	}
	if err != nil {
		return retryable("get vendor", err)
	}
	if !v.Active {
		return invalidf("vendor %q is inactive", id)
	}
	return nil
}

func indexOf(items []model.ChecklistItem, id string) int {
	return slices.IndexFunc(items, func(it model.ChecklistItem) bool { return it.ID == id })
}
