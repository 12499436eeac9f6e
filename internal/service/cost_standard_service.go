package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/storefront/backend/internal/importer"
	"github.com/storefront/backend/internal/metrics"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/validation"
)

// CacheInvalidator drops cached estimate reference data.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CostStandardService is the admin maintenance of reference prices.
type CostStandardService interface {
	List(ctx context.Context, actor model.Actor, filter model.CostStandardFilter) ([]*model.CostStandard, error)
	Create(ctx context.Context, actor model.Actor, cs *model.CostStandard) (*model.CostStandard, error)
	Update(ctx context.Context, actor model.Actor, id string, cs *model.CostStandard) (*model.CostStandard, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	// Import replaces every row with the workbook's contents.
	Import(ctx context.Context, actor model.Actor, r io.Reader) (int, error)
	Export(ctx context.Context, actor model.Actor, w io.Writer) error
}

// CostStandardServiceImpl は CostStandardService の実装
type CostStandardServiceImpl struct {
	repo  repository.CostStandardRepository
	cache CacheInvalidator
}

// NewCostStandardService は CostStandardServiceImpl を生成する。cache は nil 可
func NewCostStandardService(repo repository.CostStandardRepository, cache CacheInvalidator) CostStandardService {
	return &CostStandardServiceImpl{repo: repo, cache: cache}
}

func (s *CostStandardServiceImpl) List(ctx context.Context, actor model.Actor, filter model.CostStandardFilter) ([]*model.CostStandard, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list cost standards", err)
	}
	return rows, nil
}

func (s *CostStandardServiceImpl) Create(ctx context.Context, actor model.Actor, cs *model.CostStandard) (*model.CostStandard, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	normalizeCostStandard(cs)
	if err := validation.Struct(cs); err != nil {
		return nil, invalid(err)
	}
	if err := s.repo.Create(ctx, cs); err != nil {
		return nil, storeErr("create cost standard", err)
	}
	s.invalidate(ctx)
	return cs, nil
}

func (s *CostStandardServiceImpl) Update(ctx context.Context, actor model.Actor, id string, cs *model.CostStandard) (*model.CostStandard, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	cs.ID = id
	normalizeCostStandard(cs)
	if err := validation.Struct(cs); err != nil {
		return nil, invalid(err)
	}
	if err := s.repo.Update(ctx, cs); err != nil {
		return nil, storeErr("update cost standard", err)
	}
	s.invalidate(ctx)
	return cs, nil
}

func (s *CostStandardServiceImpl) Delete(ctx context.Context, actor model.Actor, id string) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("delete cost standard", err)
	}
	s.invalidate(ctx)
	return nil
}

// Import parses the workbook fully before writing, so a bad row leaves the
// table untouched.
func (s *CostStandardServiceImpl) Import(ctx context.Context, actor model.Actor, r io.Reader) (int, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return 0, err
	}
	rows, err := importer.ParseCostStandards(r)
	if err != nil {
		return 0, invalid(err)
	}
	if len(rows) == 0 {
		return 0, invalidf("workbook has no cost standard rows")
	}
	if err := s.repo.ReplaceAll(ctx, rows); err != nil {
		return 0, storeErr("import cost standards", err)
	}
	s.invalidate(ctx)
	slog.Info("cost standards imported", "rows", len(rows), "actor_id", actor.UserID)
	return len(rows), nil
}

func (s *CostStandardServiceImpl) Export(ctx context.Context, actor model.Actor, w io.Writer) error {
	rows, err := s.List(ctx, actor, model.CostStandardFilter{})
	if err != nil {
		return err
	}
	return importer.WriteCostStandards(w, rows)
}

// invalidate is best effort: entries also expire with the cache TTL.
func (s *CostStandardServiceImpl) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		metrics.SideEffectFailures.WithLabelValues("cache_invalidate").Inc()
		slog.Warn("cache: invalidate cost standards failed", "error", err)
	}
}

func normalizeCostStandard(cs *model.CostStandard) {
	cs.BusinessCategory = strings.TrimSpace(cs.BusinessCategory)
	cs.LocationDistrict = strings.TrimSpace(cs.LocationDistrict)
	cs.CostType = strings.TrimSpace(cs.CostType)
	cs.CostName = strings.TrimSpace(cs.CostName)
}
