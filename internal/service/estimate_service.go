package service

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/metrics"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/validation"
)

// CostStandardSource loads the reference rows for an estimate. Satisfied by
// the Postgres repository and by the Redis read-through cache.
type CostStandardSource interface {
	ListForEstimate(ctx context.Context, category, district string) ([]model.CostStandard, error)
}

// EstimateService computes cost estimates from current reference data.
type EstimateService interface {
	Estimate(ctx context.Context, req estimate.Request) (*model.CostEstimate, error)
}

// EstimateServiceImpl は EstimateService の実装
type EstimateServiceImpl struct {
	source CostStandardSource
}

// NewEstimateService は EstimateServiceImpl を生成する
func NewEstimateService(source CostStandardSource) EstimateService {
	return &EstimateServiceImpl{source: source}
}

// Estimate validates the request, loads matching standards and computes the
// grouped estimate. No matching standards yields estimate.ErrUnavailable.
func (s *EstimateServiceImpl) Estimate(ctx context.Context, req estimate.Request) (*model.CostEstimate, error) {
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err)
	}
	start := time.Now()
	defer func() { metrics.EstimateDuration.Observe(time.Since(start).Seconds()) }()

	rows, err := s.source.ListForEstimate(ctx, req.BusinessCategory, req.LocationDistrict)
	if err != nil {
		metrics.Estimates.WithLabelValues("error").Inc()
		return nil, retryable("load cost standards", err)
	}
	est, err := estimate.Estimate(rows, req)
	if errors.Is(err, estimate.ErrUnavailable) {
		metrics.Estimates.WithLabelValues("unavailable").Inc()
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	metrics.Estimates.WithLabelValues("ok").Inc()
	return &est, nil
}
