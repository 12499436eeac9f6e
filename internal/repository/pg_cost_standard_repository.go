package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/model"
)

// PgCostStandardRepository は CostStandardRepository の PostgreSQL 実装
type PgCostStandardRepository struct {
	pool *pgxpool.Pool
}

// NewPgCostStandardRepository は PgCostStandardRepository を生成する
func NewPgCostStandardRepository(pool *pgxpool.Pool) *PgCostStandardRepository {
	return &PgCostStandardRepository{pool: pool}
}

// NUMERIC 列はテキスト経由で decimal と相互変換する
const costStandardCols = `id, business_category, location_district, cost_type, cost_name, unit,
	min_price::text, max_price::text, avg_price::text, created_at, updated_at`

func scanCostStandard(scan func(...any) error) (*model.CostStandard, error) {
	var s model.CostStandard
	var minP, maxP, avgP string
	if err := scan(&s.ID, &s.BusinessCategory, &s.LocationDistrict, &s.CostType, &s.CostName, &s.Unit,
		&minP, &maxP, &avgP, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	var err error
	if s.MinPrice, err = decimal.NewFromString(minP); err != nil {
		return nil, fmt.Errorf("cost standard %s: min_price: %w", s.ID, err)
	}
	if s.MaxPrice, err = decimal.NewFromString(maxP); err != nil {
		return nil, fmt.Errorf("cost standard %s: max_price: %w", s.ID, err)
	}
	if s.AvgPrice, err = decimal.NewFromString(avgP); err != nil {
		return nil, fmt.Errorf("cost standard %s: avg_price: %w", s.ID, err)
	}
	return &s, nil
}

func collectCostStandards(rows scannable) ([]*model.CostStandard, error) {
	var out []*model.CostStandard
	for rows.Next() {
		s, err := scanCostStandard(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// List は基準単価一覧を返す。空のフィルタ項目は全件一致とする
func (r *PgCostStandardRepository) List(ctx context.Context, filter model.CostStandardFilter) ([]*model.CostStandard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+costStandardCols+` FROM cost_standards
		 WHERE ($1 = '' OR business_category = $1)
		   AND ($2 = '' OR location_district = $2)
		 ORDER BY business_category, location_district, sort_order, created_at`,
		filter.BusinessCategory, filter.LocationDistrict,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCostStandards(rows)
}

// ListForEstimate は見積もり対象（業種一致または共通、地区完全一致）を登録順で返す
func (r *PgCostStandardRepository) ListForEstimate(ctx context.Context, category, district string) ([]model.CostStandard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+costStandardCols+` FROM cost_standards
		 WHERE business_category IN ($1, $2) AND location_district = $3
		 ORDER BY sort_order, created_at, id`,
		category, model.CommonCategory, district,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := collectCostStandards(rows)
	if err != nil {
		return nil, err
	}
	out := make([]model.CostStandard, len(list))
	for i, s := range list {
		out[i] = *s
	}
	return out, nil
}

// GetByID は ID で基準単価を取得する
func (r *PgCostStandardRepository) GetByID(ctx context.Context, id string) (*model.CostStandard, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+costStandardCols+` FROM cost_standards WHERE id = $1`, id)
	return scanCostStandard(row.Scan)
}

// Create は基準単価を作成する
func (r *PgCostStandardRepository) Create(ctx context.Context, s *model.CostStandard) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cost_standards
		   (business_category, location_district, cost_type, cost_name, unit, min_price, max_price, avg_price)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric)
		 RETURNING id, created_at, updated_at`,
		s.BusinessCategory, s.LocationDistrict, s.CostType, s.CostName, string(s.Unit),
		s.MinPrice.String(), s.MaxPrice.String(), s.AvgPrice.String(),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

// Update は基準単価を更新する
func (r *PgCostStandardRepository) Update(ctx context.Context, s *model.CostStandard) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE cost_standards
		 SET business_category=$1, location_district=$2, cost_type=$3, cost_name=$4, unit=$5,
		     min_price=$6::numeric, max_price=$7::numeric, avg_price=$8::numeric, updated_at=NOW()
		 WHERE id=$9
		 RETURNING updated_at`,
		s.BusinessCategory, s.LocationDistrict, s.CostType, s.CostName, string(s.Unit),
		s.MinPrice.String(), s.MaxPrice.String(), s.AvgPrice.String(), s.ID,
	).Scan(&s.UpdatedAt)
	return mapErr(err)
}

// Delete は基準単価を削除する
func (r *PgCostStandardRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cost_standards WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll は 1 トランザクションで全件を入れ替える。sort_order は入力順
func (r *PgCostStandardRepository) ReplaceAll(ctx context.Context, standards []model.CostStandard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cost_standards`); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, s := range standards {
		batch.Queue(
			`INSERT INTO cost_standards
			   (business_category, location_district, cost_type, cost_name, unit, min_price, max_price, avg_price, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9)`,
			s.BusinessCategory, s.LocationDistrict, s.CostType, s.CostName, string(s.Unit),
			s.MinPrice.String(), s.MaxPrice.String(), s.AvgPrice.String(), i,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
