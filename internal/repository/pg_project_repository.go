package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

// PgProjectRepository は ProjectRepository の PostgreSQL 実装
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository は PgProjectRepository を生成する
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

const projectCols = `id, customer_id, pm_id, business_category, location_district, COALESCE(location_dong, ''),
	store_size, store_floor, estimated_costs, estimated_total, current_step, pm_approved_step,
	status, checklist_data, version, cancelled_at, created_at, updated_at`

func scanProject(scan func(...any) error) (*model.Project, error) {
	var p model.Project
	if err := scan(&p.ID, &p.CustomerID, &p.PMID, &p.BusinessCategory, &p.LocationDistrict, &p.LocationDong,
		&p.StoreSize, &p.StoreFloor, &p.EstimatedCosts, &p.EstimatedTotal, &p.CurrentStep, &p.PMApprovedStep,
		&p.Status, &p.Checklist, &p.Version, &p.CancelledAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func collectProjects(rows scannable) ([]*model.Project, error) {
	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Create はプロジェクトを作成する。version は 1 から始まる
func (r *PgProjectRepository) Create(ctx context.Context, p *model.Project) error {
	if p.Checklist == nil {
		p.Checklist = []model.ChecklistItem{}
	}
	if p.EstimatedCosts == nil {
		p.EstimatedCosts = []model.CostEstimateGroup{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects
		   (customer_id, pm_id, business_category, location_district, location_dong, store_size, store_floor,
		    estimated_costs, estimated_total, current_step, pm_approved_step, status, checklist_data, version)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, 1)
		 RETURNING id, version, created_at, updated_at`,
		p.CustomerID, p.PMID, p.BusinessCategory, p.LocationDistrict, p.LocationDong, p.StoreSize, string(p.StoreFloor),
		p.EstimatedCosts, p.EstimatedTotal, p.CurrentStep, p.PMApprovedStep, string(p.Status), p.Checklist,
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

// GetByID は ID でプロジェクトを取得する
func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectCols+` FROM projects WHERE id = $1`, id)
	return scanProject(row.Scan)
}

// ListByCustomer は顧客のプロジェクト一覧を新しい順に返す
func (r *PgProjectRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectCols+` FROM projects WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// List は管理画面・PM ポータル向けの一覧を返す
func (r *PgProjectRepository) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectCols+` FROM projects
		 WHERE ($1 = '' OR status = $1)
		   AND ($2 = '' OR pm_id::text = $2)
		 ORDER BY updated_at DESC LIMIT $3 OFFSET $4`,
		string(filter.Status), filter.PMID, limit, filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Update はステージ・ステータス・チェックリストを楽観ロックで更新する。
// 成功時は p.Version と p.UpdatedAt を更新する
func (r *PgProjectRepository) Update(ctx context.Context, p *model.Project, expectedVersion int64) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE projects
		 SET current_step=$1, pm_approved_step=$2, status=$3, checklist_data=$4, cancelled_at=$5,
		     version = version + 1, updated_at = NOW()
		 WHERE id=$6 AND version=$7
		 RETURNING version, updated_at`,
		p.CurrentStep, p.PMApprovedStep, string(p.Status), p.Checklist, p.CancelledAt, p.ID, expectedVersion,
	).Scan(&p.Version, &p.UpdatedAt)
	if err == nil {
		return nil
	}
	if err = mapErr(err); err != ErrNotFound {
		return err
	}
	// 行が存在するならバージョン不一致
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id=$1)`, p.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return ErrNotFound
}
