package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

// PgProjectManagerRepository は ProjectManagerRepository の PostgreSQL 実装
type PgProjectManagerRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectManagerRepository は PgProjectManagerRepository を生成する
func NewPgProjectManagerRepository(pool *pgxpool.Pool) *PgProjectManagerRepository {
	return &PgProjectManagerRepository{pool: pool}
}

const pmSelectQuery = `
	SELECT m.id, m.name, m.email, COALESCE(m.phone, ''), m.specialties, m.available, m.created_at, m.updated_at,
	       COUNT(p.id) FILTER (WHERE p.status IN ('PM_ASSIGNED', 'IN_PROGRESS'))
	FROM project_managers m
	LEFT JOIN projects p ON p.pm_id = m.id`

func scanProjectManager(scan func(...any) error) (*model.ProjectManager, error) {
	var pm model.ProjectManager
	if err := scan(&pm.ID, &pm.Name, &pm.Email, &pm.Phone, &pm.Specialties, &pm.Available,
		&pm.CreatedAt, &pm.UpdatedAt, &pm.ActiveProjects); err != nil {
		return nil, mapErr(err)
	}
	if pm.Specialties == nil {
		pm.Specialties = []string{}
	}
	return &pm, nil
}

// List は全 PM を返す
func (r *PgProjectManagerRepository) List(ctx context.Context) ([]*model.ProjectManager, error) {
	rows, err := r.pool.Query(ctx, pmSelectQuery+` GROUP BY m.id ORDER BY m.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pms []*model.ProjectManager
	for rows.Next() {
		pm, err := scanProjectManager(rows.Scan)
		if err != nil {
			return nil, err
		}
		pms = append(pms, pm)
	}
	return pms, rows.Err()
}

// ListAvailable は受付可能な PM を担当中案件数付きで返す
func (r *PgProjectManagerRepository) ListAvailable(ctx context.Context) ([]model.ProjectManager, error) {
	rows, err := r.pool.Query(ctx, pmSelectQuery+` WHERE m.available GROUP BY m.id ORDER BY m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pms []model.ProjectManager
	for rows.Next() {
		pm, err := scanProjectManager(rows.Scan)
		if err != nil {
			return nil, err
		}
		pms = append(pms, *pm)
	}
	return pms, rows.Err()
}

// GetByID は ID で PM を取得する
func (r *PgProjectManagerRepository) GetByID(ctx context.Context, id string) (*model.ProjectManager, error) {
	row := r.pool.QueryRow(ctx, pmSelectQuery+` WHERE m.id = $1 GROUP BY m.id`, id)
	return scanProjectManager(row.Scan)
}

// Create は PM を作成する。ID は users.id を使う
func (r *PgProjectManagerRepository) Create(ctx context.Context, pm *model.ProjectManager) error {
	if pm.Specialties == nil {
		pm.Specialties = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO project_managers (id, name, email, phone, specialties, available)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		 RETURNING created_at, updated_at`,
		pm.ID, pm.Name, pm.Email, pm.Phone, pm.Specialties, pm.Available,
	).Scan(&pm.CreatedAt, &pm.UpdatedAt)
	return mapErr(err)
}

// Update は PM の属性を更新する
func (r *PgProjectManagerRepository) Update(ctx context.Context, pm *model.ProjectManager) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE project_managers
		 SET name=$1, email=$2, phone=NULLIF($3, ''), specialties=$4, available=$5, updated_at=NOW()
		 WHERE id=$6
		 RETURNING updated_at`,
		pm.Name, pm.Email, pm.Phone, pm.Specialties, pm.Available, pm.ID,
	).Scan(&pm.UpdatedAt)
	return mapErr(err)
}
