package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

// PgVendorRepository は VendorRepository の PostgreSQL 実装
type PgVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPgVendorRepository は PgVendorRepository を生成する
func NewPgVendorRepository(pool *pgxpool.Pool) *PgVendorRepository {
	return &PgVendorRepository{pool: pool}
}

const vendorCols = `id, name, category, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(description, ''),
	active, created_at, updated_at`

func scanVendor(scan func(...any) error) (*model.Vendor, error) {
	var v model.Vendor
	if err := scan(&v.ID, &v.Name, &v.Category, &v.Phone, &v.Email, &v.Description,
		&v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// List は業者一覧を返す。category が空なら全件
func (r *PgVendorRepository) List(ctx context.Context, category string) ([]*model.Vendor, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+vendorCols+` FROM vendors WHERE ($1 = '' OR category = $1) ORDER BY name`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*model.Vendor
	for rows.Next() {
		v, err := scanVendor(rows.Scan)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// GetByID は ID で業者を取得する
func (r *PgVendorRepository) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vendorCols+` FROM vendors WHERE id = $1`, id)
	return scanVendor(row.Scan)
}

// Create は業者を作成する
func (r *PgVendorRepository) Create(ctx context.Context, v *model.Vendor) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vendors (name, category, phone, email, description, active)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		 RETURNING id, created_at, updated_at`,
		v.Name, v.Category, v.Phone, v.Email, v.Description, v.Active,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return mapErr(err)
}

// Update は業者を更新する
func (r *PgVendorRepository) Update(ctx context.Context, v *model.Vendor) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE vendors
		 SET name=$1, category=$2, phone=NULLIF($3, ''), email=NULLIF($4, ''), description=NULLIF($5, ''),
		     active=$6, updated_at=NOW()
		 WHERE id=$7
		 RETURNING updated_at`,
		v.Name, v.Category, v.Phone, v.Email, v.Description, v.Active, v.ID,
	).Scan(&v.UpdatedAt)
	return mapErr(err)
}
