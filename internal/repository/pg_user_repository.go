package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

// PgUserRepository は UserRepository の PostgreSQL 実装
type PgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository は PgUserRepository を生成する
func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Ping は DB 接続を確認する（DB インターフェース実装）
func (r *PgUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(scan func(...any) error) (*model.User, error) {
	var u model.User
	if err := scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.SuspendedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

const userSelectCols = `id, email, name, COALESCE(phone, ''), role, suspended_at, created_at, updated_at`

// FindByID は ID でユーザーを取得する
func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userSelectCols+` FROM users WHERE id = $1`, id)
	return scanUser(row.Scan)
}

// FindByEmail はメールアドレスでユーザーを取得する
func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userSelectCols+` FROM users WHERE email = $1`, email)
	return scanUser(row.Scan)
}

// Create はユーザーを作成する
func (r *PgUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, phone, role)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.Name, user.Phone, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapErr(err)
}

// ListByRole はロール別のユーザー一覧を返す
func (r *PgUserRepository) ListByRole(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userSelectCols+` FROM users WHERE role = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		role, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Suspend はユーザーの停止状態を切り替える
func (r *PgUserRepository) Suspend(ctx context.Context, id string, suspend bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET suspended_at = CASE WHEN $2 THEN NOW() ELSE NULL END, updated_at = NOW()
		 WHERE id = $1`,
		id, suspend,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
