package repository

import (
	"context"

	"github.com/storefront/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository はユーザー永続化のインターフェース
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	ListByRole(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, error)
	Suspend(ctx context.Context, id string, suspend bool) error
}

// CostStandardRepository は基準単価の永続化インターフェース
type CostStandardRepository interface {
	List(ctx context.Context, filter model.CostStandardFilter) ([]*model.CostStandard, error)
	ListForEstimate(ctx context.Context, category, district string) ([]model.CostStandard, error)
	GetByID(ctx context.Context, id string) (*model.CostStandard, error)
	Create(ctx context.Context, s *model.CostStandard) error
	Update(ctx context.Context, s *model.CostStandard) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll は全件を入れ替える（スプレッドシート取り込み用）
	ReplaceAll(ctx context.Context, standards []model.CostStandard) error
}

// ProjectRepository はプロジェクト永続化のインターフェース
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Project, error)
	List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	// Update は expectedVersion が一致する場合のみ更新し、p.Version を進める。
	// 一致しない場合は ErrConflict を返す。
	Update(ctx context.Context, p *model.Project, expectedVersion int64) error
}

// ProjectManagerRepository は PM の永続化インターフェース
type ProjectManagerRepository interface {
	List(ctx context.Context) ([]*model.ProjectManager, error)
	// ListAvailable は受付可能な PM を担当中案件数付きで返す
	ListAvailable(ctx context.Context) ([]model.ProjectManager, error)
	GetByID(ctx context.Context, id string) (*model.ProjectManager, error)
	Create(ctx context.Context, pm *model.ProjectManager) error
	Update(ctx context.Context, pm *model.ProjectManager) error
}

// VendorRepository は提携業者の永続化インターフェース
type VendorRepository interface {
	List(ctx context.Context, category string) ([]*model.Vendor, error)
	GetByID(ctx context.Context, id string) (*model.Vendor, error)
	Create(ctx context.Context, v *model.Vendor) error
	Update(ctx context.Context, v *model.Vendor) error
}

// MessageRepository はチャットメッセージの永続化インターフェース（追記のみ）
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	// ListByProject は古い順に最大 limit 件を返す
	ListByProject(ctx context.Context, projectID string, limit int) ([]*model.Message, error)
}

// StageEventRepository はステージ遷移履歴の永続化インターフェース
type StageEventRepository interface {
	Insert(ctx context.Context, e *model.StageEvent) error
	ListByProject(ctx context.Context, projectID string) ([]*model.StageEvent, error)
}
