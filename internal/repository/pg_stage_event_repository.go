package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

type pgStageEventRepository struct {
	pool *pgxpool.Pool
}

// NewPgStageEventRepository returns a PostgreSQL-backed StageEventRepository.
func NewPgStageEventRepository(pool *pgxpool.Pool) StageEventRepository {
	return &pgStageEventRepository{pool: pool}
}

func (r *pgStageEventRepository) Insert(ctx context.Context, e *model.StageEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO project_stage_events (project_id, from_step, to_step, kind, actor_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		 RETURNING id, created_at`,
		e.ProjectID, e.FromStep, e.ToStep, e.Kind, e.ActorID,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *pgStageEventRepository) ListByProject(ctx context.Context, projectID string) ([]*model.StageEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, from_step, to_step, kind, COALESCE(actor_id::text, ''), created_at
		 FROM project_stage_events WHERE project_id = $1 ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.StageEvent
	for rows.Next() {
		var e model.StageEvent
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.FromStep, &e.ToStep, &e.Kind, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
