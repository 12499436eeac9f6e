package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storefront/backend/internal/model"
)

type pgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository returns a PostgreSQL-backed MessageRepository.
func NewPgMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &pgMessageRepository{pool: pool}
}

// Create inserts the message. A caller-supplied ID is kept so the realtime
// copy and the stored row share it.
func (r *pgMessageRepository) Create(ctx context.Context, m *model.Message) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, project_id, sender_id, sender_role, body, attachment_url)
		 VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, '')::uuid, $4, $5, NULLIF($6, ''))
		 RETURNING id, created_at`,
		m.ID, m.ProjectID, m.SenderID, string(m.SenderRole), m.Body, m.AttachmentURL,
	).Scan(&m.ID, &m.CreatedAt)
	return mapErr(err)
}

func (r *pgMessageRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]*model.Message, error) {
	// newest N, returned oldest first
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, COALESCE(sender_id::text, ''), sender_role, body, COALESCE(attachment_url, ''), created_at
		 FROM (
		   SELECT * FROM messages WHERE project_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
		 ) recent
		 ORDER BY created_at, id`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.SenderID, &m.SenderRole, &m.Body, &m.AttachmentURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
