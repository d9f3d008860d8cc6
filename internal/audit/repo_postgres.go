package audit

import (
	"context"
	"database/sql"

	"campaign-platform/pkg/utils"
)

// PostgresRepo persists audit events to the audit_events table.
//
// Assumed schema:
// - audit_events (id, workspace_id, type, actor_user_id, actor_role,
//   campaign_id, from_status, to_status, number_index, message, created_at)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events
  (id, workspace_id, type, actor_user_id, actor_role, campaign_id, from_status, to_status, number_index, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			e.ID,
			e.WorkspaceID,
			e.Type,
			e.ActorUserID,
			e.ActorRole,
			e.CampaignID,
			e.FromStatus,
			e.ToStatus,
			e.NumberIndex,
			e.Message,
			e.CreatedAt,
		)
		return err
	})
}
