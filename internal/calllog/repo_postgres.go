package calllog

import (
	"context"
	"database/sql"
)

// PostgresRepo reads call history from the call_logs table.
//
// Assumed schema:
// - call_logs (id, workspace_id, agent_id, agent_name, phone_number,
//   status, duration, timestamp, summary)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]CallLog, error) {
	if workspaceID == "" {
		return nil, ErrInvalidRequest
	}
	const q = `
SELECT id, workspace_id, agent_id, agent_name, phone_number, status, duration, timestamp, summary
FROM call_logs
WHERE workspace_id = $1
ORDER BY timestamp DESC
`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallLog, 0)
	for rows.Next() {
		var l CallLog
		if err := rows.Scan(
			&l.ID,
			&l.WorkspaceID,
			&l.AgentID,
			&l.AgentName,
			&l.PhoneNumber,
			&l.Status,
			&l.DurationSeconds,
			&l.Timestamp,
			&l.Summary,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
