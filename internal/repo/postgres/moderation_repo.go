package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

const (
	defaultModerationLogLimit = 50
	maxModerationLogLimit     = 200
)

// ModerationLogRepo is the append-only enforcement ledger. Rows are never
// updated or deleted; the retention sweeper does not touch this table.
type ModerationLogRepo struct {
	pool *pgxpool.Pool
}

func NewModerationLogRepo(pool *pgxpool.Pool) *ModerationLogRepo {
	return &ModerationLogRepo{pool: pool}
}

func (r *ModerationLogRepo) Insert(ctx context.Context, action model.ModerationAction) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if action.TargetID == "" || !action.Action.Valid() {
		return 0, fmt.Errorf("invalid moderation action payload")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO moderation_actions
    (action, target_id, target_name, moderator_id, moderator_name,
     server_id, scope, ban_type, expires_at, reason, status, raw_response, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
RETURNING id
`, action.Action, action.TargetID, action.TargetName, action.ModeratorID, action.ModeratorName,
		action.ServerID, action.Scope, action.BanType, action.ExpiresAt, action.Reason,
		action.Status, action.RawResponse).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert moderation action: %w", err)
	}

	return id, nil
}

// List returns ledger entries newest first. A non-empty serverID narrows the
// result to actions taken against that server.
func (r *ModerationLogRepo) List(ctx context.Context, serverID string, limit, offset int) ([]model.ModerationAction, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = defaultModerationLogLimit
	}
	if limit > maxModerationLogLimit {
		limit = maxModerationLogLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
SELECT id, action, target_id, target_name, moderator_id, moderator_name,
       server_id, scope, ban_type, expires_at, reason, status, raw_response, created_at
FROM moderation_actions
`
	args := []any{}
	if serverID != "" {
		query += "WHERE server_id = $1\n"
		args = append(args, serverID)
	}
	query += fmt.Sprintf("ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list moderation actions: %w", err)
	}
	defer rows.Close()

	var actions []model.ModerationAction
	for rows.Next() {
		var a model.ModerationAction
		if err := rows.Scan(&a.ID, &a.Action, &a.TargetID, &a.TargetName, &a.ModeratorID,
			&a.ModeratorName, &a.ServerID, &a.Scope, &a.BanType, &a.ExpiresAt,
			&a.Reason, &a.Status, &a.RawResponse, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation actions: %w", err)
	}

	return actions, nil
}
