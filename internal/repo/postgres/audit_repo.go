package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Append(ctx context.Context, entry model.AuditEntry) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if entry.ServerID == "" || entry.Action == "" {
		return fmt.Errorf("invalid audit payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO server_audit (server_id, action, actor, details, time)
VALUES ($1, $2, $3, $4, NOW())
`, entry.ServerID, entry.Action, entry.Actor, entry.Details); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

func (r *AuditRepo) ListByServer(ctx context.Context, serverID string, limit int) ([]model.AuditEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return nil, fmt.Errorf("server id is required")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, server_id, action, actor, details, time
FROM server_audit
WHERE server_id = $1
ORDER BY id DESC
LIMIT $2
`, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.ServerID, &entry.Action, &entry.Actor, &entry.Details, &entry.Time); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
