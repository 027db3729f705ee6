package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

var ErrServerNotFound = errors.New("server aggregate not found")

type ServerRepo struct {
	pool *pgxpool.Pool
}

func NewServerRepo(pool *pgxpool.Pool) *ServerRepo {
	return &ServerRepo{pool: pool}
}

// Upsert creates the aggregate on first contact and bumps updated_at on every
// subsequent ingestion event. The single statement keeps concurrent ingestion
// for the same server free of lost updates.
func (r *ServerRepo) Upsert(ctx context.Context, serverID string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return fmt.Errorf("server id is required")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO servers (server_id, flagged, created_at, updated_at)
VALUES ($1, FALSE, NOW(), NOW())
ON CONFLICT (server_id) DO UPDATE SET updated_at = NOW()
`, serverID); err != nil {
		return fmt.Errorf("upsert server aggregate: %w", err)
	}

	return nil
}

func (r *ServerRepo) Get(ctx context.Context, serverID string) (model.ServerMeta, error) {
	if r.pool == nil {
		return model.ServerMeta{}, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return model.ServerMeta{}, fmt.Errorf("server id is required")
	}

	var meta model.ServerMeta
	err := r.pool.QueryRow(ctx, `
SELECT server_id, flagged, created_at, updated_at
FROM servers
WHERE server_id = $1
`, serverID).Scan(&meta.ServerID, &meta.Flagged, &meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ServerMeta{}, ErrServerNotFound
		}
		return model.ServerMeta{}, fmt.Errorf("query server aggregate: %w", err)
	}

	return meta, nil
}

func (r *ServerRepo) List(ctx context.Context) ([]model.ServerMeta, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT server_id, flagged, created_at, updated_at
FROM servers
ORDER BY updated_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list server aggregates: %w", err)
	}
	defer rows.Close()

	var servers []model.ServerMeta
	for rows.Next() {
		var meta model.ServerMeta
		if err := rows.Scan(&meta.ServerID, &meta.Flagged, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan server aggregate: %w", err)
		}
		servers = append(servers, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate server aggregates: %w", err)
	}

	return servers, nil
}

func (r *ServerRepo) SetFlagged(ctx context.Context, serverID string, flagged bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return fmt.Errorf("server id is required")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE servers
SET flagged = $2, updated_at = NOW()
WHERE server_id = $1
`, serverID, flagged)
	if err != nil {
		return fmt.Errorf("set server flagged: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServerNotFound
	}

	return nil
}

// DeleteStale removes aggregates past their retention threshold; child rows go
// with them via ON DELETE CASCADE. Safe to race with ingestion: an upsert
// landing after the delete simply recreates the aggregate.
func (r *ServerRepo) DeleteStale(ctx context.Context, cutoff, flaggedCutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM servers
WHERE (NOT flagged AND updated_at < $1)
   OR (flagged AND updated_at < $2)
`, cutoff, flaggedCutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale server aggregates: %w", err)
	}

	return tag.RowsAffected(), nil
}
