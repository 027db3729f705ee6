package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// Append inserts a chat entry and trims the window to the most recent `window`
// entries in the same transaction, so a concurrent reader never observes the
// log above its bound.
func (r *ChatRepo) Append(ctx context.Context, entry model.ChatEntry, window int) error {
	if entry.ServerID == "" {
		return fmt.Errorf("server id is required")
	}
	if window <= 0 {
		window = 100
	}

	ts := entry.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO server_chat (server_id, player_id, username, message, type, time)
VALUES ($1, $2, $3, $4, $5, $6)
`, entry.ServerID, entry.PlayerID, entry.Username, entry.Message, string(entry.Type), ts); err != nil {
			return fmt.Errorf("append chat entry: %w", err)
		}

		if _, err := tx.Exec(ctx, `
DELETE FROM server_chat
WHERE server_id = $1
  AND id NOT IN (
	SELECT id FROM server_chat
	WHERE server_id = $1
	ORDER BY id DESC
	LIMIT $2
  )
`, entry.ServerID, window); err != nil {
			return fmt.Errorf("trim chat window: %w", err)
		}

		return nil
	})
}

func (r *ChatRepo) List(ctx context.Context, serverID string) ([]model.ChatEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return nil, fmt.Errorf("server id is required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, server_id, player_id, username, message, type, time
FROM server_chat
WHERE server_id = $1
ORDER BY id ASC
`, serverID)
	if err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	defer rows.Close()

	var entries []model.ChatEntry
	for rows.Next() {
		var entry model.ChatEntry
		if err := rows.Scan(&entry.ID, &entry.ServerID, &entry.PlayerID, &entry.Username, &entry.Message, &entry.Type, &entry.Time); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat entries: %w", err)
	}

	return entries, nil
}
