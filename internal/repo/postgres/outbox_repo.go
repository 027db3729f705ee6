package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

// OutboxRepo holds dashboard-to-game broadcast messages, the informational
// mirror of the command queue.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

func (r *OutboxRepo) Append(ctx context.Context, msg model.OutboundMessage) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if msg.ServerID == "" || msg.Message == "" {
		return fmt.Errorf("invalid outbound message payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO server_outbox (server_id, message, author, fetched, time)
VALUES ($1, $2, $3, FALSE, NOW())
`, msg.ServerID, msg.Message, msg.Author); err != nil {
		return fmt.Errorf("append outbound message: %w", err)
	}

	return nil
}

// Drain atomically returns and consumes all unfetched messages for a server.
// Broadcasts are informational, so delivery here is at-most-once.
func (r *OutboxRepo) Drain(ctx context.Context, serverID string) ([]model.OutboundMessage, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return nil, fmt.Errorf("server id is required")
	}

	rows, err := r.pool.Query(ctx, `
UPDATE server_outbox
SET fetched = TRUE
WHERE server_id = $1 AND fetched = FALSE
RETURNING id, server_id, message, author, time
`, serverID)
	if err != nil {
		return nil, fmt.Errorf("drain outbox: %w", err)
	}
	defer rows.Close()

	var messages []model.OutboundMessage
	for rows.Next() {
		var msg model.OutboundMessage
		if err := rows.Scan(&msg.ID, &msg.ServerID, &msg.Message, &msg.Author, &msg.Time); err != nil {
			return nil, fmt.Errorf("scan outbound message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbound messages: %w", err)
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	return messages, nil
}
