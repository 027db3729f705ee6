package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

type RosterRepo struct {
	pool *pgxpool.Pool
}

func NewRosterRepo(pool *pgxpool.Pool) *RosterRepo {
	return &RosterRepo{pool: pool}
}

// Replace swaps the full roster in one transaction. The caller sends the
// complete live roster every time; there is no diffing.
func (r *RosterRepo) Replace(ctx context.Context, serverID string, players []model.Player) error {
	if serverID == "" {
		return fmt.Errorf("server id is required")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM server_players
WHERE server_id = $1
`, serverID); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}

		for i, player := range players {
			if _, err := tx.Exec(ctx, `
INSERT INTO server_players (server_id, player_id, username, team, has_left, position)
VALUES ($1, $2, $3, $4, $5, $6)
`, serverID, player.PlayerID, player.Username, player.Team, player.Left, i); err != nil {
				return fmt.Errorf("insert roster entry: %w", err)
			}
		}

		return nil
	})
}

func (r *RosterRepo) List(ctx context.Context, serverID string) ([]model.Player, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return nil, fmt.Errorf("server id is required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT player_id, username, team, has_left
FROM server_players
WHERE server_id = $1
ORDER BY position ASC
`, serverID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var player model.Player
		if err := rows.Scan(&player.PlayerID, &player.Username, &player.Team, &player.Left); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}

	return players, nil
}
