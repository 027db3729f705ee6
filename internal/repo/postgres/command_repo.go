package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

type CommandRepo struct {
	pool *pgxpool.Pool
}

func NewCommandRepo(pool *pgxpool.Pool) *CommandRepo {
	return &CommandRepo{pool: pool}
}

func (r *CommandRepo) Enqueue(ctx context.Context, cmd model.Command) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if cmd.CommandID == "" || cmd.ServerID == "" {
		return fmt.Errorf("invalid command payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO server_commands (command_id, server_id, type, target_id, reason, issued_by, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW())
`, cmd.CommandID, cmd.ServerID, string(cmd.Type), cmd.TargetID, cmd.Reason, cmd.IssuedBy); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrServerNotFound
		}
		return fmt.Errorf("enqueue command: %w", err)
	}

	return nil
}

// AcquirePending flips every pending command for the server to delivered in a
// single statement and returns the batch. A concurrent poller racing this call
// gets a disjoint (empty) set: the status predicate is evaluated inside the
// same UPDATE that flips it.
func (r *CommandRepo) AcquirePending(ctx context.Context, serverID, deliveryToken string, deliveryExpires time.Time) ([]model.Command, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" || deliveryToken == "" {
		return nil, fmt.Errorf("invalid acquire payload")
	}

	rows, err := r.pool.Query(ctx, `
UPDATE server_commands
SET status = 'delivered', delivery_token = $2, delivery_expires = $3
WHERE server_id = $1 AND status = 'pending'
RETURNING command_id, server_id, type, target_id, reason, issued_by, status, delivery_token, delivery_expires, created_at, decided_at
`, serverID, deliveryToken, deliveryExpires)
	if err != nil {
		return nil, fmt.Errorf("acquire pending commands: %w", err)
	}
	defer rows.Close()

	commands, err := scanCommands(rows)
	if err != nil {
		return nil, err
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].CreatedAt.Before(commands[j].CreatedAt)
	})

	return commands, nil
}

// Ack transitions a delivered command to its terminal status and returns the
// settled row. The conditional update makes retries and stale tokens no-ops;
// the bool reports whether this call performed the transition.
func (r *CommandRepo) Ack(ctx context.Context, commandID, deliveryToken string, status enums.CommandStatus) (model.Command, bool, error) {
	if r.pool == nil {
		return model.Command{}, false, fmt.Errorf("postgres pool is nil")
	}
	if commandID == "" || deliveryToken == "" {
		return model.Command{}, false, fmt.Errorf("invalid ack payload")
	}
	if status != enums.CommandStatusExecuted && status != enums.CommandStatusFailed {
		return model.Command{}, false, fmt.Errorf("invalid terminal command status %q", status)
	}

	var cmd model.Command
	err := r.pool.QueryRow(ctx, `
UPDATE server_commands
SET status = $3, decided_at = NOW(), delivery_token = NULL, delivery_expires = NULL
WHERE command_id = $1 AND status = 'delivered' AND delivery_token = $2
RETURNING command_id, server_id, type, target_id, reason, issued_by, status, delivery_token, delivery_expires, created_at, decided_at
`, commandID, deliveryToken, string(status)).Scan(
		&cmd.CommandID,
		&cmd.ServerID,
		&cmd.Type,
		&cmd.TargetID,
		&cmd.Reason,
		&cmd.IssuedBy,
		&cmd.Status,
		&cmd.DeliveryToken,
		&cmd.DeliveryExpires,
		&cmd.CreatedAt,
		&cmd.DecidedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Command{}, false, nil
	}
	if err != nil {
		return model.Command{}, false, fmt.Errorf("ack command: %w", err)
	}

	return cmd, true, nil
}

// RequeueExpired returns delivered-but-unacknowledged commands past their
// delivery expiry to pending so the next poll redelivers them.
func (r *CommandRepo) RequeueExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE server_commands
SET status = 'pending', delivery_token = NULL, delivery_expires = NULL
WHERE status = 'delivered' AND delivery_expires < $1
`, now)
	if err != nil {
		return 0, fmt.Errorf("requeue expired deliveries: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *CommandRepo) ListByServer(ctx context.Context, serverID string) ([]model.Command, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if serverID == "" {
		return nil, fmt.Errorf("server id is required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT command_id, server_id, type, target_id, reason, issued_by, status, delivery_token, delivery_expires, created_at, decided_at
FROM server_commands
WHERE server_id = $1
ORDER BY created_at ASC
`, serverID)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	return scanCommands(rows)
}

type commandRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCommands(rows commandRows) ([]model.Command, error) {
	var commands []model.Command
	for rows.Next() {
		var cmd model.Command
		if err := rows.Scan(
			&cmd.CommandID,
			&cmd.ServerID,
			&cmd.Type,
			&cmd.TargetID,
			&cmd.Reason,
			&cmd.IssuedBy,
			&cmd.Status,
			&cmd.DeliveryToken,
			&cmd.DeliveryExpires,
			&cmd.CreatedAt,
			&cmd.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		commands = append(commands, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}

	return commands, nil
}
