package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type staleServerDeleter interface {
	DeleteStale(ctx context.Context, cutoff, flaggedCutoff time.Time) (int64, error)
}

// Job deletes servers that stopped reporting, taking their roster, chat,
// audit, command and outbox rows with them. Flagged servers get the longer
// window; the moderation ledger is never touched.
type Job struct {
	servers       staleServerDeleter
	maxAge        time.Duration
	flaggedMaxAge time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func New(servers staleServerDeleter, maxAge, flaggedMaxAge time.Duration, logger *zap.Logger) *Job {
	if maxAge <= 0 {
		maxAge = 14 * 24 * time.Hour
	}
	if flaggedMaxAge <= 0 {
		flaggedMaxAge = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		servers:       servers,
		maxAge:        maxAge,
		flaggedMaxAge: flaggedMaxAge,
		now:           time.Now,
		logger:        logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.servers == nil {
		return nil
	}

	now := j.now()
	deleted, err := j.servers.DeleteStale(ctx, now.Add(-j.maxAge), now.Add(-j.flaggedMaxAge))
	if err != nil {
		return fmt.Errorf("sweep stale servers: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("swept stale servers", zap.Int64("deleted", deleted))
	}

	return nil
}
