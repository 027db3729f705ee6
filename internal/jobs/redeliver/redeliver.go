package redeliver

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type expiredRequeuer interface {
	RequeueExpired(ctx context.Context) (int64, error)
}

// Job returns commands whose delivery lease lapsed without an acknowledgement
// to the pending pool, so the next poll picks them up again.
type Job struct {
	dispatch expiredRequeuer
	logger   *zap.Logger
}

func New(dispatch expiredRequeuer, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		dispatch: dispatch,
		logger:   logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.dispatch == nil {
		return nil
	}

	requeued, err := j.dispatch.RequeueExpired(ctx)
	if err != nil {
		return fmt.Errorf("requeue expired deliveries: %w", err)
	}
	if requeued > 0 {
		j.logger.Info("requeued expired command deliveries", zap.Int64("requeued", requeued))
	}

	return nil
}
