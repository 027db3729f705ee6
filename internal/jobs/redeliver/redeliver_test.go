package redeliver

import (
	"context"
	"errors"
	"testing"
)

type recordingRequeuer struct {
	calls    int
	requeued int64
	err      error
}

func (r *recordingRequeuer) RequeueExpired(context.Context) (int64, error) {
	r.calls++
	return r.requeued, r.err
}

func TestRunRequeuesExpiredDeliveries(t *testing.T) {
	requeuer := &recordingRequeuer{requeued: 3}
	job := New(requeuer, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if requeuer.calls != 1 {
		t.Fatalf("unexpected call count: got %d want 1", requeuer.calls)
	}
}

func TestRunPropagatesStoreError(t *testing.T) {
	requeuer := &recordingRequeuer{err: errors.New("connection reset")}
	job := New(requeuer, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRunWithoutDispatcherIsNoop(t *testing.T) {
	job := New(nil, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}
