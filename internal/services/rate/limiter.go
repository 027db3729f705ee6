package rate

import (
	"context"
	"fmt"
	"time"
)

const chatWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles chat ingestion per player per server. A zero limit
// disables throttling entirely.
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
	}
}

// AllowChat reports whether another chat line from this player may be stored,
// and the seconds to wait when it may not.
func (l *Limiter) AllowChat(ctx context.Context, serverID, playerID string) (int64, bool, error) {
	if serverID == "" || playerID == "" {
		return 0, false, fmt.Errorf("server id and player id are required")
	}
	if l.perMinute == 0 {
		return 0, true, nil
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, chatKey(serverID, playerID), chatWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

func chatKey(serverID, playerID string) string {
	return "rate:chat:" + serverID + ":" + playerID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}

	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}

	return sec
}
