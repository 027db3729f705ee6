package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/redis"
)

func newRedisLimiter(t *testing.T, perMinute int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store := redrepo.NewRateRepo(redrepo.NewClient(mr.Addr(), "", 0))

	return NewLimiter(store, perMinute), mr
}

func TestAllowChatWithinLimit(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 3)

	for i := 0; i < 3; i++ {
		_, allowed, err := limiter.AllowChat(context.Background(), "srv-1", "42")
		if err != nil {
			t.Fatalf("allow chat %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("message %d must be allowed", i)
		}
	}

	retry, allowed, err := limiter.AllowChat(context.Background(), "srv-1", "42")
	if err != nil {
		t.Fatalf("allow chat over limit: %v", err)
	}
	if allowed {
		t.Fatalf("fourth message within the window must be rejected")
	}
	if retry <= 0 || retry > 60 {
		t.Fatalf("unexpected retry seconds: %d", retry)
	}
}

func TestAllowChatWindowResets(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 1)

	if _, allowed, err := limiter.AllowChat(context.Background(), "srv-1", "42"); err != nil || !allowed {
		t.Fatalf("first message: allowed=%v err=%v", allowed, err)
	}
	if _, allowed, _ := limiter.AllowChat(context.Background(), "srv-1", "42"); allowed {
		t.Fatalf("second message within the window must be rejected")
	}

	mr.FastForward(2 * time.Minute)

	if _, allowed, err := limiter.AllowChat(context.Background(), "srv-1", "42"); err != nil || !allowed {
		t.Fatalf("message after window reset: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowChatIsolatesPlayers(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 1)

	if _, allowed, _ := limiter.AllowChat(context.Background(), "srv-1", "42"); !allowed {
		t.Fatalf("first player must be allowed")
	}
	if _, allowed, _ := limiter.AllowChat(context.Background(), "srv-1", "57"); !allowed {
		t.Fatalf("second player must have their own window")
	}
	if _, allowed, _ := limiter.AllowChat(context.Background(), "srv-2", "42"); !allowed {
		t.Fatalf("same player on another server must have their own window")
	}
}

func TestZeroLimitDisablesThrottling(t *testing.T) {
	limiter := NewLimiter(nil, 0)

	for i := 0; i < 10; i++ {
		_, allowed, err := limiter.AllowChat(context.Background(), "srv-1", "42")
		if err != nil || !allowed {
			t.Fatalf("message %d: allowed=%v err=%v", i, allowed, err)
		}
	}
}
