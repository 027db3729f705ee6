package profiles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/infra/roblox"
	redrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/redis"
)

type stubFetcher struct {
	mu        sync.Mutex
	users     map[string]roblox.UserInfo
	headshots map[string]string
	roles     map[string]string
	ranks     map[string]int
	userErr   error
	calls     int
}

func (s *stubFetcher) GetUser(_ context.Context, userID string) (roblox.UserInfo, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.userErr != nil {
		return roblox.UserInfo{}, s.userErr
	}
	user, ok := s.users[userID]
	if !ok {
		return roblox.UserInfo{}, errors.New("user not found")
	}
	return user, nil
}

func (s *stubFetcher) GetHeadshotURL(_ context.Context, userID string) (string, error) {
	url, ok := s.headshots[userID]
	if !ok {
		return "", errors.New("headshot unavailable")
	}
	return url, nil
}

func (s *stubFetcher) GetGroupRole(_ context.Context, userID, _ string) (string, int, error) {
	role, ok := s.roles[userID]
	if !ok {
		return "", 0, errors.New("group roles unavailable")
	}
	return role, s.ranks[userID], nil
}

func newCacheBackedService(t *testing.T, fetcher Fetcher, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redrepo.NewProfileCacheRepo(redrepo.NewClient(mr.Addr(), "", 0))

	return NewService(cache, fetcher, zap.NewNop(), Config{TTL: ttl}), mr
}

func TestResolveCachesProfile(t *testing.T) {
	fetcher := &stubFetcher{
		users:     map[string]roblox.UserInfo{"42": {ID: 42, Name: "builder_joe", DisplayName: "Joe"}},
		headshots: map[string]string{"42": "https://cdn.example/42.png"},
	}
	svc, _ := newCacheBackedService(t, fetcher, time.Hour)

	first := svc.Resolve(context.Background(), "42")
	if first.DisplayName != "Joe" {
		t.Fatalf("unexpected display name: %q", first.DisplayName)
	}
	if first.IconURL != "https://cdn.example/42.png" {
		t.Fatalf("unexpected icon url: %q", first.IconURL)
	}

	second := svc.Resolve(context.Background(), "42")
	if second.DisplayName != "Joe" {
		t.Fatalf("unexpected cached display name: %q", second.DisplayName)
	}
	if fetcher.calls != 1 {
		t.Fatalf("second resolve must hit the cache: %d platform calls", fetcher.calls)
	}
}

func TestResolveCacheExpires(t *testing.T) {
	fetcher := &stubFetcher{
		users: map[string]roblox.UserInfo{"42": {ID: 42, Name: "builder_joe"}},
	}
	svc, mr := newCacheBackedService(t, fetcher, time.Hour)

	svc.Resolve(context.Background(), "42")
	mr.FastForward(2 * time.Hour)
	svc.Resolve(context.Background(), "42")

	if fetcher.calls != 2 {
		t.Fatalf("expired entry must be refetched: %d platform calls", fetcher.calls)
	}
}

func TestResolveFallsBackOnPlatformError(t *testing.T) {
	fetcher := &stubFetcher{userErr: errors.New("platform unavailable")}
	svc, _ := newCacheBackedService(t, fetcher, time.Hour)

	profile := svc.Resolve(context.Background(), "42")
	if profile.DisplayName != "System" {
		t.Fatalf("unexpected fallback: %+v", profile)
	}

	// Failures are not cached, so the next resolve retries the platform.
	svc.Resolve(context.Background(), "42")
	if fetcher.calls != 2 {
		t.Fatalf("failed resolution must not be cached: %d platform calls", fetcher.calls)
	}
}

func TestResolveSyntheticIDSkipsPlatform(t *testing.T) {
	fetcher := &stubFetcher{}
	svc, _ := newCacheBackedService(t, fetcher, time.Hour)

	profile := svc.Resolve(context.Background(), "0")
	if profile.DisplayName != "System" {
		t.Fatalf("unexpected profile for synthetic id: %+v", profile)
	}
	if fetcher.calls != 0 {
		t.Fatalf("synthetic ids must not hit the platform")
	}
}

func TestResolveManyDeduplicates(t *testing.T) {
	fetcher := &stubFetcher{
		users: map[string]roblox.UserInfo{
			"42": {ID: 42, DisplayName: "Joe"},
			"57": {ID: 57, DisplayName: "Sue"},
		},
	}
	svc, _ := newCacheBackedService(t, fetcher, time.Hour)

	results := svc.ResolveMany(context.Background(), []string{"42", "57", "42"})
	if len(results) != 2 {
		t.Fatalf("unexpected result size: %d", len(results))
	}
	if results["42"].DisplayName != "Joe" || results["57"].DisplayName != "Sue" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestResolveAttachesGroupRank(t *testing.T) {
	fetcher := &stubFetcher{
		users: map[string]roblox.UserInfo{
			"42": {ID: 42, Name: "builder_joe", DisplayName: "Joe"},
			"57": {ID: 57, DisplayName: "Sue"},
		},
		roles: map[string]string{"42": "Moderator"},
		ranks: map[string]int{"42": 120},
	}
	mr := miniredis.RunT(t)
	cache := redrepo.NewProfileCacheRepo(redrepo.NewClient(mr.Addr(), "", 0))
	svc := NewService(cache, fetcher, zap.NewNop(), Config{TTL: time.Hour, GroupID: "123456"})

	profile := svc.Resolve(context.Background(), "42")
	if profile.Role != "Moderator" || profile.Rank != 120 {
		t.Fatalf("group role not attached: %+v", profile)
	}

	// Role lookup failure degrades to an unranked profile, not an error.
	other := svc.Resolve(context.Background(), "57")
	if other.DisplayName != "Sue" || other.Role != "" || other.Rank != 0 {
		t.Fatalf("unexpected profile on role lookup failure: %+v", other)
	}
}

func TestResolveSkipsGroupLookupWithoutGroup(t *testing.T) {
	fetcher := &stubFetcher{
		users: map[string]roblox.UserInfo{"42": {ID: 42, DisplayName: "Joe"}},
	}
	svc, _ := newCacheBackedService(t, fetcher, time.Hour)

	profile := svc.Resolve(context.Background(), "42")
	if profile.Rank != 0 || profile.Role != "" {
		t.Fatalf("rank must stay zero without a configured group: %+v", profile)
	}
}
