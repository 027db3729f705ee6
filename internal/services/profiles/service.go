package profiles

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	"github.com/CodeCommander07/flat-studios-sub002/internal/infra/roblox"
)

type CacheStore interface {
	Get(ctx context.Context, playerID string) (model.Profile, bool, error)
	Set(ctx context.Context, profile model.Profile, ttl time.Duration) error
}

type Fetcher interface {
	GetUser(ctx context.Context, userID string) (roblox.UserInfo, error)
	GetHeadshotURL(ctx context.Context, userID string) (string, error)
	GetGroupRole(ctx context.Context, userID, groupID string) (string, int, error)
}

// Config.GroupID is the staff group whose role and rank annotate resolved
// profiles; when empty the group lookup is skipped and rank stays zero.
type Config struct {
	TTL     time.Duration
	GroupID string
}

// Service resolves player IDs to display profiles through a Redis-backed
// cache. Resolution never fails a caller: when the platform is unreachable
// the fallback profile stands in and nothing is cached, so the next lookup
// retries.
type Service struct {
	cache   CacheStore
	fetcher Fetcher
	logger  *zap.Logger
	cfg     Config
}

func NewService(cache CacheStore, fetcher Fetcher, logger *zap.Logger, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger,
		cfg:     cfg,
	}
}

func (s *Service) Resolve(ctx context.Context, playerID string) model.Profile {
	if playerID == "" || isSyntheticID(playerID) {
		return model.FallbackProfile(playerID)
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, playerID)
		if err != nil {
			s.logger.Warn("profile cache read failed", zap.String("player_id", playerID), zap.Error(err))
		} else if ok {
			return cached
		}
	}

	if s.fetcher == nil {
		return model.FallbackProfile(playerID)
	}

	user, err := s.fetcher.GetUser(ctx, playerID)
	if err != nil {
		s.logger.Warn("profile lookup failed", zap.String("player_id", playerID), zap.Error(err))
		return model.FallbackProfile(playerID)
	}

	profile := model.Profile{
		PlayerID:    playerID,
		DisplayName: user.DisplayName,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = user.Name
	}

	if iconURL, err := s.fetcher.GetHeadshotURL(ctx, playerID); err != nil {
		s.logger.Warn("headshot lookup failed", zap.String("player_id", playerID), zap.Error(err))
	} else {
		profile.IconURL = iconURL
	}

	if s.cfg.GroupID != "" {
		if role, rank, err := s.fetcher.GetGroupRole(ctx, playerID, s.cfg.GroupID); err != nil {
			s.logger.Warn("group role lookup failed", zap.String("player_id", playerID), zap.Error(err))
		} else {
			profile.Role = role
			profile.Rank = rank
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, profile, s.cfg.TTL); err != nil {
			s.logger.Warn("profile cache write failed", zap.String("player_id", playerID), zap.Error(err))
		}
	}

	return profile
}

// ResolveMany resolves a batch concurrently. Result order matches input order
// and duplicates are resolved once.
func (s *Service) ResolveMany(ctx context.Context, playerIDs []string) map[string]model.Profile {
	results := make(map[string]model.Profile, len(playerIDs))
	seen := make(map[string]struct{}, len(playerIDs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			profile := s.Resolve(ctx, playerID)
			mu.Lock()
			results[playerID] = profile
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return results
}

// System actors (notifications, command mirrors) use player id "0" and never
// resolve against the platform.
func isSyntheticID(playerID string) bool {
	n, err := strconv.ParseInt(playerID, 10, 64)
	if err != nil {
		return true
	}
	return n <= 0
}
