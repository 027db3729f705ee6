package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
)

const profileKeyPrefix = "profiles:"

// ProfileCacheRepo caches resolved player profiles so the panel does not hit
// the Roblox APIs on every sync. Entries expire on their own; a restart of
// this process never loses more than one cache warm-up.
type ProfileCacheRepo struct {
	client *goredis.Client
}

func NewProfileCacheRepo(client *goredis.Client) *ProfileCacheRepo {
	return &ProfileCacheRepo{client: client}
}

func (r *ProfileCacheRepo) Get(ctx context.Context, playerID string) (model.Profile, bool, error) {
	if r.client == nil {
		return model.Profile{}, false, fmt.Errorf("redis client is nil")
	}
	if playerID == "" {
		return model.Profile{}, false, fmt.Errorf("player id is required")
	}

	raw, err := r.client.Get(ctx, profileKey(playerID)).Bytes()
	if err == goredis.Nil {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("get cached profile: %w", err)
	}

	var profile model.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return model.Profile{}, false, fmt.Errorf("decode cached profile: %w", err)
	}

	return profile, true, nil
}

func (r *ProfileCacheRepo) Set(ctx context.Context, profile model.Profile, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if profile.PlayerID == "" || ttl <= 0 {
		return fmt.Errorf("invalid cached profile payload")
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode cached profile: %w", err)
	}
	if err := r.client.Set(ctx, profileKey(profile.PlayerID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store cached profile: %w", err)
	}

	return nil
}

func profileKey(playerID string) string {
	return profileKeyPrefix + playerID
}
