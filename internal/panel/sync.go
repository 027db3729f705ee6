package panel

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
)

// Fetcher is the slice of Client the syncer depends on.
type Fetcher interface {
	ListServers(ctx context.Context) ([]dto.ServerResponse, error)
	GetRoster(ctx context.Context, serverID string) ([]dto.RosterPlayer, error)
	GetChat(ctx context.Context, serverID string) ([]dto.ChatEntryResponse, error)
	GetAudit(ctx context.Context, serverID string) ([]dto.AuditEntryResponse, error)
	GetProfile(ctx context.Context, playerID string) (dto.ProfileResponse, error)
}

// ServerView is one server's state assembled for dashboard rendering, with
// roster and chat entries enriched by resolved profiles.
type ServerView struct {
	Server    dto.ServerResponse
	Players   []EnrichedPlayer
	Chat      []EnrichedChatEntry
	Audit     []dto.AuditEntryResponse
	FetchedAt time.Time
}

type EnrichedPlayer struct {
	dto.RosterPlayer
	Profile dto.ProfileResponse
}

// EnrichedChatEntry overlays the resolved display name onto the raw pushed
// username; the raw value survives in Profile-less fallbacks.
type EnrichedChatEntry struct {
	dto.ChatEntryResponse
	Profile dto.ProfileResponse
}

// Syncer periodically pulls the full fleet state from the staff API. A failed
// server fetch drops that server from the round instead of failing the sync.
type Syncer struct {
	fetcher Fetcher
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.RWMutex
	views map[string]ServerView
}

func NewSyncer(fetcher Fetcher, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Syncer{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		views:   make(map[string]ServerView),
	}
}

// Sync refreshes every server view once. Server fetches run concurrently;
// the round waits for all of them before swapping the snapshot in.
func (s *Syncer) Sync(ctx context.Context) error {
	servers, err := s.fetcher.ListServers(ctx)
	if err != nil {
		return err
	}

	views := make(map[string]ServerView, len(servers))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func(srv dto.ServerResponse) {
			defer wg.Done()
			view, err := s.fetchServer(ctx, srv)
			if err != nil {
				s.logger.Warn("server sync failed", zap.String("server_id", srv.ServerID), zap.Error(err))
				return
			}
			mu.Lock()
			views[srv.ServerID] = view
			mu.Unlock()
		}(srv)
	}
	wg.Wait()

	s.mu.Lock()
	s.views = views
	s.mu.Unlock()

	return nil
}

func (s *Syncer) fetchServer(ctx context.Context, srv dto.ServerResponse) (ServerView, error) {
	var roster []dto.RosterPlayer
	var chat []dto.ChatEntryResponse
	var audit []dto.AuditEntryResponse

	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		roster, errs[0] = s.fetcher.GetRoster(ctx, srv.ServerID)
	}()
	go func() {
		defer wg.Done()
		chat, errs[1] = s.fetcher.GetChat(ctx, srv.ServerID)
	}()
	go func() {
		defer wg.Done()
		audit, errs[2] = s.fetcher.GetAudit(ctx, srv.ServerID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return ServerView{}, err
		}
	}

	profiles := s.resolveProfiles(ctx, roster, chat)

	players := make([]EnrichedPlayer, 0, len(roster))
	for _, p := range roster {
		players = append(players, EnrichedPlayer{
			RosterPlayer: p,
			Profile:      profileOrFallback(profiles, p.PlayerID, p.Username),
		})
	}

	entries := make([]EnrichedChatEntry, 0, len(chat))
	for _, e := range chat {
		enriched := EnrichedChatEntry{
			ChatEntryResponse: e,
			Profile:           profileOrFallback(profiles, e.PlayerID, e.Username),
		}
		if enriched.Profile.DisplayName != "" {
			enriched.Username = enriched.Profile.DisplayName
		}
		entries = append(entries, enriched)
	}

	return ServerView{
		Server:    srv,
		Players:   players,
		Chat:      entries,
		Audit:     audit,
		FetchedAt: s.now().UTC(),
	}, nil
}

// resolveProfiles looks up every distinct player id appearing in the roster
// or the chat window, one call per id. Failed lookups are warned and left
// out; the caller substitutes the raw pushed username.
func (s *Syncer) resolveProfiles(ctx context.Context, roster []dto.RosterPlayer, chat []dto.ChatEntryResponse) map[string]dto.ProfileResponse {
	ids := make([]string, 0, len(roster)+len(chat))
	seen := make(map[string]struct{}, len(roster)+len(chat))
	for _, p := range roster {
		if _, dup := seen[p.PlayerID]; !dup {
			seen[p.PlayerID] = struct{}{}
			ids = append(ids, p.PlayerID)
		}
	}
	for _, e := range chat {
		if _, dup := seen[e.PlayerID]; !dup {
			seen[e.PlayerID] = struct{}{}
			ids = append(ids, e.PlayerID)
		}
	}

	profiles := make(map[string]dto.ProfileResponse, len(ids))
	for _, id := range ids {
		profile, err := s.fetcher.GetProfile(ctx, id)
		if err != nil {
			s.logger.Warn("profile enrichment failed", zap.String("player_id", id), zap.Error(err))
			continue
		}
		profiles[id] = profile
	}
	return profiles
}

func profileOrFallback(profiles map[string]dto.ProfileResponse, playerID, username string) dto.ProfileResponse {
	if profile, ok := profiles[playerID]; ok {
		return profile
	}
	return dto.ProfileResponse{PlayerID: playerID, DisplayName: username}
}

// View returns the last synced state for one server.
func (s *Syncer) View(serverID string) (ServerView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view, ok := s.views[serverID]
	return view, ok
}

// Views returns the last synced state for the whole fleet.
func (s *Syncer) Views() []ServerView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]ServerView, 0, len(s.views))
	for _, view := range s.views {
		views = append(views, view)
	}
	return views
}
