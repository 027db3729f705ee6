package panel

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
)

type stubFetcher struct {
	servers   []dto.ServerResponse
	rosters   map[string][]dto.RosterPlayer
	chats     map[string][]dto.ChatEntryResponse
	audits    map[string][]dto.AuditEntryResponse
	profiles  map[string]dto.ProfileResponse
	rosterErr map[string]error

	profileCalls int
}

func (s *stubFetcher) ListServers(context.Context) ([]dto.ServerResponse, error) {
	return s.servers, nil
}

func (s *stubFetcher) GetRoster(_ context.Context, serverID string) ([]dto.RosterPlayer, error) {
	if err := s.rosterErr[serverID]; err != nil {
		return nil, err
	}
	return s.rosters[serverID], nil
}

func (s *stubFetcher) GetChat(_ context.Context, serverID string) ([]dto.ChatEntryResponse, error) {
	return s.chats[serverID], nil
}

func (s *stubFetcher) GetAudit(_ context.Context, serverID string) ([]dto.AuditEntryResponse, error) {
	return s.audits[serverID], nil
}

func (s *stubFetcher) GetProfile(_ context.Context, playerID string) (dto.ProfileResponse, error) {
	s.profileCalls++
	profile, ok := s.profiles[playerID]
	if !ok {
		return dto.ProfileResponse{}, errors.New("profile unavailable")
	}
	return profile, nil
}

func TestSyncEnrichesRoster(t *testing.T) {
	fetcher := &stubFetcher{
		servers: []dto.ServerResponse{{ServerID: "srv-1"}},
		rosters: map[string][]dto.RosterPlayer{
			"srv-1": {{PlayerID: "42", Username: "builder_joe"}},
		},
		chats: map[string][]dto.ChatEntryResponse{
			"srv-1": {{ID: 1, PlayerID: "42", ChatMessage: "hello"}},
		},
		audits: map[string][]dto.AuditEntryResponse{
			"srv-1": {{ID: 1, Action: "kick"}},
		},
		profiles: map[string]dto.ProfileResponse{
			"42": {PlayerID: "42", DisplayName: "Joe", IconURL: "https://cdn.example/42.png"},
		},
	}
	syncer := NewSyncer(fetcher, zap.NewNop())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	view, ok := syncer.View("srv-1")
	if !ok {
		t.Fatalf("server view missing after sync")
	}
	if len(view.Players) != 1 {
		t.Fatalf("unexpected roster size: %d", len(view.Players))
	}
	if view.Players[0].Profile.DisplayName != "Joe" {
		t.Fatalf("profile not attached: %+v", view.Players[0])
	}
	if len(view.Chat) != 1 || len(view.Audit) != 1 {
		t.Fatalf("chat/audit missing: %d/%d", len(view.Chat), len(view.Audit))
	}
}

func TestSyncEnrichesChatEntries(t *testing.T) {
	fetcher := &stubFetcher{
		servers: []dto.ServerResponse{{ServerID: "srv-1"}},
		rosters: map[string][]dto.RosterPlayer{
			"srv-1": {{PlayerID: "42", Username: "builder_joe"}},
		},
		chats: map[string][]dto.ChatEntryResponse{
			"srv-1": {
				{ID: 1, PlayerID: "42", Username: "builder_joe", ChatMessage: "hello"},
				{ID: 2, PlayerID: "77", Username: "drifter", ChatMessage: "hi"},
			},
		},
		profiles: map[string]dto.ProfileResponse{
			"42": {PlayerID: "42", DisplayName: "Joe"},
		},
	}
	syncer := NewSyncer(fetcher, zap.NewNop())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	view, ok := syncer.View("srv-1")
	if !ok {
		t.Fatalf("server view missing after sync")
	}
	if len(view.Chat) != 2 {
		t.Fatalf("unexpected chat size: %d", len(view.Chat))
	}
	if view.Chat[0].Username != "Joe" || view.Chat[0].Profile.DisplayName != "Joe" {
		t.Fatalf("chat entry not enriched with resolved profile: %+v", view.Chat[0])
	}
	if view.Chat[0].ChatMessage != "hello" {
		t.Fatalf("chat message mangled by enrichment: %+v", view.Chat[0])
	}
	if view.Chat[1].Username != "drifter" {
		t.Fatalf("unresolved chat entry must keep the pushed username: %+v", view.Chat[1])
	}

	// player 42 appears in roster and chat, 77 in chat only: two lookups.
	if fetcher.profileCalls != 2 {
		t.Fatalf("expected deduplicated profile lookups, got %d", fetcher.profileCalls)
	}
}

func TestSyncProfileFailureFallsBackToUsername(t *testing.T) {
	fetcher := &stubFetcher{
		servers: []dto.ServerResponse{{ServerID: "srv-1"}},
		rosters: map[string][]dto.RosterPlayer{
			"srv-1": {{PlayerID: "42", Username: "builder_joe"}},
		},
	}
	syncer := NewSyncer(fetcher, zap.NewNop())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	view, ok := syncer.View("srv-1")
	if !ok {
		t.Fatalf("server view missing")
	}
	if view.Players[0].Profile.DisplayName != "builder_joe" {
		t.Fatalf("expected username fallback, got %+v", view.Players[0].Profile)
	}
}

func TestSyncDropsFailedServerKeepsOthers(t *testing.T) {
	fetcher := &stubFetcher{
		servers: []dto.ServerResponse{{ServerID: "srv-1"}, {ServerID: "srv-2"}},
		rosters: map[string][]dto.RosterPlayer{
			"srv-2": {},
		},
		rosterErr: map[string]error{
			"srv-1": errors.New("backend unavailable"),
		},
	}
	syncer := NewSyncer(fetcher, zap.NewNop())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, ok := syncer.View("srv-1"); ok {
		t.Fatalf("failed server must be dropped from the round")
	}
	if _, ok := syncer.View("srv-2"); !ok {
		t.Fatalf("healthy server must survive the round")
	}
}

func TestSyncReplacesPreviousSnapshot(t *testing.T) {
	fetcher := &stubFetcher{
		servers: []dto.ServerResponse{{ServerID: "srv-1"}},
		rosters: map[string][]dto.RosterPlayer{"srv-1": {}},
	}
	syncer := NewSyncer(fetcher, zap.NewNop())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	fetcher.servers = []dto.ServerResponse{{ServerID: "srv-2"}}
	fetcher.rosters = map[string][]dto.RosterPlayer{"srv-2": {}}

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if _, ok := syncer.View("srv-1"); ok {
		t.Fatalf("stale server must disappear after resync")
	}
	if _, ok := syncer.View("srv-2"); !ok {
		t.Fatalf("new server missing after resync")
	}
}
