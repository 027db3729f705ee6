package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

type IngestHandler struct {
	service *ingestsvc.Service
}

func NewIngestHandler(service *ingestsvc.Service) *IngestHandler {
	return &IngestHandler{service: service}
}

// PushChat receives one chat line from a game server.
func (h *IngestHandler) PushChat(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	var req dto.ChatPushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	err := h.service.PushChat(r.Context(), model.ChatEntry{
		ServerID: chi.URLParam(r, "serverID"),
		PlayerID: req.PlayerID,
		Username: req.Username,
		Message:  req.ChatMessage,
	})
	if err != nil {
		if errors.Is(err, ingestsvc.ErrRateLimited) {
			writeRateLimited(w, 60)
			return
		}
		handleIngestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// ReplaceRoster swaps the full player list reported by a game server.
func (h *IngestHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	var req dto.RosterReplaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	players := make([]model.Player, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, model.Player{
			PlayerID: p.PlayerID,
			Username: p.Username,
			Team:     p.Team,
			Left:     p.Left,
		})
	}

	if err := h.service.ReplaceRoster(r.Context(), chi.URLParam(r, "serverID"), players); err != nil {
		handleIngestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Notify fans a staff broadcast out to the server's chat, audit trail and
// outbox.
func (h *IngestHandler) Notify(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	var req dto.NotifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	if err := h.service.PostNotification(r.Context(), chi.URLParam(r, "serverID"), req.Message, req.Actor); err != nil {
		handleIngestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *IngestHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	entries, err := h.service.GetChat(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		handleIngestError(w, err)
		return
	}

	resp := dto.ChatListResponse{Entries: make([]dto.ChatEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, dto.ChatEntryResponse{
			ID:          entry.ID,
			PlayerID:    entry.PlayerID,
			Username:    entry.Username,
			ChatMessage: entry.Message,
			Type:        string(entry.Type),
			Time:        entry.Time,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *IngestHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	players, err := h.service.GetRoster(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		handleIngestError(w, err)
		return
	}

	resp := dto.RosterResponse{Players: make([]dto.RosterPlayer, 0, len(players))}
	for _, p := range players {
		resp.Players = append(resp.Players, dto.RosterPlayer{
			PlayerID: p.PlayerID,
			Username: p.Username,
			Team:     p.Team,
			Left:     p.Left,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *IngestHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "INVALID_REQUEST", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := h.service.GetAudit(r.Context(), chi.URLParam(r, "serverID"), limit)
	if err != nil {
		handleIngestError(w, err)
		return
	}

	resp := dto.AuditListResponse{Entries: make([]dto.AuditEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, dto.AuditEntryResponse{
			ID:      entry.ID,
			Action:  entry.Action,
			Actor:   entry.Actor,
			Details: entry.Details,
			Time:    entry.Time,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}
