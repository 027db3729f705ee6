package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/CodeCommander07/flat-studios-sub002/internal/repo/postgres"
	ingestsvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/ingest"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

type ServerHandler struct {
	service *ingestsvc.Service
}

func NewServerHandler(service *ingestsvc.Service) *ServerHandler {
	return &ServerHandler{service: service}
}

func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	servers, err := h.service.ListServers(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list servers")
		return
	}

	resp := dto.ServerListResponse{Servers: make([]dto.ServerResponse, 0, len(servers))}
	for _, srv := range servers {
		resp.Servers = append(resp.Servers, dto.ServerResponse{
			ServerID:  srv.ServerID,
			Flagged:   srv.Flagged,
			CreatedAt: srv.CreatedAt,
			UpdatedAt: srv.UpdatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	srv, err := h.service.GetServer(r.Context(), chi.URLParam(r, "serverID"))
	if err != nil {
		handleIngestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ServerResponse{
		ServerID:  srv.ServerID,
		Flagged:   srv.Flagged,
		CreatedAt: srv.CreatedAt,
		UpdatedAt: srv.UpdatedAt,
	})
}

func (h *ServerHandler) Flag(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "INGEST_SERVICE_UNAVAILABLE", "ingest service is unavailable")
		return
	}

	var req dto.FlagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	if err := h.service.SetFlagged(r.Context(), chi.URLParam(r, "serverID"), req.Actor, req.Flagged); err != nil {
		handleIngestError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingestsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, pgrepo.ErrServerNotFound):
		writeNotFound(w, "SERVER_NOT_FOUND", "server is not registered")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
