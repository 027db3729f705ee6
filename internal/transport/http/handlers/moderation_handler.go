package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/enums"
	"github.com/CodeCommander07/flat-studios-sub002/internal/domain/model"
	enforcesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/enforcement"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *enforcesvc.Service
}

func NewModerationHandler(service *enforcesvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// Ban applies a platform restriction. The ledger row always exists after this
// call; a 502 only means the platform itself turned the restriction down.
func (h *ModerationHandler) Ban(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ENFORCEMENT_SERVICE_UNAVAILABLE", "enforcement service is unavailable")
		return
	}

	var req dto.BanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	banType := enums.BanType(req.BanType)
	switch banType {
	case enums.BanTypePermanent, enums.BanTypeTemporary, enums.BanTypeServer:
	default:
		writeBadRequest(w, "INVALID_REQUEST", "unknown ban type")
		return
	}

	action, err := h.service.Ban(r.Context(), enforcesvc.BanRequest{
		TargetID:      req.TargetID,
		TargetName:    req.TargetName,
		ModeratorID:   req.ModeratorID,
		ModeratorName: req.ModeratorName,
		ServerID:      req.ServerID,
		BanType:       banType,
		Duration:      time.Duration(req.DurationSeconds) * time.Second,
		Reason:        req.Reason,
	})
	if err != nil {
		handleEnforcementError(w, action, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, moderationActionResponse(action))
}

func (h *ModerationHandler) Unban(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ENFORCEMENT_SERVICE_UNAVAILABLE", "enforcement service is unavailable")
		return
	}

	var req dto.UnbanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	action, err := h.service.Unban(r.Context(), req.TargetID, req.TargetName, req.ModeratorID, req.ModeratorName, req.Reason)
	if err != nil {
		handleEnforcementError(w, action, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, moderationActionResponse(action))
}

// Log serves the enforcement ledger, newest first. An optional server_id
// query narrows the result.
func (h *ModerationHandler) Log(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ENFORCEMENT_SERVICE_UNAVAILABLE", "enforcement service is unavailable")
		return
	}

	query := r.URL.Query()
	limit, err := optionalIntParam(query.Get("limit"))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "limit must be a non-negative integer")
		return
	}
	offset, err := optionalIntParam(query.Get("offset"))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "offset must be a non-negative integer")
		return
	}

	actions, err := h.service.Log(r.Context(), query.Get("server_id"), limit, offset)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to read moderation log")
		return
	}

	resp := dto.ModerationLogResponse{Actions: make([]dto.ModerationActionResponse, 0, len(actions))}
	for _, action := range actions {
		resp.Actions = append(resp.Actions, moderationActionResponse(action))
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func moderationActionResponse(action model.ModerationAction) dto.ModerationActionResponse {
	resp := dto.ModerationActionResponse{
		ID:            action.ID,
		Action:        string(action.Action),
		TargetID:      action.TargetID,
		TargetName:    action.TargetName,
		ModeratorID:   action.ModeratorID,
		ModeratorName: action.ModeratorName,
		ServerID:      action.ServerID,
		Scope:         string(action.Scope),
		ExpiresAt:     action.ExpiresAt,
		Reason:        action.Reason,
		Status:        string(action.Status),
		CreatedAt:     action.CreatedAt,
	}
	if action.BanType != nil {
		banType := string(*action.BanType)
		resp.BanType = &banType
	}

	return resp
}

// handleEnforcementError distinguishes a refused request from a platform
// failure. When the ledger row exists (non-zero ID) the action was recorded
// even though the platform call failed.
func handleEnforcementError(w http.ResponseWriter, action model.ModerationAction, err error) {
	switch {
	case errors.Is(err, enforcesvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case action.ID != 0:
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "ENFORCEMENT_FAILED",
			Message: "platform rejected the restriction, attempt recorded",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func optionalIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid integer parameter")
	}
	return parsed, nil
}
