package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	profilesvc "github.com/CodeCommander07/flat-studios-sub002/internal/services/profiles"
	"github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/dto"
	httperrors "github.com/CodeCommander07/flat-studios-sub002/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get resolves one player profile. Resolution degrades to the fallback
// profile rather than failing, so this endpoint always answers 200.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile := h.service.Resolve(r.Context(), chi.URLParam(r, "playerID"))

	httperrors.Write(w, http.StatusOK, dto.ProfileResponse{
		PlayerID:    profile.PlayerID,
		DisplayName: profile.DisplayName,
		IconURL:     profile.IconURL,
		Rank:        profile.Rank,
		Role:        profile.Role,
	})
}
