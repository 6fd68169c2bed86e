package api

import (
	"context"
	"net/http"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// ClubDependencies defines the interface for club projections.
type ClubDependencies interface {
	Club(ctx context.Context, clubID int) (model.Club, error)
	ClubRoster(ctx context.Context, clubID int) ([]model.Gymnast, error)
}

// ClubHandler handles club read requests.
type ClubHandler struct {
	deps ClubDependencies
}

// NewClubHandler creates a new club handler.
func NewClubHandler(deps ClubDependencies) *ClubHandler {
	return &ClubHandler{deps: deps}
}

// HandleClub handles GET /clubs/{id} and GET /clubs/{id}/gymnasts.
func (h *ClubHandler) HandleClub(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/clubs/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
		return
	}
	switch sub {
	case "":
		club, err := h.deps.Club(r.Context(), id)
		if err != nil {
			translateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, club)
	case "gymnasts":
		roster, err := h.deps.ClubRoster(r.Context(), id)
		if err != nil {
			translateError(w, err)
			return
		}
		if roster == nil {
			roster = []model.Gymnast{}
		}
		writeJSON(w, http.StatusOK, roster)
	default:
		http.NotFound(w, r)
	}
}
