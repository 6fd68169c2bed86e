package api

import (
	"context"
	"net/http"

	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
)

// MeetsDependencies defines the interface for meet listing.
type MeetsDependencies interface {
	Meets(ctx context.Context, status model.MeetStatus) ([]model.Sanction, error)
}

// MeetsHandler handles meet listing requests.
type MeetsHandler struct {
	deps MeetsDependencies
}

// NewMeetsHandler creates a new meets handler.
func NewMeetsHandler(deps MeetsDependencies) *MeetsHandler {
	return &MeetsHandler{deps: deps}
}

// HandleGetMeets handles GET /meets?status=S requests. Without a status
// filter every synced sanction is returned.
func (h *MeetsHandler) HandleGetMeets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	var status model.MeetStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = normalize.MeetStatus(raw)
		if status == model.StatusUnknown {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}
	meets, err := h.deps.Meets(r.Context(), status)
	if err != nil {
		translateError(w, err)
		return
	}
	if meets == nil {
		meets = []model.Sanction{}
	}
	writeJSON(w, http.StatusOK, meets)
}
