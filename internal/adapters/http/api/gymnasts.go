package api

import (
	"context"
	"net/http"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// GymnastDependencies defines the interface for gymnast projections.
type GymnastDependencies interface {
	Gymnast(ctx context.Context, gymnastID int) (model.Gymnast, error)
	GymnastSanctions(ctx context.Context, gymnastID int) ([]model.Sanction, error)
	GymnastScores(ctx context.Context, gymnastID int, eventID string) ([]model.Score, error)
}

// GymnastHandler handles gymnast read requests.
type GymnastHandler struct {
	deps GymnastDependencies
}

// NewGymnastHandler creates a new gymnast handler.
func NewGymnastHandler(deps GymnastDependencies) *GymnastHandler {
	return &GymnastHandler{deps: deps}
}

// HandleGymnast handles GET /gymnasts/{id} and its subresources
// /sanctions and /scores[?event=].
func (h *GymnastHandler) HandleGymnast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/gymnasts/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
		return
	}
	switch sub {
	case "":
		gymnast, err := h.deps.Gymnast(r.Context(), id)
		if err != nil {
			translateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, gymnast)
	case "sanctions":
		sanctions, err := h.deps.GymnastSanctions(r.Context(), id)
		if err != nil {
			translateError(w, err)
			return
		}
		if sanctions == nil {
			sanctions = []model.Sanction{}
		}
		writeJSON(w, http.StatusOK, sanctions)
	case "scores":
		scores, err := h.deps.GymnastScores(r.Context(), id, r.URL.Query().Get("event"))
		if err != nil {
			translateError(w, err)
			return
		}
		if scores == nil {
			scores = []model.Score{}
		}
		writeJSON(w, http.StatusOK, scores)
	default:
		http.NotFound(w, r)
	}
}
