package api

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
)

// SyncDependencies defines the interface for sync operations.
type SyncDependencies interface {
	SyncSanction(ctx context.Context, sanctionID int) (model.Sanction, error)
	SyncScores(ctx context.Context, resultSetID int) ([]model.Score, error)
	SyncClubSeason(ctx context.Context, clubID int, since time.Time) ([]model.Sanction, error)
}

// SyncHandler handles sync trigger requests.
type SyncHandler struct {
	deps SyncDependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandleSyncSanction handles POST /sync/sanctions/{id} requests.
func (h *SyncHandler) HandleSyncSanction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/sync/sanctions/")
	if !ok || sub != "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
		return
	}
	sanction, err := h.deps.SyncSanction(r.Context(), id)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanction)
}

// HandleSyncResultSet handles POST /sync/result-sets/{id} requests.
func (h *SyncHandler) HandleSyncResultSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/sync/result-sets/")
	if !ok || sub != "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
		return
	}
	scores, err := h.deps.SyncScores(r.Context(), id)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// clubSeasonRequest is the optional body of POST /sync/club-season.
// Omitted fields fall back to the configured home club and season start.
type clubSeasonRequest struct {
	ClubID int    `json:"club_id"`
	Since  string `json:"since"`
}

// HandleSyncClubSeason handles POST /sync/club-season requests.
func (h *SyncHandler) HandleSyncClubSeason(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req clubSeasonRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	var since time.Time
	if req.Since != "" {
		parsed, ok := normalize.ParseDate(req.Since)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		since = parsed
	}
	sanctions, err := h.deps.SyncClubSeason(r.Context(), req.ClubID, since)
	if err != nil {
		translateError(w, err)
		return
	}
	if sanctions == nil {
		sanctions = []model.Sanction{}
	}
	writeJSON(w, http.StatusOK, sanctions)
}
