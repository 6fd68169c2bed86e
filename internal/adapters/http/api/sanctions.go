package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// SanctionDependencies defines the interface for sanction projections.
type SanctionDependencies interface {
	Sanction(ctx context.Context, sanctionID int) (model.Sanction, error)
	Sessions(ctx context.Context, sanctionID int) ([]model.Session, error)
	ResultSets(ctx context.Context, sessionID, sanctionID int) ([]model.ResultSet, error)
	Participants(ctx context.Context, sanctionID int) ([]model.Gymnast, error)
	SanctionScores(ctx context.Context, sanctionID, gymnastID int) ([]model.Score, error)
}

// SanctionHandler handles sanction read requests.
type SanctionHandler struct {
	deps SanctionDependencies
}

// NewSanctionHandler creates a new sanction handler.
func NewSanctionHandler(deps SanctionDependencies) *SanctionHandler {
	return &SanctionHandler{deps: deps}
}

// sessionView nests a session's result sets under the session row.
type sessionView struct {
	model.Session
	ResultSets []model.ResultSet `json:"result_sets"`
}

// HandleSanction handles GET /sanctions/{id} and its subresources
// /sessions, /gymnasts and /scores[?gymnast_id=].
func (h *SanctionHandler) HandleSanction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, sub, ok := pathID(r.URL.Path, "/sanctions/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
		return
	}
	switch sub {
	case "":
		h.getSanction(w, r, id)
	case "sessions":
		h.getSessions(w, r, id)
	case "gymnasts":
		h.getParticipants(w, r, id)
	case "scores":
		h.getScores(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SanctionHandler) getSanction(w http.ResponseWriter, r *http.Request, id int) {
	sanction, err := h.deps.Sanction(r.Context(), id)
	if err != nil {
		translateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanction)
}

func (h *SanctionHandler) getSessions(w http.ResponseWriter, r *http.Request, id int) {
	sessions, err := h.deps.Sessions(r.Context(), id)
	if err != nil {
		translateError(w, err)
		return
	}
	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		sets, err := h.deps.ResultSets(r.Context(), session.SessionID, session.SanctionID)
		if err != nil {
			translateError(w, err)
			return
		}
		if sets == nil {
			sets = []model.ResultSet{}
		}
		views = append(views, sessionView{Session: session, ResultSets: sets})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *SanctionHandler) getParticipants(w http.ResponseWriter, r *http.Request, id int) {
	gymnasts, err := h.deps.Participants(r.Context(), id)
	if err != nil {
		translateError(w, err)
		return
	}
	if gymnasts == nil {
		gymnasts = []model.Gymnast{}
	}
	writeJSON(w, http.StatusOK, gymnasts)
}

func (h *SanctionHandler) getScores(w http.ResponseWriter, r *http.Request, id int) {
	gymnastID := 0
	if raw := r.URL.Query().Get("gymnast_id"); raw != "" {
		var err error
		gymnastID, err = strconv.Atoi(raw)
		if err != nil || gymnastID <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadID)
			return
		}
	}
	scores, err := h.deps.SanctionScores(r.Context(), id, gymnastID)
	if err != nil {
		translateError(w, err)
		return
	}
	if scores == nil {
		scores = []model.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}
