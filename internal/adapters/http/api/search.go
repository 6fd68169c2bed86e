package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// SearchDependencies defines the interface for name search.
type SearchDependencies interface {
	Search(ctx context.Context, term string) ([]model.Gymnast, []model.Club, error)
}

// SearchHandler handles search requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

type searchResponse struct {
	Gymnasts []model.Gymnast `json:"gymnasts"`
	Clubs    []model.Club    `json:"clubs"`
}

// HandleSearch handles GET /search?q=term requests, matching gymnast and
// club names by substring.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	gymnasts, clubs, err := h.deps.Search(r.Context(), term)
	if err != nil {
		translateError(w, err)
		return
	}
	if gymnasts == nil {
		gymnasts = []model.Gymnast{}
	}
	if clubs == nil {
		clubs = []model.Club{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Gymnasts: gymnasts, Clubs: clubs})
}
