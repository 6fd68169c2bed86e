// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	"github.com/roundoff/gymstats/internal/app"
	"github.com/roundoff/gymstats/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read projections over synced data.
	Meets(ctx context.Context, status model.MeetStatus) ([]model.Sanction, error)
	Sanction(ctx context.Context, sanctionID int) (model.Sanction, error)
	Sessions(ctx context.Context, sanctionID int) ([]model.Session, error)
	ResultSets(ctx context.Context, sessionID, sanctionID int) ([]model.ResultSet, error)
	Participants(ctx context.Context, sanctionID int) ([]model.Gymnast, error)
	SanctionScores(ctx context.Context, sanctionID, gymnastID int) ([]model.Score, error)
	Gymnast(ctx context.Context, gymnastID int) (model.Gymnast, error)
	GymnastSanctions(ctx context.Context, gymnastID int) ([]model.Sanction, error)
	GymnastScores(ctx context.Context, gymnastID int, eventID string) ([]model.Score, error)
	Club(ctx context.Context, clubID int) (model.Club, error)
	ClubRoster(ctx context.Context, clubID int) ([]model.Gymnast, error)
	Search(ctx context.Context, term string) ([]model.Gymnast, []model.Club, error)

	// Sync operations pulling from the federation API.
	SyncSanction(ctx context.Context, sanctionID int) (model.Sanction, error)
	SyncScores(ctx context.Context, resultSetID int) ([]model.Score, error)
	SyncClubSeason(ctx context.Context, clubID int, since time.Time) ([]model.Sanction, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	meetsHandler    *MeetsHandler
	sanctionHandler *SanctionHandler
	gymnastHandler  *GymnastHandler
	clubHandler     *ClubHandler
	searchHandler   *SearchHandler
	syncHandler     *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		meetsHandler:    NewMeetsHandler(deps),
		sanctionHandler: NewSanctionHandler(deps),
		gymnastHandler:  NewGymnastHandler(deps),
		clubHandler:     NewClubHandler(deps),
		searchHandler:   NewSearchHandler(deps),
		syncHandler:     NewSyncHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/meets", MetricsMiddleware(s.meetsHandler.HandleGetMeets, "meets"))
	mux.HandleFunc("/sanctions/", MetricsMiddleware(s.sanctionHandler.HandleSanction, "sanctions"))
	mux.HandleFunc("/gymnasts/", MetricsMiddleware(s.gymnastHandler.HandleGymnast, "gymnasts"))
	mux.HandleFunc("/clubs/", MetricsMiddleware(s.clubHandler.HandleClub, "clubs"))
	mux.HandleFunc("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("/sync/sanctions/", MetricsMiddleware(s.syncHandler.HandleSyncSanction, "sync_sanction"))
	mux.HandleFunc("/sync/result-sets/", MetricsMiddleware(s.syncHandler.HandleSyncResultSet, "sync_result_set"))
	mux.HandleFunc("/sync/club-season", MetricsMiddleware(s.syncHandler.HandleSyncClubSeason, "sync_club_season"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// translateError maps service-layer failures onto HTTP statuses: missing
// rows to 404, upstream fetch failures to 502, rolled-back syncs and
// everything else to 500.
func translateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrNoScores):
		writeError(w, http.StatusNotFound, "no_scores", err)
	default:
		if _, ok := usagym.IsFetchError(err); ok {
			writeError(w, http.StatusBadGateway, "upstream_error", err)
			return
		}
		var syncErr *app.SyncError
		if errors.As(err, &syncErr) {
			writeError(w, http.StatusInternalServerError, "sync_failed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// pathID parses the numeric id segment after prefix, returning the id,
// the trailing subresource (empty when none) and whether parsing
// succeeded. "/sanctions/561234/scores" yields (561234, "scores", true).
func pathID(path, prefix string) (int, string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || rest == "" {
		return 0, "", false
	}
	idPart, sub, _ := strings.Cut(rest, "/")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, sub, true
}
