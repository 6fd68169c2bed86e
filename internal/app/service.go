// Package app provides the core sync service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"time"

	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
	"github.com/roundoff/gymstats/pkg/logger"
)

// Defaults applied by New.
const (
	defaultSearchLimit = 5
	defaultHomeClubID  = 24029
)

var defaultSeasonStart = time.Date(2022, time.September, 1, 0, 0, 0, 0, time.UTC)

// Service owns the sync pipeline and the read projections behind the
// HTTP API. All writes go through it; the query path never mutates.
type Service struct {
	store   repository.TxStore
	fetcher usagym.Fetcher

	homeClubID  int
	seasonStart time.Time
	searchLimit int

	// syncLocks serializes syncs per sanction id. The store's upserts are
	// last-writer-wins underneath, so this only prevents two concurrent
	// transactions from interleaving work for the same sanction.
	syncLocks *keyMutex

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHomeClub sets the default club for club-season batch syncs.
func WithHomeClub(clubID int) Option {
	return func(s *Service) {
		if clubID > 0 {
			s.homeClubID = clubID
		}
	}
}

// WithSeasonStart sets the default cutoff date for club-season batch
// syncs.
func WithSeasonStart(t time.Time) Option {
	return func(s *Service) {
		if !t.IsZero() {
			s.seasonStart = t
		}
	}
}

// WithSearchLimit caps rows per entity kind returned by Search.
func WithSearchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// New constructs a Service over the given store and fetcher.
func New(store repository.TxStore, fetcher usagym.Fetcher, opts ...Option) *Service {
	s := &Service{
		store:       store,
		fetcher:     fetcher,
		homeClubID:  defaultHomeClubID,
		seasonStart: defaultSeasonStart,
		searchLimit: defaultSearchLimit,
		syncLocks:   newKeyMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// HomeClubID returns the configured default club for batch syncs.
func (s *Service) HomeClubID() int { return s.homeClubID }

// SeasonStart returns the configured default batch cutoff date.
func (s *Service) SeasonStart() time.Time { return s.seasonStart }

// GetStats returns service information for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"homeClubID":  s.homeClubID,
		"seasonStart": s.seasonStart.Format("2006-01-02"),
		"searchLimit": s.searchLimit,
	}
}

// Read projections. These delegate to the store; scores additionally get
// their event display name resolved against the session program.

// Meets returns sanctions with the given status.
func (s *Service) Meets(ctx context.Context, status model.MeetStatus) ([]model.Sanction, error) {
	return s.store.SanctionsByStatus(ctx, status)
}

// Sanction returns one sanction by id.
func (s *Service) Sanction(ctx context.Context, sanctionID int) (model.Sanction, error) {
	return s.store.Sanction(ctx, sanctionID)
}

// Sessions returns a sanction's sessions.
func (s *Service) Sessions(ctx context.Context, sanctionID int) ([]model.Session, error) {
	return s.store.SessionsBySanction(ctx, sanctionID)
}

// ResultSets returns the scored divisions of one session.
func (s *Service) ResultSets(ctx context.Context, sessionID, sanctionID int) ([]model.ResultSet, error) {
	return s.store.ResultSetsBySession(ctx, sessionID, sanctionID)
}

// Participants returns the gymnasts entered in a sanction, with the club
// they represented there.
func (s *Service) Participants(ctx context.Context, sanctionID int) ([]model.Gymnast, error) {
	return s.store.ParticipantsBySanction(ctx, sanctionID)
}

// SanctionScores returns a sanction's scores; gymnastID zero means all.
func (s *Service) SanctionScores(ctx context.Context, sanctionID, gymnastID int) ([]model.Score, error) {
	scores, err := s.store.ScoresBySanction(ctx, sanctionID, gymnastID)
	if err != nil {
		return nil, err
	}
	return withEventNames(scores), nil
}

// Gymnast returns one gymnast by id.
func (s *Service) Gymnast(ctx context.Context, gymnastID int) (model.Gymnast, error) {
	return s.store.Gymnast(ctx, gymnastID)
}

// GymnastSanctions returns the sanctions a gymnast competed in.
func (s *Service) GymnastSanctions(ctx context.Context, gymnastID int) ([]model.Sanction, error) {
	return s.store.SanctionsByGymnast(ctx, gymnastID)
}

// GymnastScores returns a gymnast's scores; eventID empty means all.
func (s *Service) GymnastScores(ctx context.Context, gymnastID int, eventID string) ([]model.Score, error) {
	scores, err := s.store.ScoresByGymnast(ctx, gymnastID, eventID)
	if err != nil {
		return nil, err
	}
	return withEventNames(scores), nil
}

// Club returns one club by id.
func (s *Service) Club(ctx context.Context, clubID int) (model.Club, error) {
	return s.store.Club(ctx, clubID)
}

// ClubRoster returns a club's gymnasts with their most recent level.
func (s *Service) ClubRoster(ctx context.Context, clubID int) ([]model.Gymnast, error) {
	return s.store.GymnastsByClub(ctx, clubID)
}

// Search matches gymnasts by first or last name and clubs by name.
func (s *Service) Search(ctx context.Context, term string) ([]model.Gymnast, []model.Club, error) {
	gymnasts, err := s.store.SearchGymnasts(ctx, term, s.searchLimit)
	if err != nil {
		return nil, nil, err
	}
	clubs, err := s.store.SearchClubs(ctx, term, s.searchLimit)
	if err != nil {
		return nil, nil, err
	}
	return gymnasts, clubs, nil
}

func withEventNames(scores []model.Score) []model.Score {
	for i := range scores {
		scores[i].EventName = normalize.EventName(scores[i].EventID, scores[i].Program)
	}
	return scores
}
