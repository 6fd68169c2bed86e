package app

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
	"github.com/roundoff/gymstats/pkg/logger"
	"github.com/roundoff/gymstats/pkg/metrics"
)

// SyncSanction fetches one sanction's detail document and reconciles it
// into the store under a single transaction, returning the refreshed
// sanction row. A fetch failure surfaces as *usagym.FetchError; a store
// failure rolls the transaction back and surfaces as *SyncError.
func (s *Service) SyncSanction(ctx context.Context, sanctionID int) (model.Sanction, error) {
	unlock := s.syncLocks.lock(sanctionID)
	defer unlock()

	start := time.Now()
	doc, err := s.fetcher.Sanction(ctx, sanctionID)
	if err != nil {
		s.log.Error(ctx, "sanction fetch failed",
			logger.Int("sanctionID", sanctionID), logger.Error(err))
		return model.Sanction{}, err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		return s.reconcileSanction(ctx, tx, doc)
	})
	if err != nil {
		metrics.RecordSyncError()
		s.log.Error(ctx, "sanction sync rolled back",
			logger.Int("sanctionID", sanctionID), logger.Error(err))
		return model.Sanction{}, &SyncError{SanctionID: sanctionID, Cause: err}
	}

	metrics.RecordSanctionSynced()
	metrics.RecordSyncDuration("sanction", time.Since(start).Seconds())
	metrics.UpdateLastSyncUnix(time.Now().Unix())
	return s.store.Sanction(ctx, sanctionID)
}

// SyncScores fetches the score document for one result set and upserts
// every row, refreshing final score and rank on conflict. Each score is
// its own upsert; there is no wrapping transaction, matching the
// upstream's append-mostly score feed. Returns the persisted rows with
// event names resolved.
func (s *Service) SyncScores(ctx context.Context, resultSetID int) ([]model.Score, error) {
	start := time.Now()
	doc, err := s.fetcher.Scores(ctx, resultSetID)
	if err != nil {
		s.log.Error(ctx, "scores fetch failed",
			logger.Int("resultSetID", resultSetID), logger.Error(err))
		return nil, err
	}
	if len(doc.Scores) == 0 {
		return nil, ErrNoScores
	}

	persisted := make([]model.Score, 0, len(doc.Scores))
	for _, sc := range doc.Scores {
		final, ok := normalize.ParseDecimal(sc.FinalScore)
		if !ok && sc.FinalScore != "" {
			s.log.Warn(ctx, "non-numeric final score",
				logger.Int("scoreID", sc.ScoreID),
				logger.String("finalScore", sc.FinalScore),
			)
			metrics.RecordRecordSkipped("score", "bad_final_score")
		}
		row, err := s.store.UpsertScore(ctx, model.Score{
			ScoreID:     sc.ScoreID,
			ResultSetID: sc.ResultSetID,
			GymnastID:   sc.PersonID,
			EventID:     sc.EventID,
			FinalScore:  final,
			Rank:        sc.Rank,
			Tie:         sc.Tie != 0,
		})
		if err != nil {
			return nil, err
		}
		persisted = append(persisted, row)
	}

	metrics.RecordScoresSynced(len(persisted))
	metrics.RecordSyncDuration("scores", time.Since(start).Seconds())
	s.log.Info(ctx, "synced scores",
		logger.Int("resultSetID", resultSetID), logger.Int("count", len(persisted)))

	// The projection joins through result set and session to pick up the
	// sanction and program. When the owning sanction was never synced the
	// join finds nothing, so fall back to the rows as written; their raw
	// event codes pass through unresolved.
	scores, err := s.store.ScoresByResultSet(ctx, resultSetID)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return withEventNames(persisted), nil
	}
	return withEventNames(scores), nil
}

// SyncClubSeason syncs every past meet on/after since in which the club
// participated. Every candidate document is fetched first; the matched
// ones then share one transaction, so a reconcile failure on the Nth
// meet rolls back every meet synced earlier in the run. Fetch failures
// for individual meets are skipped, not fatal. Zero arguments fall back
// to the configured home club and season start.
func (s *Service) SyncClubSeason(ctx context.Context, clubID int, since time.Time) ([]model.Sanction, error) {
	if clubID == 0 {
		clubID = s.homeClubID
	}
	if since.IsZero() {
		since = s.seasonStart
	}

	start := time.Now()
	meets, err := s.fetcher.PastMeets(ctx)
	if err != nil {
		s.log.Error(ctx, "past meets fetch failed", logger.Error(err))
		return nil, err
	}

	var candidates []usagym.Meet
	for _, meet := range meets {
		date, ok := normalize.ParseDate(meet.StartDate)
		if !ok {
			metrics.RecordRecordSkipped("meet", "bad_start_date")
			continue
		}
		if date.Before(since) {
			continue
		}
		candidates = append(candidates, meet)
	}
	s.log.Info(ctx, "checking meets for club participation",
		logger.Int("clubID", clubID),
		logger.Int("candidates", len(candidates)),
		logger.String("since", since.Format("2006-01-02")),
	)

	// Fetch and filter before the transaction opens. The reconcile pass
	// below holds the batch transaction for its whole run, so every key
	// lock must be taken up front: a lock acquired mid-transaction could
	// wait on a sync that is itself blocked on this transaction's
	// uncommitted rows.
	clubKey := strconv.Itoa(clubID)
	var matched []*usagym.SanctionDocument
	for _, meet := range candidates {
		metrics.RecordBatchCandidate()
		doc, err := s.fetcher.Sanction(ctx, meet.SanctionID)
		if err != nil {
			if fe, ok := usagym.IsFetchError(err); ok {
				s.log.Warn(ctx, "skipping meet after fetch failure",
					logger.Int("sanctionID", meet.SanctionID),
					logger.Int("status", fe.StatusCode),
					logger.Error(err),
				)
				continue
			}
			metrics.RecordSyncError()
			s.log.Error(ctx, "club season sync aborted on sanction fetch",
				logger.Int("sanctionID", meet.SanctionID), logger.Error(err))
			return nil, &SyncError{SanctionID: meet.SanctionID, Cause: err}
		}
		if _, ok := doc.Clubs[clubKey]; !ok {
			continue
		}
		metrics.RecordBatchMatched()
		matched = append(matched, doc)
	}

	// Ascending lock order keeps concurrent batches from deadlocking on
	// each other. Deduped: the listing can repeat a sanction, and the
	// key mutex is not reentrant.
	seen := make(map[int]struct{}, len(matched))
	lockIDs := make([]int, 0, len(matched))
	for _, doc := range matched {
		if _, ok := seen[doc.Sanction.SanctionID]; ok {
			continue
		}
		seen[doc.Sanction.SanctionID] = struct{}{}
		lockIDs = append(lockIDs, doc.Sanction.SanctionID)
	}
	sort.Ints(lockIDs)
	unlocks := make([]func(), 0, len(lockIDs))
	defer func() {
		for _, unlock := range unlocks {
			unlock()
		}
	}()
	for _, id := range lockIDs {
		unlocks = append(unlocks, s.syncLocks.lock(id))
	}

	var synced []int
	failedSanction := 0
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		for _, doc := range matched {
			if err := s.reconcileSanction(ctx, tx, doc); err != nil {
				failedSanction = doc.Sanction.SanctionID
				return err
			}
			synced = append(synced, doc.Sanction.SanctionID)
		}
		return nil
	})
	if err != nil {
		metrics.RecordSyncError()
		s.log.Error(ctx, "club season sync rolled back",
			logger.Int("clubID", clubID),
			logger.Int("syncedBeforeFailure", len(synced)),
			logger.Error(err),
		)
		return nil, &SyncError{SanctionID: failedSanction, Cause: err}
	}

	metrics.RecordSyncDuration("club_season", time.Since(start).Seconds())
	metrics.UpdateLastSyncUnix(time.Now().Unix())
	s.log.Info(ctx, "club season sync finished",
		logger.Int("clubID", clubID), logger.Int("synced", len(synced)))

	if len(synced) == 0 {
		return nil, nil
	}
	return s.store.SanctionsByIDs(ctx, synced)
}
