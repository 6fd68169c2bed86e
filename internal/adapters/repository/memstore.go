package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roundoff/gymstats/internal/domain/model"
)

type sessionKey struct {
	sessionID  int
	sanctionID int
}

type participantKey struct {
	sanctionID int
	gymnastID  int
}

// MemStore is an in-memory TxStore with the same upsert and rollback
// semantics as PostgresStore. It backs tests and local development; the
// transaction implementation runs writes against a copy and swaps state
// in only on commit, so a mid-transaction failure leaves nothing behind.
type MemStore struct {
	mu sync.RWMutex

	sanctions    map[int]model.Sanction
	clubs        map[int]model.Club
	gymnasts     map[int]model.Gymnast
	sessions     map[sessionKey]model.Session
	resultSets   map[int]model.ResultSet
	participants map[participantKey]model.Participant
	scores       map[int]model.Score

	// failOn maps an entity kind ("result_set", "participant", ...) to an
	// error returned by its next upsert. Used by tests to force rollback.
	failOn map[string]error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sanctions:    make(map[int]model.Sanction),
		clubs:        make(map[int]model.Club),
		gymnasts:     make(map[int]model.Gymnast),
		sessions:     make(map[sessionKey]model.Session),
		resultSets:   make(map[int]model.ResultSet),
		participants: make(map[participantKey]model.Participant),
		scores:       make(map[int]model.Score),
		failOn:       make(map[string]error),
	}
}

// FailOn makes the next upsert of the given entity kind return err,
// simulating an unexpected store failure mid-transaction.
func (s *MemStore) FailOn(kind string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[kind] = err
}

func (s *MemStore) takeFailure(kind string) error {
	if err, ok := s.failOn[kind]; ok {
		delete(s.failOn, kind)
		return err
	}
	return nil
}

func (s *MemStore) clone() *MemStore {
	c := NewMemStore()
	for k, v := range s.sanctions {
		c.sanctions[k] = v
	}
	for k, v := range s.clubs {
		c.clubs[k] = v
	}
	for k, v := range s.gymnasts {
		c.gymnasts[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.resultSets {
		c.resultSets[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = v
	}
	for k, v := range s.scores {
		c.scores[k] = v
	}
	c.failOn = s.failOn // shared so FailOn reaches transaction-bound copies
	return c
}

func (s *MemStore) adopt(c *MemStore) {
	s.sanctions = c.sanctions
	s.clubs = c.clubs
	s.gymnasts = c.gymnasts
	s.sessions = c.sessions
	s.resultSets = c.resultSets
	s.participants = c.participants
	s.scores = c.scores
}

// InTx runs fn against a copy of the state and commits it only when fn
// returns nil.
func (s *MemStore) InTx(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	bound := s.clone()
	s.mu.Unlock()

	if err := fn(bound); err != nil {
		return err
	}

	s.mu.Lock()
	s.adopt(bound)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) UpsertSanction(_ context.Context, m model.Sanction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("sanction"); err != nil {
		return err
	}
	if existing, ok := s.sanctions[m.SanctionID]; ok {
		existing.Name = m.Name
		existing.StartDate = m.StartDate
		existing.EndDate = m.EndDate
		existing.Status = m.Status
		s.sanctions[m.SanctionID] = existing
		return nil
	}
	s.sanctions[m.SanctionID] = m
	return nil
}

func (s *MemStore) UpsertClub(_ context.Context, m model.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("club"); err != nil {
		return err
	}
	if _, ok := s.clubs[m.ClubID]; !ok {
		s.clubs[m.ClubID] = m
	}
	return nil
}

func (s *MemStore) UpsertGymnast(_ context.Context, m model.Gymnast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("gymnast"); err != nil {
		return err
	}
	if _, ok := s.gymnasts[m.GymnastID]; !ok {
		s.gymnasts[m.GymnastID] = m
	}
	return nil
}

func (s *MemStore) UpsertSession(_ context.Context, m model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("session"); err != nil {
		return err
	}
	k := sessionKey{m.SessionID, m.SanctionID}
	if _, ok := s.sessions[k]; !ok {
		s.sessions[k] = m
	}
	return nil
}

func (s *MemStore) UpsertResultSet(_ context.Context, m model.ResultSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("result_set"); err != nil {
		return err
	}
	if _, ok := s.resultSets[m.ResultSetID]; !ok {
		s.resultSets[m.ResultSetID] = m
	}
	return nil
}

func (s *MemStore) UpsertParticipant(_ context.Context, m model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("participant"); err != nil {
		return err
	}
	k := participantKey{m.SanctionID, m.GymnastID}
	if existing, ok := s.participants[k]; ok {
		existing.MeetClubID = m.MeetClubID
		s.participants[k] = existing
		return nil
	}
	s.participants[k] = m
	return nil
}

func (s *MemStore) UpsertScore(_ context.Context, m model.Score) (model.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("score"); err != nil {
		return model.Score{}, err
	}
	if existing, ok := s.scores[m.ScoreID]; ok {
		existing.FinalScore = m.FinalScore
		existing.Rank = m.Rank
		s.scores[m.ScoreID] = existing
		return existing, nil
	}
	s.scores[m.ScoreID] = m
	return m, nil
}

func (s *MemStore) Sanction(_ context.Context, sanctionID int) (model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.sanctions[sanctionID]
	if !ok {
		return model.Sanction{}, fmt.Errorf("sanction %d: %w", sanctionID, ErrNotFound)
	}
	return m, nil
}

func (s *MemStore) SanctionsByIDs(_ context.Context, sanctionIDs []int) ([]model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Sanction
	for _, id := range sanctionIDs {
		if m, ok := s.sanctions[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemStore) SanctionsByStatus(_ context.Context, status model.MeetStatus) ([]model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Sanction
	for _, m := range s.sanctions {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	return out, nil
}

func (s *MemStore) SanctionsByGymnast(_ context.Context, gymnastID int) ([]model.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Sanction
	for k := range s.participants {
		if k.gymnastID == gymnastID {
			if m, ok := s.sanctions[k.sanctionID]; ok {
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	return out, nil
}

func (s *MemStore) SessionsBySanction(_ context.Context, sanctionID int) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Session
	for k, m := range s.sessions {
		if k.sanctionID == sanctionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

func (s *MemStore) ResultSetsBySession(_ context.Context, sessionID, sanctionID int) ([]model.ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ResultSet
	for _, m := range s.resultSets {
		if m.SessionID == sessionID && m.SanctionID == sanctionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultSetID < out[j].ResultSetID })
	return out, nil
}

func (s *MemStore) ParticipantsBySanction(_ context.Context, sanctionID int) ([]model.Gymnast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Gymnast
	for k, p := range s.participants {
		if k.sanctionID != sanctionID {
			continue
		}
		g, ok := s.gymnasts[k.gymnastID]
		if !ok {
			continue
		}
		g.MeetClubID = p.MeetClubID
		g.Level = p.Level
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GymnastID < out[j].GymnastID })
	return out, nil
}

func (s *MemStore) Gymnast(_ context.Context, gymnastID int) (model.Gymnast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.gymnasts[gymnastID]
	if !ok {
		return model.Gymnast{}, fmt.Errorf("gymnast %d: %w", gymnastID, ErrNotFound)
	}
	return m, nil
}

func (s *MemStore) GymnastsByClub(_ context.Context, clubID int) ([]model.Gymnast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Gymnast
	for _, g := range s.gymnasts {
		if g.ClubID != clubID {
			continue
		}
		// Most recent level across the gymnast's participant rows.
		latest := ""
		latestDate := ""
		for k, p := range s.participants {
			if k.gymnastID != g.GymnastID {
				continue
			}
			if sanction, ok := s.sanctions[k.sanctionID]; ok && sanction.StartDate >= latestDate {
				latestDate = sanction.StartDate
				latest = p.Level
			}
		}
		g.Level = latest
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *MemStore) scoreProjection(m model.Score) model.Score {
	if rs, ok := s.resultSets[m.ResultSetID]; ok {
		m.SanctionID = rs.SanctionID
		if sess, ok := s.sessions[sessionKey{rs.SessionID, rs.SanctionID}]; ok {
			m.Program = sess.Program
		}
	}
	return m
}

func (s *MemStore) ScoresBySanction(_ context.Context, sanctionID, gymnastID int) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Score
	for _, m := range s.scores {
		p := s.scoreProjection(m)
		if p.SanctionID != sanctionID {
			continue
		}
		if gymnastID != 0 && p.GymnastID != gymnastID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScoreID < out[j].ScoreID })
	return out, nil
}

func (s *MemStore) ScoresByGymnast(_ context.Context, gymnastID int, eventID string) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Score
	for _, m := range s.scores {
		if m.GymnastID != gymnastID {
			continue
		}
		if eventID != "" && m.EventID != eventID {
			continue
		}
		out = append(out, s.scoreProjection(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScoreID < out[j].ScoreID })
	return out, nil
}

func (s *MemStore) ScoresByResultSet(_ context.Context, resultSetID int) ([]model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Score
	for _, m := range s.scores {
		if m.ResultSetID == resultSetID {
			out = append(out, s.scoreProjection(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScoreID < out[j].ScoreID })
	return out, nil
}

func (s *MemStore) Club(_ context.Context, clubID int) (model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.clubs[clubID]
	if !ok {
		return model.Club{}, fmt.Errorf("club %d: %w", clubID, ErrNotFound)
	}
	return m, nil
}

func (s *MemStore) SearchGymnasts(_ context.Context, term string, limit int) ([]model.Gymnast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := strings.ToLower(term)
	var out []model.Gymnast
	for _, g := range s.gymnasts {
		if strings.Contains(strings.ToLower(g.FirstName), t) || strings.Contains(strings.ToLower(g.LastName), t) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GymnastID < out[j].GymnastID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) SearchClubs(_ context.Context, term string, limit int) ([]model.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := strings.ToLower(term)
	var out []model.Club
	for _, c := range s.clubs {
		if strings.Contains(strings.ToLower(c.Name), t) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
