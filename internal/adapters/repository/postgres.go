package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

// querier is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx, so one statement set serves pooled and transactional calls.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements TxStore over a pgx connection pool. The pool
// is created once at process start and closed at shutdown; each call
// checks a connection out for its own duration.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
}

// NewPostgres connects a pool to url and verifies it with a ping.
func NewPostgres(ctx context.Context, url string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return &PostgresStore{pool: pool, q: pool}, nil
}

// EnsureSchema applies the embedded DDL. All statements are idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the pool. Safe to call once at shutdown.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InTx runs fn against a transaction-bound copy of the store.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	bound := &PostgresStore{pool: s.pool, q: tx}
	if err := fn(bound); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertSanction(ctx context.Context, m model.Sanction) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO sanctions (sanction_id, name, start_date, end_date, city, state, site_name,
		                       website, program, meet_status, has_results, address1, zip, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (sanction_id) DO UPDATE SET
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			meet_status = EXCLUDED.meet_status`,
		m.SanctionID, m.Name, m.StartDate, m.EndDate, m.City, m.State, m.SiteName,
		m.Website, string(m.Program), string(m.Status), m.HasResults, m.Address, m.Zip, m.LogoURL)
	if err != nil {
		return fmt.Errorf("upsert sanction %d: %w", m.SanctionID, err)
	}
	metrics.RecordStoreWrite("sanction")
	return nil
}

func (s *PostgresStore) UpsertClub(ctx context.Context, m model.Club) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO clubs (club_id, name, short_name, city, state, zip, website, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (club_id) DO NOTHING`,
		m.ClubID, m.Name, m.ShortName, m.City, m.State, m.Zip, m.Website, m.Email, m.Phone)
	if err != nil {
		return fmt.Errorf("upsert club %d: %w", m.ClubID, err)
	}
	metrics.RecordStoreWrite("club")
	return nil
}

func (s *PostgresStore) UpsertGymnast(ctx context.Context, m model.Gymnast) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO gymnasts (gymnast_id, club_id, first_name, last_name, gender)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (gymnast_id) DO NOTHING`,
		m.GymnastID, m.ClubID, m.FirstName, m.LastName, m.Gender)
	if err != nil {
		return fmt.Errorf("upsert gymnast %d: %w", m.GymnastID, err)
	}
	metrics.RecordStoreWrite("gymnast")
	return nil
}

func (s *PostgresStore) UpsertSession(ctx context.Context, m model.Session) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO sessions (session_id, sanction_id, name, session_date, program)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, sanction_id) DO NOTHING`,
		m.SessionID, m.SanctionID, m.Name, m.Date, string(m.Program))
	if err != nil {
		return fmt.Errorf("upsert session %d/%d: %w", m.SessionID, m.SanctionID, err)
	}
	metrics.RecordStoreWrite("session")
	return nil
}

func (s *PostgresStore) UpsertResultSet(ctx context.Context, m model.ResultSet) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO result_sets (result_set_id, session_id, sanction_id, level, division, official)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (result_set_id) DO NOTHING`,
		m.ResultSetID, m.SessionID, m.SanctionID, m.Level, m.Division, m.Official)
	if err != nil {
		return fmt.Errorf("upsert result set %d: %w", m.ResultSetID, err)
	}
	metrics.RecordStoreWrite("result_set")
	return nil
}

func (s *PostgresStore) UpsertParticipant(ctx context.Context, m model.Participant) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO sanction_gymnasts (sanction_id, gymnast_id, session_id, level, division, squad, club_id_for_meet)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0))
		ON CONFLICT (sanction_id, gymnast_id) DO UPDATE SET
			club_id_for_meet = EXCLUDED.club_id_for_meet`,
		m.SanctionID, m.GymnastID, m.SessionID, m.Level, m.Division, m.Squad, m.MeetClubID)
	if err != nil {
		return fmt.Errorf("upsert participant %d/%d: %w", m.SanctionID, m.GymnastID, err)
	}
	metrics.RecordStoreWrite("participant")
	return nil
}

func (s *PostgresStore) UpsertScore(ctx context.Context, m model.Score) (model.Score, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO scores (score_id, result_set_id, gymnast_id, event_id, final_score, rank, tie)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (score_id) DO UPDATE SET
			final_score = EXCLUDED.final_score,
			rank = EXCLUDED.rank
		RETURNING score_id, result_set_id, gymnast_id, event_id,
		          COALESCE(final_score, 0), COALESCE(rank, 0), tie`,
		m.ScoreID, m.ResultSetID, m.GymnastID, m.EventID, m.FinalScore, m.Rank, m.Tie)
	var out model.Score
	if err := row.Scan(&out.ScoreID, &out.ResultSetID, &out.GymnastID, &out.EventID,
		&out.FinalScore, &out.Rank, &out.Tie); err != nil {
		return model.Score{}, fmt.Errorf("upsert score %d: %w", m.ScoreID, err)
	}
	metrics.RecordStoreWrite("score")
	return out, nil
}

const sanctionColumns = `sanction_id, name, COALESCE(start_date, ''), COALESCE(end_date, ''),
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(site_name, ''), COALESCE(website, ''),
	COALESCE(program, ''), COALESCE(meet_status, ''), has_results,
	COALESCE(address1, ''), COALESCE(zip, ''), COALESCE(logo_url, '')`

func scanSanction(row pgx.Row) (model.Sanction, error) {
	var m model.Sanction
	var program, status string
	err := row.Scan(&m.SanctionID, &m.Name, &m.StartDate, &m.EndDate, &m.City, &m.State,
		&m.SiteName, &m.Website, &program, &status, &m.HasResults, &m.Address, &m.Zip, &m.LogoURL)
	if err != nil {
		return model.Sanction{}, err
	}
	m.Program = model.Program(program)
	m.Status = model.MeetStatus(status)
	return m, nil
}

func (s *PostgresStore) Sanction(ctx context.Context, sanctionID int) (model.Sanction, error) {
	m, err := scanSanction(s.q.QueryRow(ctx,
		`SELECT `+sanctionColumns+` FROM sanctions WHERE sanction_id = $1`, sanctionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Sanction{}, fmt.Errorf("sanction %d: %w", sanctionID, ErrNotFound)
	}
	if err != nil {
		return model.Sanction{}, fmt.Errorf("select sanction %d: %w", sanctionID, err)
	}
	return m, nil
}

func (s *PostgresStore) querySanctions(ctx context.Context, sql string, args ...any) ([]model.Sanction, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select sanctions: %w", err)
	}
	defer rows.Close()

	var out []model.Sanction
	for rows.Next() {
		m, err := scanSanction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sanction: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select sanctions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SanctionsByIDs(ctx context.Context, sanctionIDs []int) ([]model.Sanction, error) {
	if len(sanctionIDs) == 0 {
		return nil, nil
	}
	return s.querySanctions(ctx,
		`SELECT `+sanctionColumns+` FROM sanctions WHERE sanction_id = ANY($1) ORDER BY start_date DESC`,
		sanctionIDs)
}

func (s *PostgresStore) SanctionsByStatus(ctx context.Context, status model.MeetStatus) ([]model.Sanction, error) {
	return s.querySanctions(ctx,
		`SELECT `+sanctionColumns+` FROM sanctions WHERE ($1 = '' OR meet_status = $1) ORDER BY start_date DESC`,
		string(status))
}

func (s *PostgresStore) SanctionsByGymnast(ctx context.Context, gymnastID int) ([]model.Sanction, error) {
	return s.querySanctions(ctx, `
		SELECT s.sanction_id, s.name, COALESCE(s.start_date, ''), COALESCE(s.end_date, ''),
		       COALESCE(s.city, ''), COALESCE(s.state, ''), COALESCE(s.site_name, ''),
		       COALESCE(s.website, ''), COALESCE(s.program, ''), COALESCE(s.meet_status, ''),
		       s.has_results, COALESCE(s.address1, ''), COALESCE(s.zip, ''), COALESCE(s.logo_url, '')
		FROM sanctions s
		JOIN sanction_gymnasts sg ON s.sanction_id = sg.sanction_id
		WHERE sg.gymnast_id = $1
		ORDER BY s.start_date DESC`, gymnastID)
}

func (s *PostgresStore) SessionsBySanction(ctx context.Context, sanctionID int) ([]model.Session, error) {
	rows, err := s.q.Query(ctx, `
		SELECT session_id, sanction_id, COALESCE(name, ''), COALESCE(session_date, ''), COALESCE(program, '')
		FROM sessions WHERE sanction_id = $1 ORDER BY session_id`, sanctionID)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var m model.Session
		var program string
		if err := rows.Scan(&m.SessionID, &m.SanctionID, &m.Name, &m.Date, &program); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		m.Program = model.Program(program)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ResultSetsBySession(ctx context.Context, sessionID, sanctionID int) ([]model.ResultSet, error) {
	rows, err := s.q.Query(ctx, `
		SELECT result_set_id, session_id, sanction_id, COALESCE(level, ''), COALESCE(division, ''), official
		FROM result_sets WHERE session_id = $1 AND sanction_id = $2 ORDER BY result_set_id`,
		sessionID, sanctionID)
	if err != nil {
		return nil, fmt.Errorf("select result sets: %w", err)
	}
	defer rows.Close()

	var out []model.ResultSet
	for rows.Next() {
		var m model.ResultSet
		if err := rows.Scan(&m.ResultSetID, &m.SessionID, &m.SanctionID, &m.Level, &m.Division, &m.Official); err != nil {
			return nil, fmt.Errorf("scan result set: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ParticipantsBySanction(ctx context.Context, sanctionID int) ([]model.Gymnast, error) {
	rows, err := s.q.Query(ctx, `
		SELECT g.gymnast_id, g.club_id, g.first_name, g.last_name, COALESCE(g.gender, ''),
		       COALESCE(sg.club_id_for_meet, 0), COALESCE(sg.level, '')
		FROM gymnasts g
		JOIN sanction_gymnasts sg ON g.gymnast_id = sg.gymnast_id
		WHERE sg.sanction_id = $1
		ORDER BY g.last_name, g.first_name`, sanctionID)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()

	var out []model.Gymnast
	for rows.Next() {
		var m model.Gymnast
		if err := rows.Scan(&m.GymnastID, &m.ClubID, &m.FirstName, &m.LastName, &m.Gender,
			&m.MeetClubID, &m.Level); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Gymnast(ctx context.Context, gymnastID int) (model.Gymnast, error) {
	var m model.Gymnast
	err := s.q.QueryRow(ctx, `
		SELECT gymnast_id, club_id, first_name, last_name, COALESCE(gender, '')
		FROM gymnasts WHERE gymnast_id = $1`, gymnastID).
		Scan(&m.GymnastID, &m.ClubID, &m.FirstName, &m.LastName, &m.Gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Gymnast{}, fmt.Errorf("gymnast %d: %w", gymnastID, ErrNotFound)
	}
	if err != nil {
		return model.Gymnast{}, fmt.Errorf("select gymnast %d: %w", gymnastID, err)
	}
	return m, nil
}

func (s *PostgresStore) GymnastsByClub(ctx context.Context, clubID int) ([]model.Gymnast, error) {
	rows, err := s.q.Query(ctx, `
		SELECT g.gymnast_id, g.club_id, g.first_name, g.last_name, COALESCE(g.gender, ''),
		       COALESCE((SELECT sg.level
		                 FROM sanction_gymnasts sg
		                 JOIN sanctions s ON sg.sanction_id = s.sanction_id
		                 WHERE sg.gymnast_id = g.gymnast_id
		                 ORDER BY s.start_date DESC LIMIT 1), '')
		FROM gymnasts g
		WHERE g.club_id = $1
		ORDER BY g.last_name, g.first_name`, clubID)
	if err != nil {
		return nil, fmt.Errorf("select club roster: %w", err)
	}
	defer rows.Close()

	var out []model.Gymnast
	for rows.Next() {
		var m model.Gymnast
		if err := rows.Scan(&m.GymnastID, &m.ClubID, &m.FirstName, &m.LastName, &m.Gender, &m.Level); err != nil {
			return nil, fmt.Errorf("scan gymnast: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const scoreJoin = `
	FROM scores sc
	JOIN result_sets rs ON sc.result_set_id = rs.result_set_id
	JOIN sessions sess ON rs.session_id = sess.session_id AND rs.sanction_id = sess.sanction_id`

const scoreColumns = `sc.score_id, sc.result_set_id, sc.gymnast_id, sc.event_id,
	COALESCE(sc.final_score, 0), COALESCE(sc.rank, 0), sc.tie, rs.sanction_id, COALESCE(sess.program, '')`

func (s *PostgresStore) queryScores(ctx context.Context, sql string, args ...any) ([]model.Score, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select scores: %w", err)
	}
	defer rows.Close()

	var out []model.Score
	for rows.Next() {
		var m model.Score
		var program string
		if err := rows.Scan(&m.ScoreID, &m.ResultSetID, &m.GymnastID, &m.EventID,
			&m.FinalScore, &m.Rank, &m.Tie, &m.SanctionID, &program); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		m.Program = model.Program(program)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ScoresBySanction(ctx context.Context, sanctionID, gymnastID int) ([]model.Score, error) {
	sql := `SELECT ` + scoreColumns + scoreJoin + ` WHERE rs.sanction_id = $1`
	args := []any{sanctionID}
	if gymnastID != 0 {
		sql += ` AND sc.gymnast_id = $2`
		args = append(args, gymnastID)
	}
	sql += ` ORDER BY sc.gymnast_id, sc.event_id`
	return s.queryScores(ctx, sql, args...)
}

func (s *PostgresStore) ScoresByGymnast(ctx context.Context, gymnastID int, eventID string) ([]model.Score, error) {
	sql := `SELECT ` + scoreColumns + scoreJoin + ` WHERE sc.gymnast_id = $1`
	args := []any{gymnastID}
	if eventID != "" {
		sql += ` AND sc.event_id = $2`
		args = append(args, eventID)
	}
	sql += ` ORDER BY sess.session_date DESC, sc.event_id`
	return s.queryScores(ctx, sql, args...)
}

func (s *PostgresStore) ScoresByResultSet(ctx context.Context, resultSetID int) ([]model.Score, error) {
	return s.queryScores(ctx,
		`SELECT `+scoreColumns+scoreJoin+` WHERE sc.result_set_id = $1 ORDER BY sc.gymnast_id, sc.event_id`,
		resultSetID)
}

func (s *PostgresStore) Club(ctx context.Context, clubID int) (model.Club, error) {
	var m model.Club
	err := s.q.QueryRow(ctx, `
		SELECT club_id, name, COALESCE(short_name, ''), COALESCE(city, ''), COALESCE(state, ''),
		       COALESCE(zip, ''), COALESCE(website, ''), COALESCE(email, ''), COALESCE(phone, '')
		FROM clubs WHERE club_id = $1`, clubID).
		Scan(&m.ClubID, &m.Name, &m.ShortName, &m.City, &m.State, &m.Zip, &m.Website, &m.Email, &m.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Club{}, fmt.Errorf("club %d: %w", clubID, ErrNotFound)
	}
	if err != nil {
		return model.Club{}, fmt.Errorf("select club %d: %w", clubID, err)
	}
	return m, nil
}

func (s *PostgresStore) SearchGymnasts(ctx context.Context, term string, limit int) ([]model.Gymnast, error) {
	rows, err := s.q.Query(ctx, `
		SELECT gymnast_id, club_id, first_name, last_name, COALESCE(gender, '')
		FROM gymnasts
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name
		LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search gymnasts: %w", err)
	}
	defer rows.Close()

	var out []model.Gymnast
	for rows.Next() {
		var m model.Gymnast
		if err := rows.Scan(&m.GymnastID, &m.ClubID, &m.FirstName, &m.LastName, &m.Gender); err != nil {
			return nil, fmt.Errorf("scan gymnast: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SearchClubs(ctx context.Context, term string, limit int) ([]model.Club, error) {
	rows, err := s.q.Query(ctx, `
		SELECT club_id, name, COALESCE(short_name, ''), COALESCE(city, ''), COALESCE(state, ''),
		       COALESCE(zip, ''), COALESCE(website, ''), COALESCE(email, ''), COALESCE(phone, '')
		FROM clubs
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search clubs: %w", err)
	}
	defer rows.Close()

	var out []model.Club
	for rows.Next() {
		var m model.Club
		if err := rows.Scan(&m.ClubID, &m.Name, &m.ShortName, &m.City, &m.State, &m.Zip,
			&m.Website, &m.Email, &m.Phone); err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
