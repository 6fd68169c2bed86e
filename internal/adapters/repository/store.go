// Package repository defines the relational store interface used by sync
// and read projections, and its Postgres implementation.
package repository

import (
	"context"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// Store provides upserts and read projections over the relational state.
// All writes are idempotent upserts keyed by upstream identifiers; no
// operation ever deletes a row.
type Store interface {
	// UpsertSanction inserts the sanction or, on conflict, refreshes only
	// name, dates and status. Other fields keep their first-synced value.
	UpsertSanction(ctx context.Context, s model.Sanction) error

	// UpsertClub inserts the club and ignores conflicts; club core data
	// is immutable once first seen.
	UpsertClub(ctx context.Context, c model.Club) error

	// UpsertGymnast inserts the gymnast and ignores conflicts.
	UpsertGymnast(ctx context.Context, g model.Gymnast) error

	// UpsertSession inserts keyed by (session id, sanction id), ignoring
	// conflicts.
	UpsertSession(ctx context.Context, s model.Session) error

	// UpsertResultSet inserts keyed by result-set id, ignoring conflicts.
	UpsertResultSet(ctx context.Context, rs model.ResultSet) error

	// UpsertParticipant inserts keyed by (sanction id, gymnast id) or, on
	// conflict, refreshes the meet-time club reference.
	UpsertParticipant(ctx context.Context, p model.Participant) error

	// UpsertScore inserts keyed by score id or, on conflict, refreshes
	// final score and rank. Returns the persisted row.
	UpsertScore(ctx context.Context, sc model.Score) (model.Score, error)

	// Read projections. Lookups by primary key return ErrNotFound for
	// unknown ids.
	Sanction(ctx context.Context, sanctionID int) (model.Sanction, error)
	SanctionsByIDs(ctx context.Context, sanctionIDs []int) ([]model.Sanction, error)
	// SanctionsByStatus lists sanctions with the given status; the empty
	// status matches every row.
	SanctionsByStatus(ctx context.Context, status model.MeetStatus) ([]model.Sanction, error)
	SessionsBySanction(ctx context.Context, sanctionID int) ([]model.Session, error)
	ResultSetsBySession(ctx context.Context, sessionID, sanctionID int) ([]model.ResultSet, error)

	// ParticipantsBySanction returns the gymnasts entered in a sanction
	// with MeetClubID set to the club they represented there.
	ParticipantsBySanction(ctx context.Context, sanctionID int) ([]model.Gymnast, error)

	Gymnast(ctx context.Context, gymnastID int) (model.Gymnast, error)
	// GymnastsByClub returns a club roster with each gymnast's most
	// recent competition level filled in.
	GymnastsByClub(ctx context.Context, clubID int) ([]model.Gymnast, error)
	SanctionsByGymnast(ctx context.Context, gymnastID int) ([]model.Sanction, error)

	// ScoresBySanction returns scores for one sanction with session
	// program attached; gymnastID zero means all gymnasts.
	ScoresBySanction(ctx context.Context, sanctionID, gymnastID int) ([]model.Score, error)
	// ScoresByGymnast returns a gymnast's scores; eventID empty means all
	// events.
	ScoresByGymnast(ctx context.Context, gymnastID int, eventID string) ([]model.Score, error)
	ScoresByResultSet(ctx context.Context, resultSetID int) ([]model.Score, error)

	Club(ctx context.Context, clubID int) (model.Club, error)
	SearchGymnasts(ctx context.Context, term string, limit int) ([]model.Gymnast, error)
	SearchClubs(ctx context.Context, term string, limit int) ([]model.Club, error)
}

// TxStore is a Store that can scope a group of writes to one
// transaction.
type TxStore interface {
	Store

	// InTx runs fn against a transaction-bound Store. fn returning nil
	// commits; any error rolls back every write made through the bound
	// store and is returned unchanged.
	InTx(ctx context.Context, fn func(Store) error) error
}
