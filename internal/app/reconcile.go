package app

import (
	"context"
	"strconv"

	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
	"github.com/roundoff/gymstats/pkg/logger"
	"github.com/roundoff/gymstats/pkg/metrics"
)

// reconcileSanction writes one sanction document into tx. Processing
// order matters: later steps validate references against earlier ones
// (clubs before gymnasts, gymnasts before participant links).
//
// Data-quality problems (missing ids, non-numeric session references)
// skip the affected record with a warning and never fail the sync. Any
// store error aborts immediately, and the caller's transaction rolls
// back everything written here.
func (s *Service) reconcileSanction(ctx context.Context, tx repository.Store, doc *usagym.SanctionDocument) error {
	h := doc.Sanction

	status := normalize.MeetStatus(h.MeetStatus)
	if status == model.StatusUnknown && h.MeetStatus != "" {
		s.log.Warn(ctx, "unknown meet status from upstream",
			logger.Int("sanctionID", h.SanctionID),
			logger.String("meetStatus", h.MeetStatus),
		)
		metrics.RecordRecordSkipped("meet_status", "unknown_value")
	}

	err := tx.UpsertSanction(ctx, model.Sanction{
		SanctionID: h.SanctionID,
		Name:       h.Name,
		StartDate:  h.StartDate,
		EndDate:    h.EndDate,
		City:       h.City,
		State:      h.State,
		SiteName:   h.SiteName,
		Website:    h.Website,
		Program:    normalize.ProgramFromID(h.ProgramID),
		Status:     status,
		HasResults: h.HasResults,
		Address:    h.Address1,
		Zip:        h.Zip,
		LogoURL:    h.LogoURL,
	})
	if err != nil {
		return err
	}

	knownClubs := make(map[int]struct{}, len(doc.Clubs))
	for _, club := range doc.Clubs {
		err := tx.UpsertClub(ctx, model.Club{
			ClubID:    club.ClubID,
			Name:      club.Name,
			ShortName: club.ShortName,
			City:      club.City,
			State:     club.State,
			Zip:       club.Zip,
			Website:   club.Website,
			Email:     club.EmailAddress,
			Phone:     strconv.FormatInt(club.Phone, 10),
		})
		if err != nil {
			return err
		}
		knownClubs[club.ClubID] = struct{}{}
	}

	// Gymnasts accepted in this pass. Participant links for anyone else
	// are dropped in the final step, even if upstream includes them.
	accepted := make(map[int]struct{}, len(doc.People))
	for _, person := range doc.People {
		if person.PersonID == 0 || person.ClubID == 0 {
			s.log.Warn(ctx, "skipping gymnast with missing data",
				logger.Int("personID", person.PersonID),
				logger.String("firstName", person.FirstName),
				logger.String("lastName", person.LastName),
			)
			metrics.RecordRecordSkipped("gymnast", "missing_id_or_club")
			continue
		}
		if _, ok := knownClubs[person.ClubID]; !ok {
			// The people table can reference clubs absent from the club
			// table; insert a placeholder so the club FK holds.
			err := tx.UpsertClub(ctx, model.Club{
				ClubID: person.ClubID,
				Name:   model.PlaceholderClubName,
			})
			if err != nil {
				return err
			}
			knownClubs[person.ClubID] = struct{}{}
		}
		err := tx.UpsertGymnast(ctx, model.Gymnast{
			GymnastID: person.PersonID,
			ClubID:    person.ClubID,
			FirstName: person.FirstName,
			LastName:  person.LastName,
			Gender:    person.Gender,
		})
		if err != nil {
			return err
		}
		accepted[person.PersonID] = struct{}{}
	}

	for _, session := range doc.Sessions {
		sessionID, ok := normalize.ParseInt(session.SessionID)
		if !ok {
			s.log.Warn(ctx, "skipping session with non-numeric id",
				logger.String("sessionID", session.SessionID),
				logger.Int("sanctionID", h.SanctionID),
			)
			metrics.RecordRecordSkipped("session", "bad_session_id")
			continue
		}
		err := tx.UpsertSession(ctx, model.Session{
			SessionID:  sessionID,
			SanctionID: session.SanctionID,
			Name:       session.Name,
			Date:       session.Date,
			Program:    normalize.ProgramFromName(session.Program),
		})
		if err != nil {
			return err
		}
	}

	for _, rs := range doc.ResultSets {
		sessionID, ok := normalize.ParseInt(rs.SessionID)
		if !ok {
			s.log.Warn(ctx, "skipping result set with non-numeric session id",
				logger.String("sessionID", rs.SessionID),
				logger.Int("resultSetID", rs.ResultSetID),
			)
			metrics.RecordRecordSkipped("result_set", "bad_session_id")
			continue
		}
		err := tx.UpsertResultSet(ctx, model.ResultSet{
			ResultSetID: rs.ResultSetID,
			SessionID:   sessionID,
			SanctionID:  rs.SanctionID,
			Level:       rs.Level,
			Division:    rs.Division,
			Official:    rs.Official != 0,
		})
		if err != nil {
			return err
		}
	}

	for _, sp := range doc.SanctionPeople {
		sessionID, ok := normalize.ParseInt(sp.SessionID)
		if !ok {
			s.log.Warn(ctx, "skipping participant link with non-numeric session id",
				logger.String("sessionID", sp.SessionID),
				logger.Int("personID", sp.PersonID),
			)
			metrics.RecordRecordSkipped("participant", "bad_session_id")
			continue
		}
		if _, ok := accepted[sp.PersonID]; !ok {
			s.log.Warn(ctx, "skipping participant link for gymnast not in people table",
				logger.Int("personID", sp.PersonID),
				logger.Int("sanctionID", sp.SanctionID),
			)
			metrics.RecordRecordSkipped("participant", "gymnast_not_accepted")
			continue
		}
		if _, ok := knownClubs[sp.ClubID]; !ok && sp.ClubID != 0 {
			// The meet-time club can differ from every club the document
			// lists; insert a placeholder so the reference resolves.
			err := tx.UpsertClub(ctx, model.Club{
				ClubID: sp.ClubID,
				Name:   model.PlaceholderClubName,
			})
			if err != nil {
				return err
			}
			knownClubs[sp.ClubID] = struct{}{}
		}
		err := tx.UpsertParticipant(ctx, model.Participant{
			SanctionID: sp.SanctionID,
			GymnastID:  sp.PersonID,
			SessionID:  sessionID,
			Level:      sp.Level,
			Division:   sp.Division,
			Squad:      sp.Squad,
			MeetClubID: sp.ClubID,
		})
		if err != nil {
			return err
		}
	}

	s.log.Info(ctx, "reconciled sanction",
		logger.Int("sanctionID", h.SanctionID),
		logger.Int("clubs", len(doc.Clubs)),
		logger.Int("gymnasts", len(accepted)),
		logger.Int("sessions", len(doc.Sessions)),
		logger.Int("resultSets", len(doc.ResultSets)),
	)
	return nil
}
