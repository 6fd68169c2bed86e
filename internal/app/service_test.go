package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	"github.com/roundoff/gymstats/internal/app"
	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubFetcher serves canned documents in place of the federation API.
type stubFetcher struct {
	sanctions    map[int]*usagym.SanctionDocument
	sanctionErrs map[int]error
	scores       map[int]*usagym.ScoresDocument
	scoresErr    error
	meets        []usagym.Meet
	meetsErr     error
	fetched      []int
	events       *[]string
}

func (f *stubFetcher) Sanction(_ context.Context, sanctionID int) (*usagym.SanctionDocument, error) {
	f.fetched = append(f.fetched, sanctionID)
	if f.events != nil {
		*f.events = append(*f.events, "fetch")
	}
	if err, ok := f.sanctionErrs[sanctionID]; ok {
		return nil, err
	}
	doc, ok := f.sanctions[sanctionID]
	if !ok {
		return nil, &usagym.FetchError{Resource: "sanction", ID: sanctionID, StatusCode: 404}
	}
	return doc, nil
}

func (f *stubFetcher) Scores(_ context.Context, resultSetID int) (*usagym.ScoresDocument, error) {
	if f.scoresErr != nil {
		return nil, f.scoresErr
	}
	doc, ok := f.scores[resultSetID]
	if !ok {
		return nil, &usagym.FetchError{Resource: "scores", ID: resultSetID, StatusCode: 404}
	}
	return doc, nil
}

func (f *stubFetcher) PastMeets(_ context.Context) ([]usagym.Meet, error) {
	if f.meetsErr != nil {
		return nil, f.meetsErr
	}
	return f.meets, nil
}

// winterClassic builds a complete detail document: two clubs, two
// gymnasts, one women's session with one result set, and participant
// links for both gymnasts.
func winterClassic() *usagym.SanctionDocument {
	return &usagym.SanctionDocument{
		Sanction: usagym.SanctionHeader{
			SanctionID: 561234,
			Name:       "Winter Classic",
			StartDate:  "2023-01-14",
			EndDate:    "2023-01-15",
			City:       "Reston",
			State:      "VA",
			ProgramID:  1,
			MeetStatus: "Complete",
			HasResults: true,
		},
		Clubs: map[string]usagym.Club{
			"24029": {ClubID: 24029, Name: "Sterling Gymnastics", State: "VA"},
			"30500": {ClubID: 30500, Name: "Capital Twisters", State: "MD"},
		},
		People: map[string]usagym.Person{
			"900001": {PersonID: 900001, ClubID: 24029, FirstName: "Ada", LastName: "Austin"},
			"900002": {PersonID: 900002, ClubID: 30500, FirstName: "Bea", LastName: "Brook"},
		},
		Sessions: []usagym.Session{
			{SessionID: "1", SanctionID: 561234, Name: "Session 1", Date: "2023-01-14", Program: "Women"},
		},
		ResultSets: []usagym.ResultSet{
			{ResultSetID: 7001, SessionID: "1", SanctionID: 561234, Level: "7", Division: "Junior A", Official: 1},
		},
		SanctionPeople: map[string]usagym.SanctionPerson{
			"1": {SanctionID: 561234, PersonID: 900001, ClubID: 24029, SessionID: "1", Level: "7"},
			"2": {SanctionID: 561234, PersonID: 900002, ClubID: 30500, SessionID: "1", Level: "7"},
		},
	}
}

func TestService_SyncSanction(t *testing.T) {
	Convey("Given a sanction document upstream", t, func() {
		store := repository.NewMemStore()
		fetcher := &stubFetcher{sanctions: map[int]*usagym.SanctionDocument{561234: winterClassic()}}
		svc := app.New(store, fetcher)
		ctx := context.Background()

		Convey("When syncing the sanction", func() {
			sanction, err := svc.SyncSanction(ctx, 561234)

			Convey("Then the sanction row is persisted and returned", func() {
				So(err, ShouldBeNil)
				So(sanction.SanctionID, ShouldEqual, 561234)
				So(sanction.Name, ShouldEqual, "Winter Classic")
				So(sanction.Program, ShouldEqual, model.ProgramWomens)
				So(sanction.Status, ShouldEqual, model.StatusComplete)
			})

			Convey("Then clubs, gymnasts, sessions and links land too", func() {
				So(err, ShouldBeNil)

				club, err := svc.Club(ctx, 24029)
				So(err, ShouldBeNil)
				So(club.Name, ShouldEqual, "Sterling Gymnastics")

				sessions, err := svc.Sessions(ctx, 561234)
				So(err, ShouldBeNil)
				So(sessions, ShouldHaveLength, 1)
				So(sessions[0].Program, ShouldEqual, model.ProgramWomens)

				sets, err := svc.ResultSets(ctx, 1, 561234)
				So(err, ShouldBeNil)
				So(sets, ShouldHaveLength, 1)
				So(sets[0].Official, ShouldBeTrue)

				participants, err := svc.Participants(ctx, 561234)
				So(err, ShouldBeNil)
				So(participants, ShouldHaveLength, 2)
				So(participants[0].MeetClubID, ShouldEqual, 24029)
			})
		})

		Convey("When syncing the same sanction twice", func() {
			_, err := svc.SyncSanction(ctx, 561234)
			So(err, ShouldBeNil)

			// Upstream renames the meet and moves a gymnast to another club
			// for the meet.
			updated := winterClassic()
			updated.Sanction.Name = "Winter Classic (rescheduled)"
			updated.Sanction.City = "Richmond"
			link := updated.SanctionPeople["1"]
			link.ClubID = 30500
			updated.SanctionPeople["1"] = link
			fetcher.sanctions[561234] = updated

			sanction, err := svc.SyncSanction(ctx, 561234)

			Convey("Then mutable fields refresh and immutable ones hold", func() {
				So(err, ShouldBeNil)
				So(sanction.Name, ShouldEqual, "Winter Classic (rescheduled)")
				So(sanction.City, ShouldEqual, "Reston")
			})

			Convey("Then the participant's meet club refreshes", func() {
				So(err, ShouldBeNil)
				participants, err := svc.Participants(ctx, 561234)
				So(err, ShouldBeNil)
				So(participants[0].GymnastID, ShouldEqual, 900001)
				So(participants[0].MeetClubID, ShouldEqual, 30500)
			})

			Convey("Then no duplicate rows accumulate", func() {
				So(err, ShouldBeNil)
				participants, err := svc.Participants(ctx, 561234)
				So(err, ShouldBeNil)
				So(participants, ShouldHaveLength, 2)
				sessions, err := svc.Sessions(ctx, 561234)
				So(err, ShouldBeNil)
				So(sessions, ShouldHaveLength, 1)
			})
		})

		Convey("When the upstream fetch fails", func() {
			fetcher.sanctionErrs = map[int]error{561234: &usagym.FetchError{Resource: "sanction", ID: 561234, StatusCode: 502}}
			_, err := svc.SyncSanction(ctx, 561234)

			Convey("Then the typed fetch error passes through untouched", func() {
				fe, ok := usagym.IsFetchError(err)
				So(ok, ShouldBeTrue)
				So(fe.StatusCode, ShouldEqual, 502)
			})
		})
	})
}

func TestService_SyncSanction_SkipRules(t *testing.T) {
	Convey("Given a document with data-quality problems", t, func() {
		doc := winterClassic()
		// A person with no club id, and their participant link.
		doc.People["900003"] = usagym.Person{PersonID: 900003, ClubID: 0, FirstName: "Cy", LastName: "Crane"}
		doc.SanctionPeople["3"] = usagym.SanctionPerson{SanctionID: 561234, PersonID: 900003, SessionID: "1"}
		// A person referencing a club missing from the club table.
		doc.People["900004"] = usagym.Person{PersonID: 900004, ClubID: 77777, FirstName: "Dot", LastName: "Drew"}
		doc.SanctionPeople["4"] = usagym.SanctionPerson{SanctionID: 561234, PersonID: 900004, ClubID: 77777, SessionID: "1"}
		// A participant link for someone absent from the people table.
		doc.SanctionPeople["5"] = usagym.SanctionPerson{SanctionID: 561234, PersonID: 999999, ClubID: 24029, SessionID: "1"}
		// A participant link with a non-numeric session id.
		doc.SanctionPeople["6"] = usagym.SanctionPerson{SanctionID: 561234, PersonID: 900002, ClubID: 30500, SessionID: "finals"}
		// A person whose home club is listed, competing for a meet-time
		// club nobody else references.
		doc.People["900005"] = usagym.Person{PersonID: 900005, ClubID: 24029, FirstName: "Eve", LastName: "Eads"}
		doc.SanctionPeople["7"] = usagym.SanctionPerson{SanctionID: 561234, PersonID: 900005, ClubID: 88888, SessionID: "1"}
		// A session and a result set with non-numeric session ids.
		doc.Sessions = append(doc.Sessions, usagym.Session{SessionID: "TBD", SanctionID: 561234, Name: "Session ?"})
		doc.ResultSets = append(doc.ResultSets, usagym.ResultSet{ResultSetID: 7002, SessionID: "TBD", SanctionID: 561234})

		store := repository.NewMemStore()
		fetcher := &stubFetcher{sanctions: map[int]*usagym.SanctionDocument{561234: doc}}
		svc := app.New(store, fetcher)
		ctx := context.Background()

		Convey("When syncing the sanction", func() {
			_, err := svc.SyncSanction(ctx, 561234)
			So(err, ShouldBeNil)

			Convey("Then the gymnast without a club is excluded, link and all", func() {
				_, err := svc.Gymnast(ctx, 900003)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				participants, err := svc.Participants(ctx, 561234)
				So(err, ShouldBeNil)
				for _, p := range participants {
					So(p.GymnastID, ShouldNotEqual, 900003)
					So(p.GymnastID, ShouldNotEqual, 999999)
				}

				Convey("While every valid link still lands", func() {
					So(participants, ShouldHaveLength, 4)
				})
			})

			Convey("Then the unknown club reference gets a placeholder row", func() {
				club, err := svc.Club(ctx, 77777)
				So(err, ShouldBeNil)
				So(club.Name, ShouldEqual, model.PlaceholderClubName)
				g, err := svc.Gymnast(ctx, 900004)
				So(err, ShouldBeNil)
				So(g.ClubID, ShouldEqual, 77777)
			})

			Convey("Then the link-only meet club gets a placeholder row too", func() {
				club, err := svc.Club(ctx, 88888)
				So(err, ShouldBeNil)
				So(club.Name, ShouldEqual, model.PlaceholderClubName)
				participants, err := svc.Participants(ctx, 561234)
				So(err, ShouldBeNil)
				var eve *model.Gymnast
				for i := range participants {
					if participants[i].GymnastID == 900005 {
						eve = &participants[i]
					}
				}
				So(eve, ShouldNotBeNil)
				So(eve.MeetClubID, ShouldEqual, 88888)
			})

			Convey("Then non-numeric session ids skip only the affected rows", func() {
				sessions, err := svc.Sessions(ctx, 561234)
				So(err, ShouldBeNil)
				So(sessions, ShouldHaveLength, 1)
				So(sessions[0].SessionID, ShouldEqual, 1)
				sets, err := svc.ResultSets(ctx, 1, 561234)
				So(err, ShouldBeNil)
				So(sets, ShouldHaveLength, 1)
				So(sets[0].ResultSetID, ShouldEqual, 7001)
			})
		})
	})

	Convey("Given a document with an unrecognized meet status", t, func() {
		doc := winterClassic()
		doc.Sanction.MeetStatus = "Postponed???"
		store := repository.NewMemStore()
		fetcher := &stubFetcher{sanctions: map[int]*usagym.SanctionDocument{561234: doc}}
		svc := app.New(store, fetcher)

		Convey("When syncing, the sanction lands with the zero status", func() {
			sanction, err := svc.SyncSanction(context.Background(), 561234)
			So(err, ShouldBeNil)
			So(sanction.Status, ShouldEqual, model.StatusUnknown)
		})
	})
}

func TestService_SyncSanction_Rollback(t *testing.T) {
	Convey("Given a store that fails partway through the write sequence", t, func() {
		store := repository.NewMemStore()
		fetcher := &stubFetcher{sanctions: map[int]*usagym.SanctionDocument{561234: winterClassic()}}
		svc := app.New(store, fetcher)
		ctx := context.Background()

		store.FailOn("result_set", errors.New("connection reset"))

		Convey("When the sync fails", func() {
			_, err := svc.SyncSanction(ctx, 561234)

			Convey("Then a sync error names the sanction", func() {
				var syncErr *app.SyncError
				So(errors.As(err, &syncErr), ShouldBeTrue)
				So(syncErr.SanctionID, ShouldEqual, 561234)
			})

			Convey("Then nothing written before the failure survives", func() {
				_, err := svc.Sanction(ctx, 561234)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = svc.Club(ctx, 24029)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = svc.Gymnast(ctx, 900001)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And a retry after the fault clears succeeds cleanly", func() {
				sanction, err := svc.SyncSanction(ctx, 561234)
				So(err, ShouldBeNil)
				So(sanction.Name, ShouldEqual, "Winter Classic")
			})
		})
	})
}

func TestService_SyncScores(t *testing.T) {
	Convey("Given a synced sanction and a score document upstream", t, func() {
		store := repository.NewMemStore()
		fetcher := &stubFetcher{
			sanctions: map[int]*usagym.SanctionDocument{561234: winterClassic()},
			scores: map[int]*usagym.ScoresDocument{
				7001: {Scores: []usagym.Score{
					{ScoreID: 50001, ResultSetID: 7001, PersonID: 900001, EventID: "1", FinalScore: "9.525", Rank: 1},
					{ScoreID: 50002, ResultSetID: 7001, PersonID: 900002, EventID: "1", FinalScore: "9.200", Rank: 2, Tie: 0},
					{ScoreID: 50003, ResultSetID: 7001, PersonID: 900001, EventID: "aa", FinalScore: "37.800", Rank: 1},
					{ScoreID: 50004, ResultSetID: 7001, PersonID: 900002, EventID: "4", FinalScore: "DNS"},
				}},
			},
		}
		svc := app.New(store, fetcher)
		ctx := context.Background()
		_, err := svc.SyncSanction(ctx, 561234)
		So(err, ShouldBeNil)

		Convey("When syncing the result set's scores", func() {
			scores, err := svc.SyncScores(ctx, 7001)

			Convey("Then every row persists with parsed values", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 4)
				So(scores[0].FinalScore, ShouldAlmostEqual, 9.525)
				So(scores[0].Rank, ShouldEqual, 1)
			})

			Convey("Then a non-numeric score lands as zero", func() {
				So(err, ShouldBeNil)
				So(scores[3].FinalScore, ShouldEqual, 0)
			})

			Convey("Then event names resolve through the session's program", func() {
				So(err, ShouldBeNil)
				So(scores[0].EventName, ShouldEqual, "Vault")
				So(scores[2].EventName, ShouldEqual, "All-Around")
				So(scores[3].EventName, ShouldEqual, "Floor Exercise")
			})
		})

		Convey("When re-syncing after upstream corrects a score", func() {
			_, err := svc.SyncScores(ctx, 7001)
			So(err, ShouldBeNil)

			fetcher.scores[7001].Scores[0].FinalScore = "9.650"
			scores, err := svc.SyncScores(ctx, 7001)

			Convey("Then the final score refreshes without duplicating rows", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 4)
				So(scores[0].FinalScore, ShouldAlmostEqual, 9.650)
			})
		})

		Convey("When the upstream has no scores for the result set", func() {
			fetcher.scores[7002] = &usagym.ScoresDocument{}
			_, err := svc.SyncScores(ctx, 7002)

			Convey("Then the empty feed surfaces as a sentinel", func() {
				So(errors.Is(err, app.ErrNoScores), ShouldBeTrue)
			})
		})
	})

	Convey("Given scores for a result set whose sanction was never synced", t, func() {
		store := repository.NewMemStore()
		fetcher := &stubFetcher{
			scores: map[int]*usagym.ScoresDocument{
				8001: {Scores: []usagym.Score{
					{ScoreID: 60001, ResultSetID: 8001, PersonID: 900001, EventID: "1", FinalScore: "9.100", Rank: 1},
					{ScoreID: 60002, ResultSetID: 8001, PersonID: 900002, EventID: "aa", FinalScore: "36.500", Rank: 2},
				}},
			},
		}
		svc := app.New(store, fetcher)

		Convey("When syncing the result set's scores", func() {
			scores, err := svc.SyncScores(context.Background(), 8001)

			Convey("Then the persisted rows come back, raw event codes intact", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 2)
				So(scores[0].FinalScore, ShouldAlmostEqual, 9.1)
				So(scores[0].EventName, ShouldEqual, "1")
				So(scores[1].EventName, ShouldEqual, "aa")
			})
		})
	})
}

// txMarkerStore wraps a MemStore to record when a transaction opens
// relative to other recorded events.
type txMarkerStore struct {
	*repository.MemStore
	events *[]string
}

func (s *txMarkerStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	*s.events = append(*s.events, "tx")
	return s.MemStore.InTx(ctx, fn)
}

func TestService_SyncClubSeason(t *testing.T) {
	Convey("Given a season of past meets", t, func() {
		// Meet 561234: club competes. Meet 561300: club absent.
		// Meet 561400: club competes. Meet 500000: before the season.
		home := winterClassic()

		away := winterClassic()
		away.Sanction.SanctionID = 561300
		away.Sanction.Name = "Out of Town Invitational"
		delete(away.Clubs, "24029")
		delete(away.People, "900001")
		delete(away.SanctionPeople, "1")

		spring := winterClassic()
		spring.Sanction.SanctionID = 561400
		spring.Sanction.Name = "Spring Cup"
		spring.Sanction.StartDate = "2023-04-01"

		store := repository.NewMemStore()
		fetcher := &stubFetcher{
			sanctions: map[int]*usagym.SanctionDocument{
				561234: home,
				561300: away,
				561400: spring,
			},
			meets: []usagym.Meet{
				{SanctionID: 500000, Name: "Last Season Open", StartDate: "2022-03-05"},
				{SanctionID: 561234, Name: "Winter Classic", StartDate: "2023-01-14"},
				{SanctionID: 561300, Name: "Out of Town Invitational", StartDate: "2023-02-11"},
				{SanctionID: 561400, Name: "Spring Cup", StartDate: "2023-04-01"},
				{SanctionID: 561500, Name: "Unreachable Meet", StartDate: "2023-05-01"},
			},
		}
		svc := app.New(store, fetcher, app.WithHomeClub(24029))
		ctx := context.Background()

		Convey("When syncing the club's season", func() {
			synced, err := svc.SyncClubSeason(ctx, 0, time.Time{})

			Convey("Then only meets the club attended are synced", func() {
				So(err, ShouldBeNil)
				So(synced, ShouldHaveLength, 2)
				ids := []int{synced[0].SanctionID, synced[1].SanctionID}
				So(ids, ShouldContain, 561234)
				So(ids, ShouldContain, 561400)
			})

			Convey("Then the pre-season meet was never fetched", func() {
				So(err, ShouldBeNil)
				So(fetcher.fetched, ShouldNotContain, 500000)
			})

			Convey("Then the unreachable meet was skipped, not fatal", func() {
				So(err, ShouldBeNil)
				So(fetcher.fetched, ShouldContain, 561500)
				_, lookupErr := svc.Sanction(ctx, 561500)
				So(errors.Is(lookupErr, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the skipped meet's data is absent", func() {
				So(err, ShouldBeNil)
				_, lookupErr := svc.Sanction(ctx, 561300)
				So(errors.Is(lookupErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a reconcile fails on a later meet in the batch", func() {
			// Strip result sets from the first matched meet so the armed
			// single-shot failure fires during the SECOND matched meet,
			// after the first reconciled completely.
			home.ResultSets = nil
			store.FailOn("result_set", errors.New("disk full"))

			synced, err := svc.SyncClubSeason(ctx, 0, time.Time{})

			Convey("Then the whole batch rolls back, earlier meets included", func() {
				So(synced, ShouldBeNil)
				var syncErr *app.SyncError
				So(errors.As(err, &syncErr), ShouldBeTrue)
				So(syncErr.SanctionID, ShouldEqual, 561400)
				_, lookupErr := svc.Sanction(ctx, 561234)
				So(errors.Is(lookupErr, repository.ErrNotFound), ShouldBeTrue)
				_, lookupErr = svc.Sanction(ctx, 561400)
				So(errors.Is(lookupErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the past-meets listing itself fails", func() {
			fetcher.meetsErr = &usagym.FetchError{Resource: "meets", StatusCode: 503}
			_, err := svc.SyncClubSeason(ctx, 0, time.Time{})

			Convey("Then the fetch error passes through", func() {
				_, ok := usagym.IsFetchError(err)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When an explicit since date narrows the window", func() {
			synced, err := svc.SyncClubSeason(ctx, 24029, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC))

			Convey("Then only later meets are considered", func() {
				So(err, ShouldBeNil)
				So(synced, ShouldHaveLength, 1)
				So(synced[0].SanctionID, ShouldEqual, 561400)
				So(fetcher.fetched, ShouldNotContain, 561234)
			})
		})
	})

	Convey("Given a store that records transaction boundaries", t, func() {
		var events []string
		spring := winterClassic()
		spring.Sanction.SanctionID = 561400
		spring.Sanction.Name = "Spring Cup"

		store := &txMarkerStore{MemStore: repository.NewMemStore(), events: &events}
		fetcher := &stubFetcher{
			sanctions: map[int]*usagym.SanctionDocument{
				561234: winterClassic(),
				561400: spring,
			},
			meets: []usagym.Meet{
				{SanctionID: 561234, Name: "Winter Classic", StartDate: "2023-01-14"},
				{SanctionID: 561400, Name: "Spring Cup", StartDate: "2023-04-01"},
			},
			events: &events,
		}
		svc := app.New(store, fetcher, app.WithHomeClub(24029))

		Convey("When syncing the club's season", func() {
			synced, err := svc.SyncClubSeason(context.Background(), 0, time.Time{})
			So(err, ShouldBeNil)
			So(synced, ShouldHaveLength, 2)

			// A fetch inside the open batch transaction would let a sync
			// lock be taken while the transaction holds uncommitted rows.
			Convey("Then every upstream fetch completes before the transaction opens", func() {
				So(events, ShouldResemble, []string{"fetch", "fetch", "tx"})
			})
		})
	})
}
