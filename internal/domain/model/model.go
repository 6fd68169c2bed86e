// Package model contains the canonical records persisted by sync and
// projected by the read API.
package model

// MeetStatus is the lifecycle state of a sanction as reported upstream.
type MeetStatus string

// Known meet statuses. The zero value means the upstream status was
// absent or unrecognized.
const (
	StatusUnknown    MeetStatus = ""
	StatusOpen       MeetStatus = "Open"
	StatusClosed     MeetStatus = "Closed"
	StatusComplete   MeetStatus = "Complete"
	StatusInProgress MeetStatus = "InProgress"
	StatusFuture     MeetStatus = "Future"
)

// Program is the competition discipline. Upstream encodes it two ways
// (numeric id on the sanction header, name string on sessions); both are
// normalized into this one type at the ingest boundary.
type Program string

const (
	ProgramUnknown Program = ""
	ProgramWomens  Program = "Womens"
	ProgramMens    Program = "Mens"
)

// Sanction is one competition event, keyed by the upstream sanction id.
// Re-sync refreshes Name, StartDate, EndDate and Status; the remaining
// fields keep their first-synced value.
type Sanction struct {
	SanctionID int        `json:"sanction_id"`
	Name       string     `json:"name"`
	StartDate  string     `json:"start_date,omitempty"`
	EndDate    string     `json:"end_date,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	SiteName   string     `json:"site_name,omitempty"`
	Website    string     `json:"website,omitempty"`
	Program    Program    `json:"program,omitempty"`
	Status     MeetStatus `json:"meet_status,omitempty"`
	HasResults bool       `json:"has_results"`
	Address    string     `json:"address,omitempty"`
	Zip        string     `json:"zip,omitempty"`
	LogoURL    string     `json:"logo_url,omitempty"`
}

// PlaceholderClubName marks club rows inserted only to satisfy a club
// reference (a gymnast's home club or a participant link's meet-time
// club) when the upstream payload omitted the club itself.
const PlaceholderClubName = "Unknown Club (placeholder)"

// Club is an organization, keyed by the upstream club id. Core club data
// is immutable once first seen.
type Club struct {
	ClubID    int    `json:"club_id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Website   string `json:"website,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Gymnast is a person, keyed by the upstream person id. ClubID is the
// current home club; the club represented at a given meet lives on the
// Participant row.
type Gymnast struct {
	GymnastID int    `json:"gymnast_id"`
	ClubID    int    `json:"club_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender,omitempty"`
	// Level is the most recent competition level, filled on club-roster
	// projections only.
	Level string `json:"level,omitempty"`
	// MeetClubID is the club represented at a specific meet, filled on
	// sanction-participant projections only.
	MeetClubID int `json:"meet_club_id,omitempty"`
}

// Session is a sub-event of a sanction. Session ids are not globally
// unique, so the key is (SessionID, SanctionID).
type Session struct {
	SessionID  int     `json:"session_id"`
	SanctionID int     `json:"sanction_id"`
	Name       string  `json:"name"`
	Date       string  `json:"session_date,omitempty"`
	Program    Program `json:"program,omitempty"`
}

// ResultSet is a scored division within a session, keyed by the globally
// unique result-set id.
type ResultSet struct {
	ResultSetID int    `json:"result_set_id"`
	SessionID   int    `json:"session_id"`
	SanctionID  int    `json:"sanction_id"`
	Level       string `json:"level,omitempty"`
	Division    string `json:"division,omitempty"`
	Official    bool   `json:"official"`
}

// Participant links a gymnast to a sanction, keyed by (SanctionID,
// GymnastID). MeetClubID records the club represented at that meet, which
// may differ from the gymnast's home club; re-sync refreshes it.
type Participant struct {
	SanctionID int    `json:"sanction_id"`
	GymnastID  int    `json:"gymnast_id"`
	SessionID  int    `json:"session_id"`
	Level      string `json:"level,omitempty"`
	Division   string `json:"division,omitempty"`
	Squad      string `json:"squad,omitempty"`
	MeetClubID int    `json:"meet_club_id"`
}

// Score is one event result for one gymnast within one result set, keyed
// by the upstream score id. Re-sync refreshes FinalScore and Rank.
type Score struct {
	ScoreID     int     `json:"score_id"`
	ResultSetID int     `json:"result_set_id"`
	GymnastID   int     `json:"gymnast_id"`
	EventID     string  `json:"event_id"`
	EventName   string  `json:"event_name,omitempty"`
	FinalScore  float64 `json:"final_score"`
	Rank        int     `json:"rank,omitempty"`
	Tie         bool    `json:"tie"`
	SanctionID  int     `json:"sanction_id,omitempty"`
	Program     Program `json:"program,omitempty"`
}
