package usagym

// Wire shapes returned by the federation API. String-typed ids and
// enumerated status strings stay raw here; the normalize package maps
// them into model types when the reconciler consumes a document.

// SanctionHeader is the top-level sanction block of a detail document.
// ProgramID carries the numeric program encoding; session rows carry the
// string encoding instead.
type SanctionHeader struct {
	SanctionID int    `json:"sanctionId"`
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	City       string `json:"city"`
	State      string `json:"state"`
	SiteName   string `json:"siteName"`
	Website    string `json:"website"`
	ProgramID  int    `json:"program"`
	MeetStatus string `json:"meetStatus"`
	HasResults bool   `json:"hasResults"`
	Address1   string `json:"address1"`
	Zip        string `json:"zip"`
	LogoURL    string `json:"logoUrl"`
}

// Club is one entry of a detail document's club table.
type Club struct {
	ClubID       int    `json:"clubId"`
	Name         string `json:"name"`
	ShortName    string `json:"shortName"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Website      string `json:"website"`
	EmailAddress string `json:"emailAddress"`
	Phone        int64  `json:"phone"`
}

// Person is one entry of a detail document's people table. PersonID or
// ClubID may be zero when the upstream record is incomplete; such people
// are excluded from sync.
type Person struct {
	PersonID  int    `json:"personId"`
	ClubID    int    `json:"clubId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
}

// Session is one competition session. SessionID is string-typed upstream
// and not guaranteed numeric.
type Session struct {
	SessionID  string `json:"sessionId"`
	SanctionID int    `json:"sanctionId"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Program    string `json:"program"`
}

// ResultSet is one scored division. Official arrives as 0/1.
type ResultSet struct {
	ResultSetID int    `json:"resultSetId"`
	SessionID   string `json:"sessionId"`
	SanctionID  int    `json:"sanctionId"`
	Level       string `json:"level"`
	Division    string `json:"division"`
	Official    int    `json:"official"`
}

// SanctionPerson links a person to the sanction they competed in. ClubID
// is the club represented at THIS meet, not the person's home club.
type SanctionPerson struct {
	SanctionID int    `json:"sanctionId"`
	PersonID   int    `json:"personId"`
	ClubID     int    `json:"clubId"`
	SessionID  string `json:"sessionId"`
	Level      string `json:"level"`
	Division   string `json:"division"`
	Squad      string `json:"squad"`
}

// SanctionDocument is the full nested detail payload for one sanction.
// Clubs, People and SanctionPeople arrive keyed by stringified ids.
type SanctionDocument struct {
	Sanction       SanctionHeader            `json:"sanction"`
	Clubs          map[string]Club           `json:"clubs"`
	People         map[string]Person         `json:"people"`
	Sessions       []Session                 `json:"sessions"`
	ResultSets     []ResultSet               `json:"sessionResultSets"`
	SanctionPeople map[string]SanctionPerson `json:"sanctionPeople"`
}

// Score is one row of a result-set score document. FinalScore is
// string-typed upstream and may be non-numeric.
type Score struct {
	ScoreID     int    `json:"scoreId"`
	ResultSetID int    `json:"resultSetId"`
	PersonID    int    `json:"personId"`
	EventID     string `json:"eventId"`
	FinalScore  string `json:"finalScore"`
	Rank        int    `json:"rank"`
	Tie         int    `json:"tie"`
}

// ScoresDocument is the payload of a result-set fetch.
type ScoresDocument struct {
	Scores []Score `json:"scores"`
}

// Meet is one row of the past-meets listing, a lighter shape than the
// detail document.
type Meet struct {
	SanctionID int    `json:"sanctionId"`
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	SiteName   string `json:"siteName"`
}
