package normalize

import "github.com/roundoff/gymstats/internal/domain/model"

// Apparatus names per program. Event id "aa" is the all-around aggregate;
// the numeric ids follow the federation's apparatus ordering, which is
// NOT the same between programs (e.g. "1" is floor for men but vault
// for women).
var mensEvents = map[string]string{
	"1":  "Floor Exercise",
	"2":  "Pommel Horse",
	"3":  "Still Rings",
	"4":  "Parallel Bars",
	"5":  "Vault",
	"6":  "High Bar",
	"aa": "All-Around",
}

var womensEvents = map[string]string{
	"1":  "Vault",
	"2":  "Uneven Bars",
	"3":  "Balance Beam",
	"4":  "Floor Exercise",
	"aa": "All-Around",
}

// EventName resolves an event id to its display name for the given
// program. Unknown ids pass through as the raw id so new apparatus codes
// never break score projections.
func EventName(eventID string, program model.Program) string {
	var name string
	switch program {
	case model.ProgramMens:
		name = mensEvents[eventID]
	case model.ProgramWomens:
		name = womensEvents[eventID]
	}
	if name == "" {
		return eventID
	}
	return name
}
