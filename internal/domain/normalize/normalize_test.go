package normalize_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/roundoff/gymstats/internal/domain/model"
	"github.com/roundoff/gymstats/internal/domain/normalize"
)

func TestParseInt(t *testing.T) {
	Convey("Given string-typed upstream ids", t, func() {
		Convey("When the id is numeric", func() {
			n, ok := normalize.ParseInt("561234")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 561234)
		})

		Convey("When the id has surrounding whitespace", func() {
			n, ok := normalize.ParseInt("  42 ")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 42)
		})

		Convey("When the id is non-numeric", func() {
			_, ok := normalize.ParseInt("TBD")
			So(ok, ShouldBeFalse)
		})

		Convey("When the id is empty", func() {
			_, ok := normalize.ParseInt("")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseDecimal(t *testing.T) {
	Convey("Given string-typed final scores", t, func() {
		Convey("When the score is a decimal", func() {
			f, ok := normalize.ParseDecimal("9.525")
			So(ok, ShouldBeTrue)
			So(f, ShouldAlmostEqual, 9.525)
		})

		Convey("When the score is an integer string", func() {
			f, ok := normalize.ParseDecimal("38")
			So(ok, ShouldBeTrue)
			So(f, ShouldAlmostEqual, 38.0)
		})

		Convey("When the score is not numeric", func() {
			f, ok := normalize.ParseDecimal("DNS")
			So(ok, ShouldBeFalse)
			So(f, ShouldEqual, 0)
		})

		Convey("When the score is empty", func() {
			_, ok := normalize.ParseDecimal("")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given upstream date strings", t, func() {
		Convey("When the date is RFC 3339", func() {
			d, ok := normalize.ParseDate("2023-01-14T00:00:00Z")
			So(ok, ShouldBeTrue)
			So(d.Year(), ShouldEqual, 2023)
			So(d.Month(), ShouldEqual, time.January)
			So(d.Day(), ShouldEqual, 14)
		})

		Convey("When the date is bare yyyy-mm-dd", func() {
			d, ok := normalize.ParseDate("2022-09-01")
			So(ok, ShouldBeTrue)
			So(d.Month(), ShouldEqual, time.September)
		})

		Convey("When the date is malformed", func() {
			_, ok := normalize.ParseDate("Jan 14, 2023")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMeetStatus(t *testing.T) {
	Convey("Given upstream meet status strings", t, func() {
		cases := map[string]model.MeetStatus{
			"Open":        model.StatusOpen,
			"closed":      model.StatusClosed,
			"COMPLETE":    model.StatusComplete,
			"In progress": model.StatusInProgress,
			"in progress": model.StatusInProgress,
			"Future":      model.StatusFuture,
		}
		Convey("Then known statuses map case-insensitively", func() {
			for raw, want := range cases {
				So(normalize.MeetStatus(raw), ShouldEqual, want)
			}
		})

		Convey("Then unknown statuses map to the zero value", func() {
			So(normalize.MeetStatus("bogus"), ShouldEqual, model.StatusUnknown)
			So(normalize.MeetStatus(""), ShouldEqual, model.StatusUnknown)
		})
	})
}

func TestProgram(t *testing.T) {
	Convey("Given the numeric program encoding", t, func() {
		So(normalize.ProgramFromID(1), ShouldEqual, model.ProgramWomens)
		So(normalize.ProgramFromID(2), ShouldEqual, model.ProgramMens)
		So(normalize.ProgramFromID(0), ShouldEqual, model.ProgramUnknown)
		So(normalize.ProgramFromID(7), ShouldEqual, model.ProgramUnknown)
	})

	Convey("Given the string program encoding", t, func() {
		So(normalize.ProgramFromName("Women"), ShouldEqual, model.ProgramWomens)
		So(normalize.ProgramFromName("womens"), ShouldEqual, model.ProgramWomens)
		So(normalize.ProgramFromName("Men"), ShouldEqual, model.ProgramMens)
		So(normalize.ProgramFromName("MENS"), ShouldEqual, model.ProgramMens)
		So(normalize.ProgramFromName("rhythmic"), ShouldEqual, model.ProgramUnknown)
	})
}

func TestEventName(t *testing.T) {
	Convey("Given the per-program apparatus tables", t, func() {
		Convey("When resolving women's event ids", func() {
			So(normalize.EventName("1", model.ProgramWomens), ShouldEqual, "Vault")
			So(normalize.EventName("2", model.ProgramWomens), ShouldEqual, "Uneven Bars")
			So(normalize.EventName("3", model.ProgramWomens), ShouldEqual, "Balance Beam")
			So(normalize.EventName("4", model.ProgramWomens), ShouldEqual, "Floor Exercise")
			So(normalize.EventName("aa", model.ProgramWomens), ShouldEqual, "All-Around")
		})

		Convey("When resolving men's event ids", func() {
			So(normalize.EventName("1", model.ProgramMens), ShouldEqual, "Floor Exercise")
			So(normalize.EventName("2", model.ProgramMens), ShouldEqual, "Pommel Horse")
			So(normalize.EventName("3", model.ProgramMens), ShouldEqual, "Still Rings")
			So(normalize.EventName("4", model.ProgramMens), ShouldEqual, "Parallel Bars")
			So(normalize.EventName("5", model.ProgramMens), ShouldEqual, "Vault")
			So(normalize.EventName("6", model.ProgramMens), ShouldEqual, "High Bar")
			So(normalize.EventName("aa", model.ProgramMens), ShouldEqual, "All-Around")
		})

		Convey("When the event id is unknown", func() {
			Convey("Then the raw id passes through", func() {
				So(normalize.EventName("99", model.ProgramWomens), ShouldEqual, "99")
				So(normalize.EventName("99", model.ProgramMens), ShouldEqual, "99")
				So(normalize.EventName("3", model.ProgramUnknown), ShouldEqual, "3")
			})
		})
	})
}
