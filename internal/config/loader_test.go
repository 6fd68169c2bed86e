package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/roundoff/gymstats/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.UpstreamBaseURL, ShouldEqual, "https://api.myusagym.com")
			So(cfg.UpstreamTimeoutMS, ShouldEqual, 15_000)
			So(cfg.DatabaseMaxConns, ShouldEqual, 10)
			So(cfg.HomeClubID, ShouldEqual, 24029)
			So(cfg.SeasonStart, ShouldEqual, "2022-09-01")
			So(cfg.SearchLimit, ShouldEqual, 5)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GYMSTATS_ADDR", ":9090")
	t.Setenv("GYMSTATS_DATABASE_URL", "postgres://db:5432/meets")
	t.Setenv("GYMSTATS_HOME_CLUB_ID", "31000")
	t.Setenv("GYMSTATS_LOG_LEVEL", "debug")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.DatabaseURL, ShouldEqual, "postgres://db:5432/meets")
			So(cfg.HomeClubID, ShouldEqual, 31000)
			So(cfg.LogLevel, ShouldEqual, "debug")

			Convey("And untouched fields keep their defaults", func() {
				So(cfg.UpstreamBaseURL, ShouldEqual, "https://api.myusagym.com")
			})
		})
	})
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("addr: \":7070\"\nseason_start: \"2023-09-01\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GYMSTATS_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values override defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.SeasonStart, ShouldEqual, "2023-09-01")
		})
	})

	Convey("Given a file overridden by the environment", t, func() {
		t.Setenv("GYMSTATS_ADDR", ":6060")
		cfg, err := config.Load(context.Background())

		Convey("Then env beats file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	Convey("Given an unparseable season start", t, func() {
		t.Setenv("GYMSTATS_SEASON_START", "September 1st")
		_, err := config.Load(context.Background())

		Convey("Then loading fails with the invalid-config kind", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given an empty upstream base URL", t, func() {
		t.Setenv("GYMSTATS_UPSTREAM_BASE_URL", "")
		_, err := config.Load(context.Background())

		Convey("Then loading fails", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
