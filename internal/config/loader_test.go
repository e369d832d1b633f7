package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lantern-care/lantern/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		os.Unsetenv("LANTERN_CONFIG")
		for _, key := range []string{
			"LANTERN_ADDR", "LANTERN_LOG_LEVEL", "LANTERN_WORKER_COUNT",
			"LANTERN_WINDOW_DAYS", "LANTERN_MIN_DAYS", "LANTERN_HYSTERESIS_MARGIN",
		} {
			os.Unsetenv(key)
		}

		Convey("When loading without overrides", func() {
			cfg, err := config.Load()

			Convey("Then defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.WindowDays, ShouldEqual, 14)
				So(cfg.MinDays, ShouldEqual, 7)
				So(cfg.BaselineTTL, ShouldEqual, 90*24*time.Hour)
				So(cfg.CalendarWeight, ShouldAlmostEqual, 0.5, 1e-9)
				So(cfg.MusicWeight, ShouldAlmostEqual, 0.4, 1e-9)
				So(cfg.SustainCount, ShouldEqual, 2)
			})
		})

		Convey("When environment variables override defaults", func() {
			os.Setenv("LANTERN_ADDR", ":7070")
			os.Setenv("LANTERN_LOG_LEVEL", "debug")
			os.Setenv("LANTERN_WORKER_COUNT", "3")
			defer func() {
				os.Unsetenv("LANTERN_ADDR")
				os.Unsetenv("LANTERN_LOG_LEVEL")
				os.Unsetenv("LANTERN_WORKER_COUNT")
			}()

			cfg, err := config.Load()

			Convey("Then the env values should win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.WorkerCount, ShouldEqual, 3)
			})
		})

		Convey("When a YAML config file is provided", func() {
			path := filepath.Join(t.TempDir(), "lantern.yaml")
			yaml := "addr: \":6060\"\nwindow_days: 21\nmin_days: 10\nsignal_weights:\n  track_valence: 0.5\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			os.Setenv("LANTERN_CONFIG", path)
			defer os.Unsetenv("LANTERN_CONFIG")

			cfg, err := config.Load()

			Convey("Then the file values should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.WindowDays, ShouldEqual, 21)
				So(cfg.MinDays, ShouldEqual, 10)
				So(cfg.SignalWeights["track_valence"], ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("And env should still outrank the file", func() {
				os.Setenv("LANTERN_ADDR", ":5050")
				defer os.Unsetenv("LANTERN_ADDR")

				cfg, err := config.Load()
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
			})
		})

		Convey("When sources are disabled", func() {
			Convey("Then an env value should disable that source", func() {
				os.Setenv("LANTERN_DISABLED_SOURCES", "music")
				defer os.Unsetenv("LANTERN_DISABLED_SOURCES")

				cfg, err := config.Load()
				So(err, ShouldBeNil)
				So(cfg.DisabledSources, ShouldResemble, []string{"music"})
			})

			Convey("Then a YAML list should disable several sources", func() {
				path := filepath.Join(t.TempDir(), "lantern.yaml")
				yaml := "disabled_sources:\n  - music\n  - calendar\n"
				So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
				os.Setenv("LANTERN_CONFIG", path)
				defer os.Unsetenv("LANTERN_CONFIG")

				cfg, err := config.Load()
				So(err, ShouldBeNil)
				So(cfg.DisabledSources, ShouldResemble, []string{"music", "calendar"})
			})

			Convey("Then an unknown source should be rejected", func() {
				os.Setenv("LANTERN_DISABLED_SOURCES", "telemetry")
				defer os.Unsetenv("LANTERN_DISABLED_SOURCES")

				_, err := config.Load()
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "disabled source")
			})
		})

		Convey("When the config is invalid", func() {
			Convey("Then min_days above window_days should be rejected", func() {
				os.Setenv("LANTERN_MIN_DAYS", "30")
				defer os.Unsetenv("LANTERN_MIN_DAYS")

				_, err := config.Load()
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "min_days")
			})

			Convey("Then a missing file should surface a load error", func() {
				os.Setenv("LANTERN_CONFIG", "/nonexistent/lantern.yaml")
				defer os.Unsetenv("LANTERN_CONFIG")

				_, err := config.Load()
				So(err, ShouldNotBeNil)
			})

			Convey("Then a negative hysteresis margin should be rejected", func() {
				os.Setenv("LANTERN_HYSTERESIS_MARGIN", "-1")
				defer os.Unsetenv("LANTERN_HYSTERESIS_MARGIN")

				_, err := config.Load()
				So(err, ShouldNotBeNil)
			})
		})
	})
}
