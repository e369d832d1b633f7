package signal_test

import (
	"testing"

	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry_Defaults(t *testing.T) {
	Convey("Given the default registry", t, func() {
		reg := signal.New()

		Convey("Then it should hold seven enabled signals", func() {
			So(reg.Size(), ShouldEqual, 7)
			So(len(reg.Enabled()), ShouldEqual, 7)
		})

		Convey("Then calendar weights should sum to one", func() {
			sum := 0.0
			for _, d := range reg.ByCategory(model.CategoryCalendar) {
				sum += d.Weight
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Then music weights should sum to one", func() {
			sum := 0.0
			for _, d := range reg.ByCategory(model.CategoryMusic) {
				sum += d.Weight
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Then lookups should return descriptors with directions", func() {
			d, ok := reg.Lookup("social_event_frequency")
			So(ok, ShouldBeTrue)
			So(d.Category, ShouldEqual, model.CategoryCalendar)
			So(d.Direction, ShouldEqual, model.LowerIsRiskier)

			d, ok = reg.Lookup("late_night_fraction")
			So(ok, ShouldBeTrue)
			So(d.Direction, ShouldEqual, model.HigherIsRiskier)

			_, ok = reg.Lookup("step_count")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestRegistry_Options(t *testing.T) {
	Convey("Given a registry with a disabled music source", t, func() {
		reg := signal.New(signal.WithSourceDisabled(model.CategoryMusic))

		Convey("Then music signals should disappear from every view", func() {
			So(reg.SourceEnabled(model.CategoryMusic), ShouldBeFalse)
			So(reg.ByCategory(model.CategoryMusic), ShouldBeEmpty)
			So(reg.Size(), ShouldEqual, 3)

			_, ok := reg.Lookup("track_valence")
			So(ok, ShouldBeFalse)
		})

		Convey("And calendar signals should be unaffected", func() {
			So(reg.SourceEnabled(model.CategoryCalendar), ShouldBeTrue)
			So(len(reg.ByCategory(model.CategoryCalendar)), ShouldEqual, 3)
		})
	})

	Convey("Given a registry with weight overrides and a custom signal", t, func() {
		reg := signal.New(
			signal.WithWeightOverrides(map[string]float64{
				"track_valence": 0.5,
				"unknown":       0.9,
				"listening_hours": -1, // ignored
			}),
			signal.WithSignal(signal.Descriptor{
				ID:        "commit_hour_spread",
				Category:  model.CategoryCalendar,
				Direction: model.HigherIsRiskier,
				Weight:    0.2,
			}),
		)

		Convey("Then overrides should apply to known signals only", func() {
			d, ok := reg.Lookup("track_valence")
			So(ok, ShouldBeTrue)
			So(d.Weight, ShouldEqual, 0.5)

			d, ok = reg.Lookup("listening_hours")
			So(ok, ShouldBeTrue)
			So(d.Weight, ShouldEqual, 0.25)
		})

		Convey("Then the custom signal should be registered", func() {
			So(reg.Size(), ShouldEqual, 8)
			d, ok := reg.Lookup("commit_hour_spread")
			So(ok, ShouldBeTrue)
			So(d.Weight, ShouldEqual, 0.2)
		})
	})
}
