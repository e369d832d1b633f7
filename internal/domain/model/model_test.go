package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lantern-care/lantern/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validObservation() model.SignalObservation {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return model.SignalObservation{
		PersonID:    "person-1",
		Category:    model.CategoryCalendar,
		SignalID:    "social_event_frequency",
		Value:       4.0,
		Direction:   model.LowerIsRiskier,
		ObservedAt:  now,
		PeriodStart: now.Add(-7 * 24 * time.Hour),
		PeriodEnd:   now,
	}
}

func TestSignalObservation_Validate(t *testing.T) {
	Convey("Given a well-formed observation", t, func() {
		obs := validObservation()

		Convey("Then it should validate", func() {
			So(obs.Validate(), ShouldBeNil)
		})

		Convey("When the value is NaN", func() {
			obs.Value = math.NaN()
			err := obs.Validate()
			So(err, ShouldNotBeNil)
			So(errors.Is(err, model.ErrInvalidObservation), ShouldBeTrue)
		})

		Convey("When the value is infinite", func() {
			obs.Value = math.Inf(1)
			So(errors.Is(obs.Validate(), model.ErrInvalidObservation), ShouldBeTrue)
		})

		Convey("When the person id is missing", func() {
			obs.PersonID = "  "
			So(errors.Is(obs.Validate(), model.ErrInvalidObservation), ShouldBeTrue)
		})

		Convey("When the category is unknown", func() {
			obs.Category = "podcasts"
			So(errors.Is(obs.Validate(), model.ErrInvalidObservation), ShouldBeTrue)
		})

		Convey("When the direction is unknown", func() {
			obs.Direction = "sideways"
			So(errors.Is(obs.Validate(), model.ErrInvalidObservation), ShouldBeTrue)
		})

		Convey("When observed_at is missing", func() {
			obs.ObservedAt = time.Time{}
			So(errors.Is(obs.Validate(), model.ErrInvalidObservation), ShouldBeTrue)
		})
	})
}

func TestLevelForScore(t *testing.T) {
	Convey("Given the fixed level thresholds", t, func() {
		Convey("Then boundary scores should map to the documented levels", func() {
			So(model.LevelForScore(0), ShouldEqual, model.LevelLow)
			So(model.LevelForScore(25), ShouldEqual, model.LevelLow)
			So(model.LevelForScore(25.01), ShouldEqual, model.LevelMild)
			So(model.LevelForScore(50), ShouldEqual, model.LevelMild)
			So(model.LevelForScore(50.01), ShouldEqual, model.LevelModerate)
			So(model.LevelForScore(75), ShouldEqual, model.LevelModerate)
			So(model.LevelForScore(75.01), ShouldEqual, model.LevelHigh)
			So(model.LevelForScore(100), ShouldEqual, model.LevelHigh)
		})

		Convey("Then ranks should order levels strictly", func() {
			So(model.LevelLow.Rank(), ShouldBeLessThan, model.LevelMild.Rank())
			So(model.LevelMild.Rank(), ShouldBeLessThan, model.LevelModerate.Rank())
			So(model.LevelModerate.Rank(), ShouldBeLessThan, model.LevelHigh.Rank())
			So(model.Level("bogus").Rank(), ShouldEqual, -1)
		})

		Convey("Then bounds should tile [0,100]", func() {
			So(model.LevelLow.LowerBound(), ShouldEqual, 0)
			So(model.LevelLow.UpperBound(), ShouldEqual, model.LevelMild.LowerBound())
			So(model.LevelMild.UpperBound(), ShouldEqual, model.LevelModerate.LowerBound())
			So(model.LevelModerate.UpperBound(), ShouldEqual, model.LevelHigh.LowerBound())
			So(model.LevelHigh.UpperBound(), ShouldEqual, 100)
		})
	})
}
