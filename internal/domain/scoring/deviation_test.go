package scoring_test

import (
	"testing"

	"github.com/lantern-care/lantern/internal/domain/baseline"
	"github.com/lantern-care/lantern/internal/domain/model"
	"github.com/lantern-care/lantern/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func matureSnap(mean, stddev float64) baseline.Snapshot {
	return baseline.Snapshot{Mean: mean, StdDev: stddev, DistinctDays: 10, Mature: true}
}

func TestTransformer_Transform(t *testing.T) {
	Convey("Given a default transformer", t, func() {
		tr := scoring.NewTransformer()

		Convey("When the baseline is immature", func() {
			snap := baseline.Snapshot{Mean: 5, StdDev: 1, Mature: false}
			score := tr.Transform(42, snap, model.HigherIsRiskier)

			Convey("Then the sub-score should be neutral regardless of value", func() {
				So(score, ShouldEqual, 50)
			})
		})

		Convey("When the value sits exactly on the mean", func() {
			score := tr.Transform(5, matureSnap(5, 2), model.HigherIsRiskier)

			Convey("Then the sub-score should be 50", func() {
				So(score, ShouldAlmostEqual, 50, 1e-9)
			})
		})

		Convey("When the value is three stddevs above a higher-is-riskier mean", func() {
			score := tr.Transform(11, matureSnap(5, 2), model.HigherIsRiskier)

			Convey("Then the sub-score should approach 95", func() {
				So(score, ShouldAlmostEqual, 95.257, 0.01)
			})
		})

		Convey("When the value is three stddevs below a higher-is-riskier mean", func() {
			score := tr.Transform(-1, matureSnap(5, 2), model.HigherIsRiskier)

			Convey("Then the sub-score should approach 5", func() {
				So(score, ShouldAlmostEqual, 4.743, 0.01)
			})
		})

		Convey("When the deviation exceeds the clip range", func() {
			clipped := tr.Transform(11, matureSnap(5, 2), model.HigherIsRiskier)
			extreme := tr.Transform(500, matureSnap(5, 2), model.HigherIsRiskier)

			Convey("Then the z-score should be clipped to the same sub-score", func() {
				So(extreme, ShouldAlmostEqual, clipped, 1e-9)
			})
		})

		Convey("When the direction is lower-is-riskier", func() {
			drop := tr.Transform(1, matureSnap(5, 2), model.LowerIsRiskier)
			rise := tr.Transform(9, matureSnap(5, 2), model.LowerIsRiskier)

			Convey("Then dropping below the mean should raise the sub-score", func() {
				So(drop, ShouldBeGreaterThan, 50)
				So(rise, ShouldBeLessThan, 50)
			})
		})

		Convey("When the baseline stddev is zero", func() {
			score := tr.Transform(5.001, matureSnap(5, 0), model.HigherIsRiskier)

			Convey("Then the epsilon floor should avoid division by zero", func() {
				So(score, ShouldBeBetweenOrEqual, 0, 100)
				So(score, ShouldBeGreaterThan, 50)
			})
		})

		Convey("Then sub-scores should be monotone in the risk direction", func() {
			snap := matureSnap(10, 3)
			prev := 0.0
			for v := 10.0; v <= 30; v += 0.5 {
				cur := tr.Transform(v, snap, model.HigherIsRiskier)
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})
	})

	Convey("Given a transformer with a steeper logistic", t, func() {
		steep := scoring.NewTransformer(scoring.WithSteepness(2))
		flat := scoring.NewTransformer()

		Convey("Then the same deviation should score further from neutral", func() {
			snap := matureSnap(0, 1)
			So(steep.Transform(1, snap, model.HigherIsRiskier),
				ShouldBeGreaterThan, flat.Transform(1, snap, model.HigherIsRiskier))
		})
	})
}

func TestCombine(t *testing.T) {
	Convey("Given a full set of weighted sub-scores", t, func() {
		subs := []scoring.SubScore{
			{SignalID: "a", Score: 80, Weight: 0.4},
			{SignalID: "b", Score: 60, Weight: 0.3},
			{SignalID: "c", Score: 40, Weight: 0.3},
		}

		Convey("Then Combine should produce the weighted mean", func() {
			score := scoring.Combine(subs)
			So(score, ShouldNotBeNil)
			So(*score, ShouldAlmostEqual, 62, 1e-9)
		})
	})

	Convey("Given a partial set of sub-scores", t, func() {
		subs := []scoring.SubScore{
			{SignalID: "a", Score: 80, Weight: 0.4},
			{SignalID: "b", Score: 60, Weight: 0.3},
		}

		Convey("Then the remaining weights should be renormalized", func() {
			score := scoring.Combine(subs)
			So(score, ShouldNotBeNil)
			// (80*0.4 + 60*0.3) / 0.7
			So(*score, ShouldAlmostEqual, 71.428571, 1e-5)
		})
	})

	Convey("Given no sub-scores at all", t, func() {
		Convey("Then the category score should be nil, not zero", func() {
			So(scoring.Combine(nil), ShouldBeNil)
			So(scoring.Combine([]scoring.SubScore{}), ShouldBeNil)
		})
	})
}

func TestMaturityFraction(t *testing.T) {
	Convey("Given a mix of mature and immature sub-scores", t, func() {
		subs := []scoring.SubScore{
			{SignalID: "a", Mature: true},
			{SignalID: "b", Mature: false},
			{SignalID: "c", Mature: true},
		}

		Convey("Then the fraction should count mature over total in scope", func() {
			So(scoring.MaturityFraction(subs, 4), ShouldAlmostEqual, 0.5, 1e-9)
			So(scoring.MaturityFraction(subs, 3), ShouldAlmostEqual, 2.0/3.0, 1e-9)
		})

		Convey("Then degenerate totals should yield zero", func() {
			So(scoring.MaturityFraction(subs, 0), ShouldEqual, 0)
		})
	})
}
