package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lantern-care/lantern/internal/adapters/repository"
	"github.com/lantern-care/lantern/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newAssessment(personID string, computedAt time.Time, final float64) *model.Assessment {
	calendar := final
	return &model.Assessment{
		ID:               uuid.NewString(),
		PersonID:         personID,
		ComputedAt:       computedAt,
		PeriodEnd:        computedAt.Truncate(24 * time.Hour),
		CalendarScore:    &calendar,
		MaturityFraction: 1.0,
		RawScore:         final,
		FinalScore:       final,
		Level:            model.LevelForScore(final),
		Breakdown: []model.Contribution{
			{SignalID: "social_event_frequency", SubScore: final, Weight: 1, Contribution: final, Mature: true},
		},
		Explanations: []string{"no significant deviation from personal baselines detected"},
	}
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a fresh SQLite store", t, func() {
		ctx := context.Background()
		store, err := repository.NewSQLiteStore(t.TempDir())
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When no assessments exist for a person", func() {
			_, err := store.Latest(ctx, "ghost")

			Convey("Then Latest should return ErrNotFound", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})

			Convey("Then History should return an empty slice", func() {
				history, err := store.History(ctx, "ghost", 10, 0)
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)
			})
		})

		Convey("When an assessment is appended", func() {
			now := time.Now()
			a := newAssessment("p-1", now, 62.5)
			So(store.Append(ctx, a), ShouldBeNil)

			Convey("Then Latest should round-trip every field", func() {
				got, err := store.Latest(ctx, "p-1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, a.ID)
				So(got.PersonID, ShouldEqual, "p-1")
				So(got.ComputedAt.UnixNano(), ShouldEqual, now.UnixNano())
				So(got.CalendarScore, ShouldNotBeNil)
				So(*got.CalendarScore, ShouldAlmostEqual, 62.5, 1e-9)
				So(got.MusicScore, ShouldBeNil)
				So(got.FinalScore, ShouldAlmostEqual, 62.5, 1e-9)
				So(got.Level, ShouldEqual, model.LevelModerate)
				So(got.Breakdown, ShouldHaveLength, 1)
				So(got.Breakdown[0].SignalID, ShouldEqual, "social_event_frequency")
				So(got.Explanations, ShouldHaveLength, 1)
				So(got.Escalated, ShouldBeFalse)
				So(got.Degraded, ShouldBeFalse)
			})
		})

		Convey("When several assessments accumulate for one person", func() {
			base := time.Now().Add(-time.Hour)
			for i := 0; i < 5; i++ {
				a := newAssessment("p-2", base.Add(time.Duration(i)*time.Minute), float64(40+i))
				So(store.Append(ctx, a), ShouldBeNil)
			}

			Convey("Then Latest should return the newest one", func() {
				got, err := store.Latest(ctx, "p-2")
				So(err, ShouldBeNil)
				So(got.FinalScore, ShouldAlmostEqual, 44, 1e-9)
			})

			Convey("Then History should page newest first", func() {
				page, err := store.History(ctx, "p-2", 2, 0)
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 2)
				So(page[0].FinalScore, ShouldAlmostEqual, 44, 1e-9)
				So(page[1].FinalScore, ShouldAlmostEqual, 43, 1e-9)

				next, err := store.History(ctx, "p-2", 2, 2)
				So(err, ShouldBeNil)
				So(next, ShouldHaveLength, 2)
				So(next[0].FinalScore, ShouldAlmostEqual, 42, 1e-9)
			})
		})

		Convey("When persons accumulate across appends", func() {
			now := time.Now()
			So(store.Append(ctx, newAssessment("p-3", now, 30)), ShouldBeNil)
			So(store.Append(ctx, newAssessment("p-3", now.Add(time.Minute), 35)), ShouldBeNil)
			So(store.Append(ctx, newAssessment("p-4", now, 20)), ShouldBeNil)

			Convey("Then CountPersons should count distinct persons", func() {
				n, err := store.CountPersons(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a store with a small history cap", t, func() {
		ctx := context.Background()
		store, err := repository.NewSQLiteStore(t.TempDir(), repository.WithHistoryCap(3))
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When more assessments arrive than the cap allows", func() {
			base := time.Now().Add(-time.Hour)
			for i := 0; i < 6; i++ {
				a := newAssessment("p-cap", base.Add(time.Duration(i)*time.Minute), float64(10+i))
				So(store.Append(ctx, a), ShouldBeNil)
			}

			Convey("Then only the newest cap-many should survive", func() {
				history, err := store.History(ctx, "p-cap", 10, 0)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 3)
				So(history[0].FinalScore, ShouldAlmostEqual, 15, 1e-9)
				So(history[2].FinalScore, ShouldAlmostEqual, 13, 1e-9)
			})
		})
	})

	Convey("Given a store reopened from disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		first, err := repository.NewSQLiteStore(dir)
		So(err, ShouldBeNil)
		a := newAssessment("p-durable", time.Now(), 55)
		So(first.Append(ctx, a), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("When it is opened again on the same directory", func() {
			second, err := repository.NewSQLiteStore(dir)
			So(err, ShouldBeNil)
			defer second.Close()

			Convey("Then earlier assessments should still be readable", func() {
				got, err := second.Latest(ctx, "p-durable")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, a.ID)
			})
		})
	})
}

func TestSQLiteStoreJournalMode(t *testing.T) {
	Convey("Given a store opened on a fresh directory", t, func() {
		dir := t.TempDir()
		store, err := repository.NewSQLiteStore(dir)
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("Then the database file should be in WAL mode", func() {
			db, err := sql.Open("sqlite", filepath.Join(dir, "assessments.db"))
			So(err, ShouldBeNil)
			defer db.Close()

			var mode string
			So(db.QueryRow("PRAGMA journal_mode").Scan(&mode), ShouldBeNil)
			So(strings.ToLower(mode), ShouldEqual, "wal")
		})
	})
}

func BenchmarkSQLiteAppend(b *testing.B) {
	ctx := context.Background()
	store, err := repository.NewSQLiteStore(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a := newAssessment(fmt.Sprintf("p-%d", i%100), time.Now(), 50)
		if err := store.Append(ctx, a); err != nil {
			b.Fatal(err)
		}
	}
}
