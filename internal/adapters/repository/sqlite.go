package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/lantern-care/lantern/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultHistoryCap = 500
	defaultDBFile     = "assessments.db"
)

// SQLiteStore implements Store on a WAL-mode SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	historyCap int
}

// NewSQLiteStore creates or opens the assessment database under dir.
// Enables WAL mode and a 5-second busy timeout.
func NewSQLiteStore(dir string, opts ...StoreOption) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, defaultDBFile)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:         db,
		historyCap: defaultHistoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// migrate runs idempotent schema migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id                TEXT PRIMARY KEY,
			person_id         TEXT NOT NULL,
			computed_at       INTEGER NOT NULL,
			period_end        INTEGER NOT NULL,
			calendar_score    REAL,
			music_score       REAL,
			maturity_fraction REAL NOT NULL,
			raw_score         REAL NOT NULL,
			final_score       REAL NOT NULL,
			level             TEXT NOT NULL,
			previous_level    TEXT NOT NULL DEFAULT '',
			breakdown         TEXT NOT NULL DEFAULT '[]',
			explanations      TEXT NOT NULL DEFAULT '[]',
			escalated         BOOLEAN NOT NULL DEFAULT 0,
			degraded          BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_person
			ON assessments(person_id, computed_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// Append persists an assessment and prunes the person's history beyond the
// configured cap inside the same transaction.
func (s *SQLiteStore) Append(ctx context.Context, a *model.Assessment) error {
	breakdown, err := json.Marshal(a.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	explanations, err := json.Marshal(a.Explanations)
	if err != nil {
		return fmt.Errorf("marshal explanations: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments (
			id, person_id, computed_at, period_end,
			calendar_score, music_score, maturity_fraction,
			raw_score, final_score, level, previous_level,
			breakdown, explanations, escalated, degraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PersonID, a.ComputedAt.UnixNano(), a.PeriodEnd.UnixNano(),
		nullFloat(a.CalendarScore), nullFloat(a.MusicScore), a.MaturityFraction,
		a.RawScore, a.FinalScore, string(a.Level), string(a.PreviousLevel),
		string(breakdown), string(explanations), a.Escalated, a.Degraded,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	if s.historyCap > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM assessments
			WHERE person_id = ? AND id NOT IN (
				SELECT id FROM assessments
				WHERE person_id = ?
				ORDER BY computed_at DESC
				LIMIT ?
			)`,
			a.PersonID, a.PersonID, s.historyCap,
		)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Latest returns the most recent assessment for a person.
func (s *SQLiteStore) Latest(ctx context.Context, personID string) (*model.Assessment, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM assessments
		WHERE person_id = ?
		ORDER BY computed_at DESC
		LIMIT 1`,
		personID,
	)
	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	return a, nil
}

// History returns assessments for a person, newest first.
func (s *SQLiteStore) History(ctx context.Context, personID string, limit, offset int) ([]*model.Assessment, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM assessments
		WHERE person_id = ?
		ORDER BY computed_at DESC
		LIMIT ? OFFSET ?`,
		personID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []*model.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// CountPersons returns the number of persons with at least one assessment.
func (s *SQLiteStore) CountPersons(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT person_id) FROM assessments`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}

// Close cleanly shuts down the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `
	SELECT id, person_id, computed_at, period_end,
		calendar_score, music_score, maturity_fraction,
		raw_score, final_score, level, previous_level,
		breakdown, explanations, escalated, degraded`

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(sc scanner) (*model.Assessment, error) {
	var (
		a            model.Assessment
		computedAt   int64
		periodEnd    int64
		calendar     sql.NullFloat64
		music        sql.NullFloat64
		level        string
		prevLevel    string
		breakdown    string
		explanations string
	)

	err := sc.Scan(
		&a.ID, &a.PersonID, &computedAt, &periodEnd,
		&calendar, &music, &a.MaturityFraction,
		&a.RawScore, &a.FinalScore, &level, &prevLevel,
		&breakdown, &explanations, &a.Escalated, &a.Degraded,
	)
	if err != nil {
		return nil, err
	}

	a.ComputedAt = time.Unix(0, computedAt)
	a.PeriodEnd = time.Unix(0, periodEnd)
	a.Level = model.Level(level)
	a.PreviousLevel = model.Level(prevLevel)
	if calendar.Valid {
		v := calendar.Float64
		a.CalendarScore = &v
	}
	if music.Valid {
		v := music.Float64
		a.MusicScore = &v
	}
	if err := json.Unmarshal([]byte(breakdown), &a.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(explanations), &a.Explanations); err != nil {
		return nil, fmt.Errorf("unmarshal explanations: %w", err)
	}
	return &a, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
