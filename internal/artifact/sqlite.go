package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite mirrors the artifacts into a database. Writing a table replaces the
// rows of every student (programs, core) or program (mentors) it contains.
type SQLite struct {
	Pool *sql.DB
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	if err := migrate(pool); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("cannot migrate %s: %w", path, err)
	}
	return &SQLite{Pool: pool, now: time.Now}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS student_program (
  student_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  program_id TEXT NOT NULL,
  program_name TEXT NOT NULL DEFAULT '',
  institution_id TEXT NOT NULL DEFAULT '',
  institution_name TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  overall_rank INTEGER NOT NULL DEFAULT 0,
  interests TEXT NOT NULL DEFAULT '',
  field_tags TEXT NOT NULL DEFAULT '',
  label_match REAL NOT NULL DEFAULT 0,
  weight REAL NOT NULL DEFAULT 0,
  relevance REAL NOT NULL DEFAULT 0,
  tuition_low REAL NOT NULL DEFAULT 0,
  scholarship_reduction REAL NOT NULL DEFAULT 0,
  effective_tuition REAL NOT NULL DEFAULT 0,
  designated_regional INTEGER NOT NULL DEFAULT 0,
  student_migration INTEGER NOT NULL DEFAULT 0,
  pred_label_match REAL NOT NULL DEFAULT 0,
  written_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS core_program (
  student_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  interests TEXT NOT NULL DEFAULT '',
  core_program TEXT NOT NULL,
  program_match REAL NOT NULL DEFAULT 0,
  pred_label_match REAL NOT NULL DEFAULT 0,
  written_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS program_mentor_scored (
  program_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  field_tags TEXT NOT NULL DEFAULT '',
  mentor_id TEXT NOT NULL,
  expertise_tags TEXT NOT NULL DEFAULT '',
  languages TEXT NOT NULL DEFAULT '',
  education_background TEXT NOT NULL DEFAULT '',
  years_experience REAL NOT NULL DEFAULT 0,
  label_match REAL NOT NULL DEFAULT 0,
  pred_label_match REAL NOT NULL DEFAULT 0,
  written_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_student_program_student ON student_program(student_id);`,
		`CREATE INDEX IF NOT EXISTS idx_core_program_student ON core_program(student_id);`,
		`CREATE INDEX IF NOT EXISTS idx_mentor_program ON program_mentor_scored(program_id);`,
		`PRAGMA user_version = 1;`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Programs(rows []ProgramRow) error {
	return s.replace("student_program", "student_id", func(i int) string { return rows[i].StudentID }, len(rows),
		`INSERT INTO student_program (student_id, position, program_id, program_name, institution_id, institution_name,
  location, website, overall_rank, interests, field_tags, label_match, weight, relevance, tuition_low,
  scholarship_reduction, effective_tuition, designated_regional, student_migration, pred_label_match, written_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		func(i int, ts string) []any {
			r := rows[i]
			return []any{r.StudentID, i, r.ProgramID, r.ProgramName, r.InstitutionID, r.InstitutionName,
				r.Location, r.Website, r.OverallRank, r.Interests, r.FieldTags, r.LabelMatch, r.Weight, r.Relevance,
				r.TuitionLow, r.ScholarshipReduction, r.EffectiveTuition, boolInt(r.DesignatedRegional),
				boolInt(r.StudentMigration), r.PredLabelMatch, ts}
		})
}

func (s *SQLite) Core(rows []CoreRow) error {
	return s.replace("core_program", "student_id", func(i int) string { return rows[i].StudentID }, len(rows),
		`INSERT INTO core_program (student_id, position, interests, core_program, program_match, pred_label_match, written_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		func(i int, ts string) []any {
			r := rows[i]
			return []any{r.StudentID, i, r.Interests, r.CoreProgram, r.ProgramMatch, r.PredLabelMatch, ts}
		})
}

func (s *SQLite) Mentors(rows []MentorRow) error {
	return s.replace("program_mentor_scored", "program_id", func(i int) string { return rows[i].ProgramID }, len(rows),
		`INSERT INTO program_mentor_scored (program_id, position, field_tags, mentor_id, expertise_tags, languages,
  education_background, years_experience, label_match, pred_label_match, written_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		func(i int, ts string) []any {
			r := rows[i]
			return []any{r.ProgramID, i, r.FieldTags, r.MentorID, r.ExpertiseTags, r.Languages,
				r.EducationBackground, r.YearsExperience, r.LabelMatch, r.PredLabelMatch, ts}
		})
}

// replace deletes the rows of every key present in the batch and inserts the
// batch, in one transaction. table and keyCol are package constants.
func (s *SQLite) replace(table, keyCol string, key func(int) string, n int, insert string, args func(int, string) []any) error {
	tx, err := s.Pool.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	seen := make(map[string]struct{})
	for i := 0; i < n; i++ {
		k := key(i)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE `+keyCol+` = ?;`, k); err != nil {
			return fmt.Errorf("cannot clear %s for %s: %w", table, k, err)
		}
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return err
	}
	defer stmt.Close()
	ts := s.now().UTC().Format(time.RFC3339)
	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(args(i, ts)...); err != nil {
			return fmt.Errorf("cannot insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// CountRows returns the number of rows in table whose keyCol equals key.
func (s *SQLite) CountRows(table, keyCol, key string) (int, error) {
	var n int
	err := s.Pool.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE `+keyCol+` = ?;`, key).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
