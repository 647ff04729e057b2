package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lnct-quiz-console/internal/domain"

	_ "modernc.org/sqlite" // driver: sqlite
)

// DefaultDSN is used when no DSN is configured.
const DefaultDSN = "file:quiz_app_data.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// Store persists principals and score histories in an embedded SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	snapshot := domain.NewSnapshot()

	rows, err := s.db.QueryContext(ctx, `SELECT reg_no, username, password, name, dob, phone, email, program, year, address, guardian
		FROM students ORDER BY reg_no`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query students: %w", err)
	}
	for rows.Next() {
		var p domain.Principal
		if err := rows.Scan(&p.RegistrationID, &p.Username, &p.Password, &p.FullName, &p.DateOfBirth,
			&p.Phone, &p.Email, &p.Program, &p.AcademicYear, &p.Address, &p.GuardianName); err != nil {
			rows.Close()
			return domain.Snapshot{}, fmt.Errorf("scan student: %w", err)
		}
		snapshot.Students[p.RegistrationID] = p
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return domain.Snapshot{}, fmt.Errorf("read students: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT reg_no, category, marks, total_marks, taken_at
		FROM score_records ORDER BY reg_no, seq`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			regNo   string
			takenAt string
			record  domain.ScoreRecord
		)
		if err := rows.Scan(&regNo, &record.Category, &record.Marks, &record.TotalMarks, &takenAt); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan score: %w", err)
		}
		record.TakenAt, err = time.ParseInLocation(domain.TimestampLayout, takenAt, time.Local)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("parse score datetime %q: %w", takenAt, err)
		}
		snapshot.Scores[regNo] = append(snapshot.Scores[regNo], record)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("read scores: %w", err)
	}
	return snapshot, nil
}

// Save replaces both tables inside one transaction.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM score_records`); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}
	for id, p := range snapshot.Students {
		if _, err := tx.ExecContext(ctx, `INSERT INTO students (reg_no, username, password, name, dob, phone, email, program, year, address, guardian)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.Username, p.Password, p.FullName, p.DateOfBirth, p.Phone, p.Email,
			p.Program, p.AcademicYear, p.Address, p.GuardianName); err != nil {
			return fmt.Errorf("insert student %s: %w", id, err)
		}
	}
	for id, records := range snapshot.Scores {
		for seq, record := range records {
			if _, err := tx.ExecContext(ctx, `INSERT INTO score_records (reg_no, seq, category, marks, total_marks, taken_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, seq, record.Category, record.Marks, record.TotalMarks,
				record.TakenAt.In(time.Local).Format(domain.TimestampLayout)); err != nil {
				return fmt.Errorf("insert score %s/%d: %w", id, seq, err)
			}
		}
	}
	return tx.Commit()
}

const schema = `
CREATE TABLE IF NOT EXISTS students (
  reg_no   TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  name     TEXT NOT NULL DEFAULT '',
  dob      TEXT NOT NULL DEFAULT '',
  phone    TEXT NOT NULL DEFAULT '',
  email    TEXT NOT NULL DEFAULT '',
  program  TEXT NOT NULL DEFAULT '',
  year     TEXT NOT NULL DEFAULT '',
  address  TEXT NOT NULL DEFAULT '',
  guardian TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS score_records (
  reg_no      TEXT NOT NULL,
  seq         INTEGER NOT NULL,
  category    TEXT NOT NULL,
  marks       INTEGER NOT NULL,
  total_marks INTEGER NOT NULL,
  taken_at    TEXT NOT NULL,
  PRIMARY KEY (reg_no, seq)
);
`
