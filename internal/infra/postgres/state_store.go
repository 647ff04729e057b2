package postgres

import (
	"context"
	"fmt"
	"time"

	"lnct-quiz-console/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// StateStore persists principals and score histories in the students and
// score_records tables.
type StateStore struct {
	pool *pgxpool.Pool
}

func NewStateStore(pool *pgxpool.Pool) *StateStore {
	return &StateStore{pool: pool}
}

func (s *StateStore) Load(ctx context.Context) (domain.Snapshot, error) {
	snapshot := domain.NewSnapshot()

	rows, err := s.pool.Query(ctx, `SELECT reg_no, username, password, name, dob, phone, email, program, year, address, guardian
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
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("read students: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT reg_no, category, marks, total_marks, taken_at
		FROM score_records ORDER BY reg_no, seq`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			regNo   string
			record  domain.ScoreRecord
			takenAt time.Time
		)
		if err := rows.Scan(&regNo, &record.Category, &record.Marks, &record.TotalMarks, &takenAt); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan score: %w", err)
		}
		// TIMESTAMP columns hold wall-clock local time without a zone.
		record.TakenAt = time.Date(takenAt.Year(), takenAt.Month(), takenAt.Day(),
			takenAt.Hour(), takenAt.Minute(), takenAt.Second(), 0, time.Local)
		snapshot.Scores[regNo] = append(snapshot.Scores[regNo], record)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("read scores: %w", err)
	}
	return snapshot, nil
}

// Save replaces both tables inside one transaction.
func (s *StateStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM score_records`); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}
	for id, p := range snapshot.Students {
		if _, err := tx.Exec(ctx, `INSERT INTO students (reg_no, username, password, name, dob, phone, email, program, year, address, guardian)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			id, p.Username, p.Password, p.FullName, p.DateOfBirth, p.Phone, p.Email,
			p.Program, p.AcademicYear, p.Address, p.GuardianName); err != nil {
			return fmt.Errorf("insert student %s: %w", id, err)
		}
	}
	for id, records := range snapshot.Scores {
		for seq, record := range records {
			takenAt := record.TakenAt.In(time.Local)
			wall := time.Date(takenAt.Year(), takenAt.Month(), takenAt.Day(),
				takenAt.Hour(), takenAt.Minute(), takenAt.Second(), 0, time.UTC)
			if _, err := tx.Exec(ctx, `INSERT INTO score_records (reg_no, seq, category, marks, total_marks, taken_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				id, seq, record.Category, record.Marks, record.TotalMarks, wall); err != nil {
				return fmt.Errorf("insert score %s/%d: %w", id, seq, err)
			}
		}
	}
	return tx.Commit(ctx)
}
