package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the textual form of ScoreRecord timestamps in persisted state.
const TimestampLayout = "2006-01-02 15:04:05"

// Principal is a registered student account.
type Principal struct {
	RegistrationID string `json:"reg_no"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	FullName       string `json:"name"`
	DateOfBirth    string `json:"dob"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Program        string `json:"program"`
	AcademicYear   string `json:"year"`
	Address        string `json:"address"`
	GuardianName   string `json:"guardian"`
}

// Registration carries the fields supplied when a student registers.
type Registration struct {
	Username     string
	Password     string
	FullName     string
	DateOfBirth  string
	Phone        string
	Email        string
	Program      string
	AcademicYear string
	Address      string
	GuardianName string
}

// Question models an MCQ question. Correct indexes into Options as supplied.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Correct int      `json:"correct" yaml:"correct"`
}

// Category is a named, ordered group of questions.
type Category struct {
	Name      string     `json:"name" yaml:"name"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// ScoreRecord is the immutable result of one completed quiz attempt.
type ScoreRecord struct {
	Category   string
	Marks      int
	TotalMarks int
	TakenAt    time.Time
}

type scoreRecordJSON struct {
	Category   string `json:"category"`
	Marks      int    `json:"marks"`
	TotalMarks int    `json:"total_marks"`
	Datetime   string `json:"datetime"`
}

func (r ScoreRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoreRecordJSON{
		Category:   r.Category,
		Marks:      r.Marks,
		TotalMarks: r.TotalMarks,
		Datetime:   r.TakenAt.Format(TimestampLayout),
	})
}

func (r *ScoreRecord) UnmarshalJSON(data []byte) error {
	var raw scoreRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	takenAt, err := time.ParseInLocation(TimestampLayout, raw.Datetime, time.Local)
	if err != nil {
		return fmt.Errorf("parse score datetime %q: %w", raw.Datetime, err)
	}
	*r = ScoreRecord{
		Category:   raw.Category,
		Marks:      raw.Marks,
		TotalMarks: raw.TotalMarks,
		TakenAt:    takenAt,
	}
	return nil
}

// SessionKind tags the session state.
type SessionKind int

const (
	LoggedOut SessionKind = iota
	LoggedInStudent
	LoggedInAdmin
)

func (k SessionKind) String() string {
	switch k {
	case LoggedInStudent:
		return "student"
	case LoggedInAdmin:
		return "admin"
	default:
		return "logged-out"
	}
}

// Session is the single active-caller slot. RegistrationID is set only for students.
type Session struct {
	Kind           SessionKind
	RegistrationID string
}

// Identity is the resolved view of the current session.
type Identity struct {
	Kind      SessionKind
	Principal Principal // zero unless Kind == LoggedInStudent
}

// Snapshot is the persisted application state.
type Snapshot struct {
	Students map[string]Principal     `json:"students"`
	Scores   map[string][]ScoreRecord `json:"scores"`
}

// NewSnapshot returns a snapshot with non-nil collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Students: make(map[string]Principal),
		Scores:   make(map[string][]ScoreRecord),
	}
}
