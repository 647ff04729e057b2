package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"lnct-quiz-console/internal/domain"
)

const maxOptions = 26

// CatalogRepository exposes quiz categories (from cache/backing store).
type CatalogRepository interface {
	Categories(ctx context.Context) ([]string, error)
	Category(ctx context.Context, name string) (domain.Category, error)
}

// ScoreHistoryStore owns the append-only score history of every student.
type ScoreHistoryStore interface {
	Append(ctx context.Context, registrationID string, record domain.ScoreRecord) error
	HistoryFor(ctx context.Context, registrationID string) ([]domain.ScoreRecord, error)
	All(ctx context.Context) (map[string][]domain.ScoreRecord, error)
	Replace(ctx context.Context, histories map[string][]domain.ScoreRecord) error
}

// StudentGate authorizes student-only operations.
type StudentGate interface {
	RequireStudent() (string, error)
}

// Answerer supplies a label for a presented question. Implementations own any
// re-prompting; an invalid label aborts the attempt.
type Answerer interface {
	Answer(ctx context.Context, q PresentedQuestion) (string, error)
}

// AnswerFunc adapts a function to Answerer.
type AnswerFunc func(ctx context.Context, q PresentedQuestion) (string, error)

func (f AnswerFunc) Answer(ctx context.Context, q PresentedQuestion) (string, error) {
	return f(ctx, q)
}

// PresentedOption is one option as shown during an attempt.
type PresentedOption struct {
	Label string
	Text  string
}

// PresentedQuestion is a question with its options in attempt order.
type PresentedQuestion struct {
	Number  int
	Total   int
	Prompt  string
	Options []PresentedOption

	original []int // label position -> original option index
	correct  int
}

// Labels returns the valid answer labels in display order.
func (q PresentedQuestion) Labels() []string {
	labels := make([]string, len(q.Options))
	for i, opt := range q.Options {
		labels[i] = opt.Label
	}
	return labels
}

// Resolve maps a label (case-insensitive, surrounding space ignored) to the
// original option index.
func (q PresentedQuestion) Resolve(label string) (int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	for i, opt := range q.Options {
		if opt.Label == normalized {
			return q.original[i], nil
		}
	}
	return 0, domain.ErrInvalidAnswer
}

// AnswerOutcome reports how a submitted label scored.
type AnswerOutcome struct {
	Correct      bool
	CorrectLabel string
	CorrectText  string
}

// QuizEngine runs quiz attempts for the logged-in student.
type QuizEngine struct {
	gate    StudentGate
	catalog CatalogRepository
	history ScoreHistoryStore
	now     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewQuizEngine builds an engine. A nil rnd is seeded from the wall clock.
func NewQuizEngine(gate StudentGate, catalog CatalogRepository, history ScoreHistoryStore, rnd *rand.Rand) *QuizEngine {
	return NewQuizEngineWithClock(gate, catalog, history, rnd, time.Now)
}

// NewQuizEngineWithClock allows deterministic timestamps in tests.
func NewQuizEngineWithClock(gate StudentGate, catalog CatalogRepository, history ScoreHistoryStore, rnd *rand.Rand, now func() time.Time) *QuizEngine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizEngine{
		gate:    gate,
		catalog: catalog,
		history: history,
		now:     now,
		rnd:     rnd,
	}
}

// ListCategories returns category names in catalog order.
func (e *QuizEngine) ListCategories(ctx context.Context) ([]string, error) {
	return e.catalog.Categories(ctx)
}

// Start opens an attempt with freshly shuffled questions and options.
func (e *QuizEngine) Start(ctx context.Context, category string) (*Attempt, error) {
	registrationID, err := e.gate.RequireStudent()
	if err != nil {
		return nil, err
	}
	cat, err := e.catalog.Category(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(cat.Questions) == 0 {
		return nil, domain.ErrEmptyCategory
	}
	questions, err := e.present(cat.Questions)
	if err != nil {
		return nil, err
	}
	return &Attempt{
		engine:         e,
		registrationID: registrationID,
		category:       cat.Name,
		questions:      questions,
	}, nil
}

// AttemptQuiz runs a whole attempt, asking answerer for every question.
func (e *QuizEngine) AttemptQuiz(ctx context.Context, category string, answerer Answerer) (domain.ScoreRecord, error) {
	attempt, err := e.Start(ctx, category)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	for {
		q, ok := attempt.Current()
		if !ok {
			break
		}
		label, err := answerer.Answer(ctx, q)
		if err != nil {
			return domain.ScoreRecord{}, err
		}
		if _, err := attempt.Submit(label); err != nil {
			return domain.ScoreRecord{}, err
		}
	}
	return attempt.Finish(ctx)
}

// present shuffles a copy of the question order and each question's options.
// The catalog slices are never reordered.
func (e *QuizEngine) present(questions []domain.Question) ([]PresentedQuestion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order := e.rnd.Perm(len(questions))
	presented := make([]PresentedQuestion, len(questions))
	for pos, idx := range order {
		q := questions[idx]
		if len(q.Options) == 0 || len(q.Options) > maxOptions || q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("%w: %q", domain.ErrMalformedQuestion, q.Prompt)
		}
		perm := e.rnd.Perm(len(q.Options))
		options := make([]PresentedOption, len(perm))
		for j, orig := range perm {
			options[j] = PresentedOption{Label: optionLabel(j), Text: q.Options[orig]}
		}
		presented[pos] = PresentedQuestion{
			Number:   pos + 1,
			Total:    len(questions),
			Prompt:   q.Prompt,
			Options:  options,
			original: perm,
			correct:  q.Correct,
		}
	}
	return presented, nil
}

func optionLabel(pos int) string {
	return string(rune('A' + pos))
}

// Attempt is one in-progress quiz run. It is not safe for concurrent use.
type Attempt struct {
	engine         *QuizEngine
	registrationID string
	category       string
	questions      []PresentedQuestion

	answered int
	marks    int
	record   *domain.ScoreRecord
}

func (a *Attempt) Category() string { return a.category }

func (a *Attempt) Total() int { return len(a.questions) }

func (a *Attempt) Marks() int { return a.marks }

// Current returns the next unanswered question.
func (a *Attempt) Current() (PresentedQuestion, bool) {
	if a.answered >= len(a.questions) {
		return PresentedQuestion{}, false
	}
	return a.questions[a.answered], true
}

// Submit scores label against the current question. An invalid label returns
// domain.ErrInvalidAnswer and leaves the attempt where it was.
func (a *Attempt) Submit(label string) (AnswerOutcome, error) {
	q, ok := a.Current()
	if !ok {
		return AnswerOutcome{}, domain.ErrAttemptFinished
	}
	chosen, err := q.Resolve(label)
	if err != nil {
		return AnswerOutcome{}, err
	}

	outcome := AnswerOutcome{Correct: chosen == q.correct}
	for i, orig := range q.original {
		if orig == q.correct {
			outcome.CorrectLabel = q.Options[i].Label
			outcome.CorrectText = q.Options[i].Text
			break
		}
	}
	if outcome.Correct {
		a.marks++
	}
	a.answered++
	return outcome, nil
}

// Finish records the score once every question is answered. Calling it again
// returns the same record without appending twice. The student who started the
// attempt must still hold the session.
func (a *Attempt) Finish(ctx context.Context) (domain.ScoreRecord, error) {
	if a.record != nil {
		return *a.record, nil
	}
	if a.answered < len(a.questions) {
		return domain.ScoreRecord{}, domain.ErrAttemptIncomplete
	}
	current, err := a.engine.gate.RequireStudent()
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if current != a.registrationID {
		return domain.ScoreRecord{}, domain.ErrSessionChanged
	}
	record := domain.ScoreRecord{
		Category:   a.category,
		Marks:      a.marks,
		TotalMarks: len(a.questions),
		TakenAt:    a.engine.now().Truncate(time.Second),
	}
	if err := a.engine.history.Append(ctx, a.registrationID, record); err != nil {
		return domain.ScoreRecord{}, err
	}
	a.record = &record
	return record, nil
}
