package app_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"lnct-quiz-console/internal/app"
	"lnct-quiz-console/internal/domain"
	"lnct-quiz-console/internal/infra/memory"
)

type fixedGate struct {
	id  string
	err error
}

func (g fixedGate) RequireStudent() (string, error) { return g.id, g.err }

func testCatalog() []domain.Category {
	return []domain.Category{
		{
			Name: "MATH",
			Questions: []domain.Question{
				{Prompt: "2 + 2?", Options: []string{"3", "4", "5"}, Correct: 1},
				{Prompt: "3 * 3?", Options: []string{"6", "9", "12", "33"}, Correct: 1},
				{Prompt: "10 / 2?", Options: []string{"5", "2"}, Correct: 0},
			},
		},
		{Name: "EMPTY"},
		{
			Name: "BROKEN",
			Questions: []domain.Question{
				{Prompt: "bad index", Options: []string{"a", "b"}, Correct: 5},
			},
		},
	}
}

func correctText(catalog []domain.Category) map[string]string {
	out := make(map[string]string)
	for _, c := range catalog {
		for _, q := range c.Questions {
			if q.Correct >= 0 && q.Correct < len(q.Options) {
				out[q.Prompt] = q.Options[q.Correct]
			}
		}
	}
	return out
}

func labelFor(q app.PresentedQuestion, text string) string {
	for _, opt := range q.Options {
		if opt.Text == text {
			return opt.Label
		}
	}
	return ""
}

func wrongLabel(q app.PresentedQuestion, text string) string {
	for _, opt := range q.Options {
		if opt.Text != text {
			return opt.Label
		}
	}
	return ""
}

func newTestEngine(catalog []domain.Category, gate app.StudentGate, clock func() time.Time) (*app.QuizEngine, *memory.ScoreHistory) {
	history := memory.NewScoreHistory()
	repo := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(catalog), time.Minute)
	return app.NewQuizEngineWithClock(gate, repo, history, rand.New(rand.NewSource(7)), clock), history
}

func TestAttemptPresentsEveryQuestionOnce(t *testing.T) {
	catalog := testCatalog()
	engine, _ := newTestEngine(catalog, fixedGate{id: "LNCT001"}, time.Now)

	attempt, err := engine.Start(context.Background(), "MATH")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if attempt.Total() != 3 {
		t.Fatalf("expected 3 questions, got %d", attempt.Total())
	}

	answers := correctText(catalog)
	seen := make(map[string]bool)
	for n := 1; ; n++ {
		q, ok := attempt.Current()
		if !ok {
			break
		}
		if q.Number != n || q.Total != 3 {
			t.Fatalf("unexpected numbering %d/%d at step %d", q.Number, q.Total, n)
		}
		if seen[q.Prompt] {
			t.Fatalf("question %q presented twice", q.Prompt)
		}
		seen[q.Prompt] = true
		for i, opt := range q.Options {
			if opt.Label != string(rune('A'+i)) {
				t.Fatalf("labels must be contiguous from A, got %s at %d", opt.Label, i)
			}
		}
		if _, err := attempt.Submit(labelFor(q, answers[q.Prompt])); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct questions, got %d", len(seen))
	}

	if catalog[0].Questions[0].Prompt != "2 + 2?" || catalog[0].Questions[0].Options[1] != "4" {
		t.Fatalf("catalog was reordered: %+v", catalog[0].Questions[0])
	}
}

func TestSubmitScoresAndNormalizesLabels(t *testing.T) {
	catalog := testCatalog()
	engine, _ := newTestEngine(catalog, fixedGate{id: "LNCT001"}, time.Now)
	attempt, err := engine.Start(context.Background(), "MATH")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answers := correctText(catalog)

	q, _ := attempt.Current()
	outcome, err := attempt.Submit("  " + strings.ToLower(labelFor(q, answers[q.Prompt])) + " ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Correct || outcome.CorrectText != answers[q.Prompt] {
		t.Fatalf("expected correct outcome, got %+v", outcome)
	}

	q, _ = attempt.Current()
	outcome, err = attempt.Submit(wrongLabel(q, answers[q.Prompt]))
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if outcome.Correct {
		t.Fatalf("expected incorrect outcome")
	}
	if outcome.CorrectLabel != labelFor(q, answers[q.Prompt]) {
		t.Fatalf("correct label %s does not match presented option", outcome.CorrectLabel)
	}
	if attempt.Marks() != 1 {
		t.Fatalf("expected 1 mark, got %d", attempt.Marks())
	}
}

func TestInvalidLabelLeavesAttemptUnchanged(t *testing.T) {
	engine, _ := newTestEngine(testCatalog(), fixedGate{id: "LNCT001"}, time.Now)
	attempt, _ := engine.Start(context.Background(), "MATH")

	before, _ := attempt.Current()
	for _, label := range []string{"", "Z", "AB", "1"} {
		if _, err := attempt.Submit(label); !errors.Is(err, domain.ErrInvalidAnswer) {
			t.Fatalf("label %q: expected invalid answer, got %v", label, err)
		}
	}
	after, _ := attempt.Current()
	if before.Prompt != after.Prompt || attempt.Marks() != 0 {
		t.Fatalf("attempt advanced on invalid input")
	}
}

func TestFinishRecordsOnce(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 11, 12, 987654321, time.Local)
	engine, history := newTestEngine(testCatalog(), fixedGate{id: "LNCT001"}, func() time.Time { return now })
	ctx := context.Background()

	attempt, _ := engine.Start(ctx, "MATH")
	if _, err := attempt.Finish(ctx); !errors.Is(err, domain.ErrAttemptIncomplete) {
		t.Fatalf("expected incomplete, got %v", err)
	}
	for {
		q, ok := attempt.Current()
		if !ok {
			break
		}
		_, _ = attempt.Submit(q.Options[0].Label)
	}
	if _, err := attempt.Submit("A"); !errors.Is(err, domain.ErrAttemptFinished) {
		t.Fatalf("expected finished, got %v", err)
	}

	record, err := attempt.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := attempt.Finish(ctx); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if record.Category != "MATH" || record.TotalMarks != 3 || record.Marks != attempt.Marks() {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.TakenAt.Equal(now.Truncate(time.Second)) {
		t.Fatalf("expected timestamp truncated to seconds, got %v", record.TakenAt)
	}

	stored, _ := history.HistoryFor(ctx, "LNCT001")
	if len(stored) != 1 {
		t.Fatalf("expected one stored record, got %d", len(stored))
	}
}

func TestStartFailures(t *testing.T) {
	ctx := context.Background()

	engine, _ := newTestEngine(testCatalog(), fixedGate{err: domain.ErrAdminNotAllowed}, time.Now)
	if _, err := engine.Start(ctx, "MATH"); !errors.Is(err, domain.ErrAdminNotAllowed) {
		t.Fatalf("expected admin rejection, got %v", err)
	}

	engine, history := newTestEngine(testCatalog(), fixedGate{id: "LNCT001"}, time.Now)
	if _, err := engine.Start(ctx, "HISTORY"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
	if _, err := engine.Start(ctx, "EMPTY"); !errors.Is(err, domain.ErrEmptyCategory) {
		t.Fatalf("expected empty category, got %v", err)
	}
	if _, err := engine.Start(ctx, "BROKEN"); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question, got %v", err)
	}
	all, _ := history.All(ctx)
	if len(all) != 0 {
		t.Fatalf("failed starts must not record scores, got %v", all)
	}
}

func TestAttemptQuizWithAnswerer(t *testing.T) {
	catalog := testCatalog()
	engine, history := newTestEngine(catalog, fixedGate{id: "LNCT001"}, time.Now)
	answers := correctText(catalog)
	ctx := context.Background()

	record, err := engine.AttemptQuiz(ctx, "MATH", app.AnswerFunc(func(_ context.Context, q app.PresentedQuestion) (string, error) {
		return labelFor(q, answers[q.Prompt]), nil
	}))
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if record.Marks != 3 || record.TotalMarks != 3 {
		t.Fatalf("expected full marks, got %+v", record)
	}

	stop := errors.New("input closed")
	_, err = engine.AttemptQuiz(ctx, "MATH", app.AnswerFunc(func(context.Context, app.PresentedQuestion) (string, error) {
		return "", stop
	}))
	if !errors.Is(err, stop) {
		t.Fatalf("expected answerer error, got %v", err)
	}
	stored, _ := history.HistoryFor(ctx, "LNCT001")
	if len(stored) != 1 {
		t.Fatalf("aborted attempt must not be recorded, got %d records", len(stored))
	}
}

func TestSameSeedSameOrder(t *testing.T) {
	order := func() []string {
		engine, _ := newTestEngine(testCatalog(), fixedGate{id: "LNCT001"}, time.Now)
		attempt, err := engine.Start(context.Background(), "MATH")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		var out []string
		for {
			q, ok := attempt.Current()
			if !ok {
				return out
			}
			out = append(out, q.Prompt+"|"+q.Options[0].Text)
			_, _ = attempt.Submit("A")
		}
	}
	first, second := order(), order()
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Fatalf("seeded engines diverged: %v vs %v", first, second)
	}
}

type switchableGate struct {
	id  string
	err error
}

func (g *switchableGate) RequireStudent() (string, error) { return g.id, g.err }

func answerAll(attempt *app.Attempt) {
	for {
		q, ok := attempt.Current()
		if !ok {
			return
		}
		_, _ = attempt.Submit(q.Options[0].Label)
	}
}

func TestFinishRequiresSameStudent(t *testing.T) {
	ctx := context.Background()
	gate := &switchableGate{id: "LNCT001"}
	engine, history := newTestEngine(testCatalog(), gate, time.Now)

	attempt, err := engine.Start(ctx, "MATH")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAll(attempt)

	gate.id = "LNCT002"
	if _, err := attempt.Finish(ctx); !errors.Is(err, domain.ErrSessionChanged) {
		t.Fatalf("expected session changed, got %v", err)
	}

	gate.id, gate.err = "", domain.ErrNotLoggedIn
	if _, err := attempt.Finish(ctx); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}

	all, _ := history.All(ctx)
	if len(all) != 0 {
		t.Fatalf("no score may be recorded after the session changed, got %+v", all)
	}

	gate.id, gate.err = "LNCT001", nil
	if _, err := attempt.Finish(ctx); err != nil {
		t.Fatalf("finish for original student: %v", err)
	}
	if records, _ := history.HistoryFor(ctx, "LNCT001"); len(records) != 1 {
		t.Fatalf("expected one record for LNCT001, got %d", len(records))
	}
}
