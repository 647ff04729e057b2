package redis

import (
	"context"
	"testing"
	"time"

	"lnct-quiz-console/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestScoreHistoryAppendAndRead(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	h := NewScoreHistory(newClient(mr))
	taken := time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local)

	if err := h.Append(ctx, "LNCT001", domain.ScoreRecord{Category: "DSA", Marks: 3, TotalMarks: 5, TakenAt: taken}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := h.Append(ctx, "LNCT001", domain.ScoreRecord{Category: "DBMS", Marks: 5, TotalMarks: 5, TakenAt: taken}); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := h.HistoryFor(ctx, "LNCT001")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 2 || records[0].Category != "DSA" || records[1].Category != "DBMS" {
		t.Fatalf("unexpected records %+v", records)
	}
	if !records[0].TakenAt.Equal(taken) {
		t.Fatalf("timestamp not preserved: %v", records[0].TakenAt)
	}

	none, err := h.HistoryFor(ctx, "LNCT002")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty history, got %v %v", none, err)
	}
}

func TestScoreHistoryReplaceAndAll(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	h := NewScoreHistory(newClient(mr))
	_ = h.Append(ctx, "LNCT009", domain.ScoreRecord{Category: "DSA", TakenAt: time.Now().Truncate(time.Second)})
	mr.Set("catalog:DSA", "{}")

	err = h.Replace(ctx, map[string][]domain.ScoreRecord{
		"LNCT001": {{Category: "PYTHON", Marks: 2, TotalMarks: 5, TakenAt: time.Now().Truncate(time.Second)}},
		"LNCT002": {},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	all, err := h.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || len(all["LNCT001"]) != 1 || all["LNCT001"][0].Category != "PYTHON" {
		t.Fatalf("unexpected histories %+v", all)
	}
	if !mr.Exists("catalog:DSA") {
		t.Fatalf("replace must only touch score keys")
	}
}
