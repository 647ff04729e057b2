package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lnct-quiz-console/internal/domain"
)

func sampleSnapshot() domain.Snapshot {
	snapshot := domain.NewSnapshot()
	snapshot.Students["LNCT001"] = domain.Principal{
		RegistrationID: "LNCT001",
		Username:       "alice",
		Password:       "pw",
		FullName:       "Alice Verma",
		Program:        "B.Tech CSE",
	}
	snapshot.Scores["LNCT001"] = []domain.ScoreRecord{
		{Category: "DSA", Marks: 4, TotalMarks: 5, TakenAt: time.Date(2025, 4, 1, 9, 15, 30, 0, time.Local)},
		{Category: "DBMS", Marks: 2, TotalMarks: 5, TakenAt: time.Date(2025, 4, 2, 18, 0, 1, 0, time.Local)},
	}
	return snapshot
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))

	want := sampleSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Students["LNCT001"] != want.Students["LNCT001"] {
		t.Fatalf("student mismatch: %+v", got.Students["LNCT001"])
	}
	if len(got.Scores["LNCT001"]) != 2 {
		t.Fatalf("expected 2 scores, got %+v", got.Scores)
	}
	for i, r := range got.Scores["LNCT001"] {
		w := want.Scores["LNCT001"][i]
		if r.Category != w.Category || r.Marks != w.Marks || !r.TakenAt.Equal(w.TakenAt) {
			t.Fatalf("score %d mismatch: %+v vs %+v", i, r, w)
		}
	}
}

func TestStoreWritesDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := NewStore(path).Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var doc map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := doc["students"]["LNCT001"]; !ok {
		t.Fatalf("missing students entry: %s", data)
	}
	for _, key := range []string{`"reg_no"`, `"total_marks"`, `"datetime": "2025-04-01 09:15:30"`, `"guardian"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in document:\n%s", key, data)
		}
	}
}

func TestStoreLoadMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewStore(filepath.Join(dir, "missing.json")).Load(context.Background()); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	snapshot, err := NewStore(empty).Load(context.Background())
	if err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if snapshot.Students == nil || snapshot.Scores == nil || len(snapshot.Students) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"students": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewStore(path).Load(context.Background())
	if err == nil || errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "state.json"))
	for i := 0; i < 2; i++ {
		if err := store.Save(context.Background(), sampleSnapshot()); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only state.json, got %d entries", len(entries))
	}
}
