package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lnct-quiz-console/internal/domain"
	"lnct-quiz-console/internal/infra/jsonfile"
)

func TestListCategoriesBuiltin(t *testing.T) {
	out := &bytes.Buffer{}
	if err := listCategories(context.Background(), filepath.Join(t.TempDir(), "none.yaml"), out); err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := "1. DSA (5 questions)\n2. DBMS (5 questions)\n3. PYTHON (5 questions)\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestPrintHistoryFromSavedState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(fmt.Sprintf("storage:\n  driver: json\n  path: %s\n", statePath)), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	snapshot := domain.NewSnapshot()
	snapshot.Students["LNCT001"] = domain.Principal{RegistrationID: "LNCT001", Username: "alice", Password: "pw", FullName: "Alice Verma"}
	snapshot.Scores["LNCT001"] = []domain.ScoreRecord{
		{Category: "DSA", Marks: 4, TotalMarks: 5, TakenAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.Local)},
	}
	if err := jsonfile.NewStore(statePath).Save(context.Background(), snapshot); err != nil {
		t.Fatalf("save state: %v", err)
	}

	out := &bytes.Buffer{}
	if err := printHistory(context.Background(), configPath, "LNCT001", out); err != nil {
		t.Fatalf("print history: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Alice Verma (LNCT001)", "DSA", "4/5", "2025-09-01 10:00:00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	if err := printHistory(context.Background(), configPath, "LNCT404", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown student error")
	}
}

func TestBuiltinCatalogIsWellFormed(t *testing.T) {
	for _, c := range builtinCatalog() {
		for _, q := range c.Questions {
			if len(q.Options) != 4 || q.Correct < 0 || q.Correct >= len(q.Options) {
				t.Fatalf("%s: malformed question %+v", c.Name, q)
			}
		}
	}
}
