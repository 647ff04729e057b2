package catalogfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleDoc = `
categories:
  - name: NETWORKS
    questions:
      - prompt: Default HTTPS port?
        options: ["80", "443"]
        correct: 1
  - name: OS
    questions:
      - prompt: Which state waits for I/O?
        options: [Ready, Blocked, Running]
        correct: 1
`

func TestLoadKeepsFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	names, _ := loader.Categories(context.Background())
	if len(names) != 2 || names[0] != "NETWORKS" || names[1] != "OS" {
		t.Fatalf("unexpected order %v", names)
	}
	category, err := loader.LoadCategory(context.Background(), "OS")
	if err != nil {
		t.Fatalf("load OS: %v", err)
	}
	if q := category.Questions[0]; q.Options[q.Correct] != "Blocked" {
		t.Fatalf("unexpected question %+v", q)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"missing name":  "categories:\n  - questions: []\n",
		"no options":    "categories:\n  - name: A\n    questions:\n      - prompt: p\n        options: []\n",
		"correct range": "categories:\n  - name: A\n    questions:\n      - prompt: p\n        options: [x]\n        correct: 3\n",
		"bad yaml":      "categories: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
