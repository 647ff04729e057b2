// Package jsonfile persists application state as a single JSON document:
//
//	{"students": {"LNCT001": {...}}, "scores": {"LNCT001": [{...}]}}
//
// Saves write a temporary file next to the target and rename it into place.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lnct-quiz-console/internal/domain"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "quiz_app_data.json"

// Store reads and writes the state document at path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns domain.ErrStoreNotFound when the file does not exist.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, domain.ErrStoreNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewSnapshot(), nil
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if snapshot.Students == nil {
		snapshot.Students = make(map[string]domain.Principal)
	}
	if snapshot.Scores == nil {
		snapshot.Scores = make(map[string][]domain.ScoreRecord)
	}
	return snapshot, nil
}

func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshot.Students == nil {
		snapshot.Students = make(map[string]domain.Principal)
	}
	if snapshot.Scores == nil {
		snapshot.Scores = make(map[string][]domain.ScoreRecord)
	}
	data, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
