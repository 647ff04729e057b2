package memory

import (
	"context"
	"sync"

	"lnct-quiz-console/internal/domain"
)

// ScoreHistory is an in-memory implementation of app.ScoreHistoryStore.
type ScoreHistory struct {
	mu      sync.RWMutex
	records map[string][]domain.ScoreRecord
}

func NewScoreHistory() *ScoreHistory {
	return &ScoreHistory{
		records: make(map[string][]domain.ScoreRecord),
	}
}

func (h *ScoreHistory) Append(_ context.Context, registrationID string, record domain.ScoreRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[registrationID] = append(h.records[registrationID], record)
	return nil
}

func (h *ScoreHistory) HistoryFor(_ context.Context, registrationID string) ([]domain.ScoreRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	records := h.records[registrationID]
	out := make([]domain.ScoreRecord, len(records))
	copy(out, records)
	return out, nil
}

func (h *ScoreHistory) All(_ context.Context) (map[string][]domain.ScoreRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string][]domain.ScoreRecord, len(h.records))
	for id, records := range h.records {
		cp := make([]domain.ScoreRecord, len(records))
		copy(cp, records)
		out[id] = cp
	}
	return out, nil
}

func (h *ScoreHistory) Replace(_ context.Context, histories map[string][]domain.ScoreRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = make(map[string][]domain.ScoreRecord, len(histories))
	for id, records := range histories {
		cp := make([]domain.ScoreRecord, len(records))
		copy(cp, records)
		h.records[id] = cp
	}
	return nil
}
