package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lnct-quiz-console/internal/domain"
	"github.com/redis/go-redis/v9"
)

const scoreKeyPrefix = "scores:"

// ScoreHistory keeps one Redis list per student.
// Records are stored as: RPUSH scores:{registrationID} {json}
type ScoreHistory struct {
	client *redis.Client
}

func NewScoreHistory(client *redis.Client) *ScoreHistory {
	return &ScoreHistory{client: client}
}

func (h *ScoreHistory) Append(ctx context.Context, registrationID string, record domain.ScoreRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal score record: %w", err)
	}
	if err := h.client.RPush(ctx, h.key(registrationID), payload).Err(); err != nil {
		return fmt.Errorf("append score record: %w", err)
	}
	return nil
}

func (h *ScoreHistory) HistoryFor(ctx context.Context, registrationID string) ([]domain.ScoreRecord, error) {
	raw, err := h.client.LRange(ctx, h.key(registrationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read score history: %w", err)
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for _, item := range raw {
		var record domain.ScoreRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("unmarshal score record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (h *ScoreHistory) All(ctx context.Context) (map[string][]domain.ScoreRecord, error) {
	keys, err := h.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.ScoreRecord, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, scoreKeyPrefix)
		records, err := h.HistoryFor(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = records
	}
	return out, nil
}

// Replace swaps every history for histories in a single MULTI/EXEC.
func (h *ScoreHistory) Replace(ctx context.Context, histories map[string][]domain.ScoreRecord) error {
	existing, err := h.keys(ctx)
	if err != nil {
		return err
	}

	pipe := h.client.TxPipeline()
	if len(existing) > 0 {
		pipe.Del(ctx, existing...)
	}
	for id, records := range histories {
		if len(records) == 0 {
			continue
		}
		values := make([]interface{}, 0, len(records))
		for _, record := range records {
			payload, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal score record: %w", err)
			}
			values = append(values, payload)
		}
		pipe.RPush(ctx, h.key(id), values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace score histories: %w", err)
	}
	return nil
}

func (h *ScoreHistory) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := h.client.Scan(ctx, 0, scoreKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan score keys: %w", err)
	}
	return keys, nil
}

func (h *ScoreHistory) key(registrationID string) string {
	return scoreKeyPrefix + registrationID
}
