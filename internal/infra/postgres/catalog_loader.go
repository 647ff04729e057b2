package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lnct-quiz-console/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads quiz categories stored as JSONB in Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) Categories(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT name FROM quiz_categories ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (l *CatalogLoader) LoadCategory(ctx context.Context, name string) (domain.Category, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quiz_categories WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrUnknownCategory
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("load category: %w", err)
	}
	var category domain.Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return domain.Category{}, fmt.Errorf("unmarshal category: %w", err)
	}
	category.Name = name
	return category, nil
}

// SaveCategories upserts categories, keeping their slice order as position.
func (l *CatalogLoader) SaveCategories(ctx context.Context, categories []domain.Category) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for pos, category := range categories {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("marshal category %s: %w", category.Name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO quiz_categories (name, position, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (name) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data`,
			category.Name, pos, string(data)); err != nil {
			return fmt.Errorf("upsert category %s: %w", category.Name, err)
		}
	}
	return tx.Commit(ctx)
}
