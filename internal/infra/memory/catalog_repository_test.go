package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"lnct-quiz-console/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCategories())}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.Category(context.Background(), "DSA"); err != nil {
		t.Fatalf("get category: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.Category(context.Background(), "DSA"); err != nil {
		t.Fatalf("get category 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCategories())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.Category(context.Background(), "DSA")
	now = now.Add(2 * time.Minute)
	_, _ = repo.Category(context.Background(), "DSA")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryUnknownCategoryNotCached(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCategories())}
	repo := NewCatalogRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.Category(context.Background(), "NOPE"); !errors.Is(err, domain.ErrUnknownCategory) {
			t.Fatalf("expected unknown category, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("misses must not be cached, loader calls %d", loader.calls)
	}
}

func TestStaticCatalogLoaderKeepsOrder(t *testing.T) {
	categories := append(sampleCategories(), domain.Category{
		Name:      "DSA",
		Questions: []domain.Question{{Prompt: "replaced", Options: []string{"x"}}},
	})
	loader := NewStaticCatalogLoader(categories)

	names, _ := loader.Categories(context.Background())
	if len(names) != 2 || names[0] != "DSA" || names[1] != "DBMS" {
		t.Fatalf("unexpected order %v", names)
	}
	dsa, _ := loader.LoadCategory(context.Background(), "DSA")
	if len(dsa.Questions) != 1 || dsa.Questions[0].Prompt != "replaced" {
		t.Fatalf("later duplicate should win, got %+v", dsa)
	}

	names[0] = "mutated"
	again, _ := loader.Categories(context.Background())
	if again[0] != "DSA" {
		t.Fatalf("Categories must return a copy")
	}
	if all := loader.All(); len(all) != 2 || all[1].Name != "DBMS" {
		t.Fatalf("All out of order: %+v", all)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCategory(ctx context.Context, name string) (domain.Category, error) {
	l.calls++
	return l.CatalogLoader.LoadCategory(ctx, name)
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{
			Name: "DSA",
			Questions: []domain.Question{
				{Prompt: "Which data structure is used for recursion?", Options: []string{"Stack", "Queue"}, Correct: 0},
			},
		},
		{
			Name: "DBMS",
			Questions: []domain.Question{
				{Prompt: "What does SQL stand for?", Options: []string{"Structured Query Language", "Simple Query Logic"}, Correct: 0},
			},
		},
	}
}
