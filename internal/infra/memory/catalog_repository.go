package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"lnct-quiz-console/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches quiz categories from a backing store (file, Postgres, builtin bank).
type CatalogLoader interface {
	Categories(ctx context.Context) ([]string, error)
	LoadCategory(ctx context.Context, name string) (domain.Category, error)
}

// CatalogRepository caches categories with TTL to avoid repeated loader hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCategory
}

type cachedCategory struct {
	category  domain.Category
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

// Categories is not cached; loaders keep the list cheap and ordered.
func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	return r.loader.Categories(ctx)
}

func (r *CatalogRepository) Category(ctx context.Context, name string) (domain.Category, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.category, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.category, nil
		}
		r.mu.RUnlock()

		category, err := r.loader.LoadCategory(ctx, name)
		if err != nil {
			return domain.Category{}, err
		}

		r.mu.Lock()
		r.cache[name] = cachedCategory{
			category:  category,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter so entries loaded together do not expire together
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves an ordered, in-memory list of categories.
type StaticCatalogLoader struct {
	order      []string
	categories map[string]domain.Category
}

// NewStaticCatalogLoader keeps the given order. A later duplicate name replaces
// the earlier category's questions but keeps its position.
func NewStaticCatalogLoader(categories []domain.Category) *StaticCatalogLoader {
	l := &StaticCatalogLoader{categories: make(map[string]domain.Category, len(categories))}
	for _, c := range categories {
		if _, seen := l.categories[c.Name]; !seen {
			l.order = append(l.order, c.Name)
		}
		l.categories[c.Name] = c
	}
	return l
}

func (l *StaticCatalogLoader) Categories(_ context.Context) ([]string, error) {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out, nil
}

func (l *StaticCatalogLoader) LoadCategory(_ context.Context, name string) (domain.Category, error) {
	if c, ok := l.categories[name]; ok {
		return c, nil
	}
	return domain.Category{}, domain.ErrUnknownCategory
}

// All returns every category in order.
func (l *StaticCatalogLoader) All() []domain.Category {
	out := make([]domain.Category, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.categories[name])
	}
	return out
}
