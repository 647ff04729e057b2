package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"lnct-quiz-console/internal/domain"
	"lnct-quiz-console/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogRepository caches each category as JSON in Redis and falls back to a
// loader on cache miss.
// Categories are stored as: SET catalog:{name} {json} EX {ttl}
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	return r.loader.Categories(ctx)
}

func (r *CatalogRepository) Category(ctx context.Context, name string) (domain.Category, error) {
	key := r.key(name)
	if category, ok := r.cached(ctx, key); ok {
		return category, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if category, ok := r.cached(ctx, key); ok {
			return category, nil
		}

		category, err := r.loader.LoadCategory(ctx, name)
		if err != nil {
			return domain.Category{}, err
		}

		payload, err := json.Marshal(category)
		if err == nil {
			// best-effort; a failed write only costs a reload next time
			_ = r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err()
		}
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *CatalogRepository) cached(ctx context.Context, key string) (domain.Category, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Category{}, false
	}
	var category domain.Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return domain.Category{}, false
	}
	return category, true
}

func (r *CatalogRepository) key(name string) string {
	return "catalog:" + name
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
