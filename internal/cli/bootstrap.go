package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"lnct-quiz-console/internal/app"
	"lnct-quiz-console/internal/config"
	"lnct-quiz-console/internal/infra/catalogfile"
	"lnct-quiz-console/internal/infra/jsonfile"
	"lnct-quiz-console/internal/infra/memory"
	pginfra "lnct-quiz-console/internal/infra/postgres"
	redisinfra "lnct-quiz-console/internal/infra/redis"
	"lnct-quiz-console/internal/infra/sqlite"
	"lnct-quiz-console/internal/random"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// bootstrap wires a QuizService from cfg. The returned cleanup releases pools
// and connections in reverse order of acquisition.
func bootstrap(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if pool != nil {
		closers = append(closers, pool.Close)
	}

	loader, err := catalogLoader(cfg, pool)
	if err != nil {
		return nil, cleanup, err
	}
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var (
		catalog app.CatalogRepository
		history app.ScoreHistoryStore
	)
	if redisClient != nil {
		catalog = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
		history = redisinfra.NewScoreHistory(redisClient)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
		history = memory.NewScoreHistory()
	}

	store, closeStore, err := stateStore(ctx, cfg, pool)
	if err != nil {
		return nil, cleanup, err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	rnd, err := random.NewRand()
	if err != nil {
		return nil, cleanup, err
	}

	service := app.NewQuizService(app.Options{
		Admin: app.AdminCredential{
			Username: cfg.Admin.Username,
			Password: cfg.Admin.Password,
		},
		Catalog: catalog,
		History: history,
		Store:   store,
		Rand:    rnd,
	})
	return service, cleanup, nil
}

func needsPostgres(cfg config.Config) bool {
	return cfg.Storage.Driver == config.StoragePostgres || cfg.Catalog.Source == config.CatalogPostgres
}

func connectPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if !needsPostgres(cfg) {
		return nil, nil
	}
	if cfg.Postgres.URL == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

func catalogLoader(cfg config.Config, pool *pgxpool.Pool) (memory.CatalogLoader, error) {
	switch cfg.Catalog.Source {
	case "", config.CatalogBuiltin:
		return memory.NewStaticCatalogLoader(builtinCatalog()), nil
	case config.CatalogFile:
		if cfg.Catalog.File == "" {
			return nil, fmt.Errorf("catalog file not configured")
		}
		return catalogfile.Load(cfg.Catalog.File)
	case config.CatalogPostgres:
		return pginfra.NewCatalogLoader(pool), nil
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Catalog.Source)
	}
}

func stateStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (app.StateStore, func(), error) {
	switch cfg.Storage.Driver {
	case "", config.StorageJSON:
		store := jsonfile.NewStore(cfg.Storage.Path)
		log.Printf("using json state file %s", store.Path())
		return store, nil, nil
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using sqlite state store")
		return store, func() { _ = store.Close() }, nil
	case config.StoragePostgres:
		log.Printf("using postgres state store")
		return pginfra.NewStateStore(pool), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
