package cli

import (
	"context"
	"fmt"
	"log"

	"lnct-quiz-console/internal/config"
	"lnct-quiz-console/internal/domain"
	"lnct-quiz-console/internal/infra/catalogfile"
	pginfra "lnct-quiz-console/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCatalogCmd copies a catalog into Postgres.
func NewSeedCatalogCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Write the builtin (or --file) question bank into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedCatalog(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML catalog to import instead of the builtin bank")
	return cmd
}

func seedCatalog(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	categories := builtinCatalog()
	if file != "" {
		loader, err := catalogfile.Load(file)
		if err != nil {
			return err
		}
		categories = loader.All()
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pginfra.NewCatalogLoader(pool).SaveCategories(ctx, categories); err != nil {
		return err
	}
	log.Printf("seeded %d categories (%d questions)", len(categories), countQuestions(categories))
	return nil
}

func countQuestions(categories []domain.Category) int {
	n := 0
	for _, c := range categories {
		n += len(c.Questions)
	}
	return n
}
