package cli

import (
	"context"
	"fmt"
	"io"

	"lnct-quiz-console/internal/config"
	"github.com/spf13/cobra"
)

// NewCategoriesCmd prints the configured catalog.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List quiz categories and their question counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCategories(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func listCategories(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	loader, err := catalogLoader(cfg, pool)
	if err != nil {
		return err
	}

	names, err := loader.Categories(ctx)
	if err != nil {
		return err
	}
	for i, name := range names {
		category, err := loader.LoadCategory(ctx, name)
		if err != nil {
			return fmt.Errorf("load category %s: %w", name, err)
		}
		fmt.Fprintf(out, "%d. %s (%d questions)\n", i+1, category.Name, len(category.Questions))
	}
	return nil
}
