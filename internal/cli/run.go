package cli

import (
	"context"
	"io"
	"log"
	"os/signal"
	"syscall"

	"lnct-quiz-console/internal/config"
	"github.com/spf13/cobra"
)

// NewRunCmd builds the CLI subcommand that starts the interactive console.
func NewRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive student console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), *configPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runConsole(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := bootstrap(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	if err := service.Load(ctx); err != nil {
		log.Printf("could not load saved state, starting empty: %v", err)
	}
	if cfg.Seed.SampleStudent && service.SeedIfEmpty(sampleStudent()) {
		log.Printf("seeded sample student account")
	}

	return NewConsole(service, in, out, cfg.Storage.Autosave).Run(ctx)
}
