package cli

import (
	"context"
	"fmt"
	"io"

	"lnct-quiz-console/internal/config"
	"github.com/spf13/cobra"
)

// NewHistoryCmd prints one student's saved score history.
func NewHistoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <registration-id>",
		Short: "Show a student's saved quiz scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHistory(cmd.Context(), *configPath, args[0], cmd.OutOrStdout())
		},
	}
}

func printHistory(ctx context.Context, configPath, registrationID string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	service, cleanup, err := bootstrap(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}
	if err := service.Load(ctx); err != nil {
		return err
	}

	principal, err := service.Principal(registrationID)
	if err != nil {
		return fmt.Errorf("student %s: %w", registrationID, err)
	}
	records, err := service.HistoryFor(ctx, registrationID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Quiz Score History for %s (%s)\n", principal.FullName, principal.RegistrationID)
	writeScoreTable(out, records)
	return nil
}
