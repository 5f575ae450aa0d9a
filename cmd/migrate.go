package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/calendarai/calendarai/internal/app"
)

func newMigrateCmd(w io.Writer) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply all pending migrations to DATABASE_URL.
With --down every applied migration is rolled back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return app.Migrate(cfg, down)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}
