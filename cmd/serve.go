package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/calendarai/calendarai/internal/app"
)

func newServeCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Init(w)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return app.Serve(cfg)
		},
	}
}
