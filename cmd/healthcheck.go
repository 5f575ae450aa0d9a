package cmd

import (
	"github.com/spf13/cobra"

	"github.com/calendarai/calendarai/internal/app"
)

func newHealthcheckCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// フル初期化は行わない
			if port == "" {
				port = app.HealthcheckPort()
			}
			return app.Healthcheck(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "server port (default $SERVER_PORT or 8080)")
	return cmd
}
