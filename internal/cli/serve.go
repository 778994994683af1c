package cli

import (
	"github.com/spf13/cobra"

	"bkpreport/internal/app"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				global.cfg.Server.Port = port
			}

			application, err := app.NewApplication(global.cfg, global.logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides the config)")
	return cmd
}
