package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tejzpr/audience-inbox/internal/webserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			queries, broker, closeDB, err := openInbox(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			err = webserver.New(queries, broker).Serve(ctx, cfg.Server.Port)
			if errors.Is(err, webserver.ErrAlreadyRunning) {
				fmt.Fprintf(cmd.ErrOrStderr(), "audience-inbox is already running on port %d\n", cfg.Server.Port)
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int("port", 56235, "HTTP port")
	cmd.Flags().String("dsn", ":memory:", "SQLite DSN, or :memory:")
	cmd.Flags().Bool("seed", true, "load sample data into an empty store")
	mustBind(v.BindPFlag("server.port", cmd.Flags().Lookup("port")))
	mustBind(v.BindPFlag("database.dsn", cmd.Flags().Lookup("dsn")))
	mustBind(v.BindPFlag("seed.enabled", cmd.Flags().Lookup("seed")))
	return cmd
}
