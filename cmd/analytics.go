package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tejzpr/audience-inbox/internal/webserver"
)

func newAnalyticsCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print the analytics of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
			}
			a, err := webserver.RemoteAnalytics(cmd.Context(), serverURL)
			if err != nil {
				return err
			}
			return printJSON(cmd, a)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server base URL (default http://localhost:<server.port>)")
	return cmd
}
