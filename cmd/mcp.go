package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/tejzpr/audience-inbox/internal/handler"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the inbox tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, _, closeDB, err := openInbox(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			s := server.NewMCPServer(
				"audience-inbox",
				version,
				server.WithToolCapabilities(false),
			)
			handler.New(queries).Register(s)
			return server.ServeStdio(s)
		},
	}
}
