package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/webserver"
)

func newClassifyCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Suggest tags and a priority for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			result := classifier.Classify(content)
			if serverURL != "" {
				var err error
				if result, err = webserver.RemoteClassify(cmd.Context(), serverURL, content); err != nil {
					return err
				}
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "classify on a running server instead of locally")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
