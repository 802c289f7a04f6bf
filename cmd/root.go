package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tejzpr/audience-inbox/internal/config"
	"github.com/tejzpr/audience-inbox/internal/logging"
)

var (
	cfgFile string
	v       = config.New()
	cfg     config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audience-inbox",
	Short: "Unified inbox for audience queries",
	Long: `audience-inbox collects messages from every channel into one queue,
tags and prioritises them automatically, and reports on how the team is keeping up.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context(), v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(cfg.Log.Level, nil)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./audience-inbox.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	mustBind(v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.AddCommand(newServeCmd(), newMCPCmd(), newClassifyCmd(), newAnalyticsCmd())
}

func mustBind(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "bind flag: %v\n", err)
		os.Exit(1)
	}
}
