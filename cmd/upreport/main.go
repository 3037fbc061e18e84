package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/upreport/internal/version"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "upreport",
		Short:        "Uptime and downtime reports from a Pingdom-compatible provider",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "config.yml", "config file path")

	root.AddCommand(versionCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(checksCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(serveCmd())

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("upreport %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
