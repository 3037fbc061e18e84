package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/upreport/internal/config"
	"github.com/hazz-dev/upreport/internal/pingdom"
)

func checksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List all monitored checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runChecks(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func runChecks(ctx context.Context, out io.Writer, cfg *config.Config) error {
	client := pingdom.New(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout.Duration, slog.Default())

	checks, err := client.ListChecks(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, c := range checks {
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}
	return w.Flush()
}
