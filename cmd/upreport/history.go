package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/upreport/internal/config"
	"github.com/hazz-dev/upreport/internal/render"
	"github.com/hazz-dev/upreport/internal/storage"
)

func historyCmd() *cobra.Command {
	var limit int
	var runID int64
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved report runs, or print one with --run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := storage.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if runID > 0 {
				return printRun(cmd.Context(), cmd.OutOrStdout(), db, runID)
			}
			return listRuns(cmd.Context(), cmd.OutOrStdout(), db, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().Int64Var(&runID, "run", 0, "print the stored report for this run id")
	return cmd
}

func listRuns(ctx context.Context, out io.Writer, db *storage.DB, limit int) error {
	runs, err := db.Runs(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved runs. Run 'upreport report --save' first.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tRANGE\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s to %s\t%s\n",
			r.ID,
			r.RangeStart.Format("2006-01-02"),
			r.RangeEnd.Format("2006-01-02"),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func printRun(ctx context.Context, out io.Writer, db *storage.DB, runID int64) error {
	run, err := db.RunByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("querying run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found", runID)
	}

	results, err := db.RunResults(ctx, runID)
	if err != nil {
		return fmt.Errorf("querying run results: %w", err)
	}

	fmt.Fprintf(out, "Run %d: %s to %s\n",
		run.ID,
		run.RangeStart.Format(time.RFC3339),
		run.RangeEnd.Format(time.RFC3339),
	)
	render.WriteReport(out, results)
	return nil
}
