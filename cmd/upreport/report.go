package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/upreport/internal/config"
	"github.com/hazz-dev/upreport/internal/daterange"
	"github.com/hazz-dev/upreport/internal/pingdom"
	"github.com/hazz-dev/upreport/internal/render"
	"github.com/hazz-dev/upreport/internal/report"
	"github.com/hazz-dev/upreport/internal/storage"
)

type reportFlags struct {
	startDate string
	endDate   string
	save      bool
	table     bool
}

func reportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute uptime for all checks over a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			window, err := daterange.Parse(flags.startDate, flags.endDate)
			if err != nil {
				return fmt.Errorf("invalid date range: %w", err)
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), cfg, window, flags)
		},
	}
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "start date (MM/DD/YYYY)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "end date (MM/DD/YYYY), inclusive")
	cmd.Flags().BoolVar(&flags.save, "save", false, "save the report to the run history database")
	cmd.Flags().BoolVar(&flags.table, "table", false, "render as an aligned table")
	cmd.MarkFlagRequired("start-date")
	cmd.MarkFlagRequired("end-date")
	return cmd
}

func runReport(ctx context.Context, out io.Writer, cfg *config.Config, window daterange.Range, flags reportFlags) error {
	logger := slog.Default()

	client := pingdom.New(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout.Duration, logger)
	pacer := report.NewPacer(cfg.Report.PaceInterval.Duration)
	runner := report.New(client, pacer, cfg.Report.Concurrency, logger)

	results, err := runner.Run(ctx, window)
	if err != nil {
		return err
	}

	if flags.table {
		render.WriteTable(out, results)
	} else {
		render.WriteReport(out, results)
	}

	if flags.save {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		runID, err := db.SaveRun(ctx, window, results)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		logger.Info("run saved", "run_id", runID, "checks", len(results))
	}
	return nil
}
