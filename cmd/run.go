package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trazamatic/analytics-cli/internal/etl"
	"github.com/trazamatic/analytics-cli/internal/model"
)

var (
	runRawDir       string
	runProcessedDir string
	runAnalyticsDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ETL pipeline",
	Long: `Runs extraction, transformation, and load in order:

1. Loads the seven raw tables from the raw directory; missing tables are
   tolerated, the run aborts only when none load.
2. Cleans each entity independently (normalization, coercion, dedup,
   invalid-row removal).
3. Persists cleaned entities, builds whichever derived tables have their
   dependencies available, and persists those.

A run record is written to the configured history store unless the store
driver is "none".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rawDir := runRawDir
		if rawDir == "" {
			rawDir = cfg.Data.RawDir
		}
		processedDir := runProcessedDir
		if processedDir == "" {
			processedDir = cfg.Data.ProcessedDir
		}
		analyticsDir := runAnalyticsDir
		if analyticsDir == "" {
			analyticsDir = cfg.Data.AnalyticsDir
		}

		p, err := etl.NewPipeline(rawDir, processedDir, analyticsDir)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		var run *model.Run
		if st != nil {
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			run, err = st.CreateRun(ctx)
			if err != nil {
				return err
			}
		}

		result, runErr := p.Run(ctx)

		if st != nil && run != nil {
			status := model.RunSucceeded
			if runErr != nil {
				status = model.RunFailed
			}
			if err := st.CompleteRun(ctx, run.ID, status, result); err != nil {
				zap.L().Error("failed to record run", zap.String("run_id", run.ID), zap.Error(err))
			}
		}

		if runErr != nil {
			return runErr
		}

		fmt.Printf("extracted %d/%d datasets, cleaned %d, derived %d tables",
			result.DatasetsExtracted, len(model.AllEntities),
			result.DatasetsCleaned, result.TablesDerived)
		if result.RowsDropped > 0 {
			fmt.Printf(" (%d invalid rows dropped)", result.RowsDropped)
		}
		fmt.Println()
		for table, missing := range result.SkippedTables {
			fmt.Printf("skipped %s: missing %v\n", table, missing)
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runRawDir, "raw-dir", "", "raw input directory (default from config)")
	f.StringVar(&runProcessedDir, "processed-dir", "", "cleaned output directory (default from config)")
	f.StringVar(&runAnalyticsDir, "analytics-dir", "", "derived output directory (default from config)")
	rootCmd.AddCommand(runCmd)
}
