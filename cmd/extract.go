package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trazamatic/analytics-cli/internal/etl"
	"github.com/trazamatic/analytics-cli/internal/model"
)

var extractRawDir string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Load the raw datasets and report what was found",
	Long: `Loads each of the seven raw datasets from the raw directory (CSV first,
XLSX fallback) without cleaning or persisting anything. Useful to verify an
export drop before running the pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir := extractRawDir
		if dir == "" {
			dir = cfg.Data.RawDir
		}

		raw, err := etl.NewExtractor(dir).ExtractAll(ctx)
		if err != nil {
			return err
		}

		for _, name := range model.AllEntities {
			t, ok := raw[name]
			if !ok {
				fmt.Printf("%-24s missing\n", name)
				continue
			}
			fmt.Printf("%-24s %d rows, %d columns\n", name, t.Len(), len(t.Header))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractRawDir, "raw-dir", "", "raw input directory (default from config)")
	rootCmd.AddCommand(extractCmd)
}
