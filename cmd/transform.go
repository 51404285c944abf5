package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trazamatic/analytics-cli/internal/etl"
	"github.com/trazamatic/analytics-cli/internal/model"
)

var transformRawDir string

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean the raw datasets and print per-entity reports",
	Long: `Runs extraction and cleaning without persisting anything. Prints a
per-entity report of rows kept, rows dropped, coercion failures, and emails
deduplicated, so a data drop can be validated before a real run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir := transformRawDir
		if dir == "" {
			dir = cfg.Data.RawDir
		}

		raw, err := etl.NewExtractor(dir).ExtractAll(ctx)
		if err != nil {
			return err
		}

		clean, err := etl.NewTransformer().TransformAll(ctx, raw)
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %8s %8s %8s %10s %8s\n", "entity", "in", "out", "dropped", "coercions", "deduped")
		for _, name := range model.AllEntities {
			rep, ok := clean.Reports[name]
			if !ok {
				fmt.Printf("%-24s missing\n", name)
				continue
			}
			fmt.Printf("%-24s %8d %8d %8d %10d %8d\n",
				name, rep.RowsIn, rep.RowsOut, rep.Dropped, rep.CoercionFailures, rep.EmailsDeduped)
		}
		return nil
	},
}

func init() {
	transformCmd.Flags().StringVar(&transformRawDir, "raw-dir", "", "raw input directory (default from config)")
	rootCmd.AddCommand(transformCmd)
}
