package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/trazamatic/analytics-cli/internal/model"
	"github.com/trazamatic/analytics-cli/internal/store"
)

var (
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("run history is disabled (store.driver is \"none\")")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-36s %-10s %-20s %10s %8s %8s\n", "id", "status", "started", "duration", "derived", "dropped")
		for _, r := range runs {
			dur, derived, dropped := "-", "-", "-"
			if r.Result != nil {
				dur = fmt.Sprintf("%dms", r.Result.DurationMS)
				derived = fmt.Sprintf("%d", r.Result.TablesDerived)
				dropped = fmt.Sprintf("%d", r.Result.RowsDropped)
			}
			fmt.Printf("%-36s %-10s %-20s %10s %8s %8s\n",
				r.ID, r.Status, r.StartedAt.Format("2006-01-02 15:04:05"), dur, derived, dropped)
		}
		return nil
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsStatus, "status", "", "filter by status: running, succeeded, or failed")
	f.IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
