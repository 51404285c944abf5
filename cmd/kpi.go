package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/trazamatic/analytics-cli/internal/kpi"
)

var (
	kpiAsOf   string
	kpiFormat string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Compute business KPIs from the derived tables",
	Long: `Computes the production, financial, customer, and inventory indicators
from the derived analytical tables. Time-windowed indicators are evaluated
against --as-of, so a report over historical data is reproducible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now().UTC()
		if kpiAsOf != "" {
			t, err := parseAsOf(kpiAsOf)
			if err != nil {
				return err
			}
			asOf = t
		}

		calc := kpi.NewCalculator(cfg.Data.AnalyticsDir, kpi.Options{
			ActiveWindowDays:  cfg.KPI.ActiveWindowDays,
			RevenueWindowDays: cfg.KPI.RevenueWindowDays,
		})

		report, err := calc.Report(asOf)
		if err != nil {
			return err
		}

		switch kpiFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "table":
			printKPITable(report)
			return nil
		default:
			return eris.Errorf("unsupported format: %s", kpiFormat)
		}
	},
}

func parseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, eris.Errorf("invalid --as-of %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func printKPITable(r *kpi.Report) {
	fmt.Printf("KPIs as of %s (data %s)\n", r.AsOf.Format("2006-01-02"), r.Freshness)
	sections := []struct {
		name string
		kpis []kpi.KPI
	}{
		{"Producción", r.Produccion},
		{"Financiero", r.Financiero},
		{"Clientes", r.Clientes},
		{"Inventario", r.Inventario},
	}
	for _, sec := range sections {
		fmt.Printf("\n%s\n", sec.name)
		for _, k := range sec.kpis {
			status := ""
			if k.MeetsTarget != nil {
				if *k.MeetsTarget {
					status = "ok"
				} else {
					status = "below target"
				}
			}
			fmt.Printf("  %-36s %12.2f %-10s %s\n", k.Name, k.Value, k.Unit, status)
		}
	}
}

func init() {
	f := kpiCmd.Flags()
	f.StringVar(&kpiAsOf, "as-of", "", "reference time for windowed indicators (YYYY-MM-DD or RFC 3339, default now)")
	f.StringVar(&kpiFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(kpiCmd)
}
