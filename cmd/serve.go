package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trazamatic/analytics-cli/internal/kpi"
	"github.com/trazamatic/analytics-cli/internal/model"
	"github.com/trazamatic/analytics-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve derived tables, KPIs, and run history over HTTP",
	Long: `Starts a read-only HTTP API over the analytics directory and the run
history store. Dashboards consume the derived tables and KPI report from
here instead of reading CSV files directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		calc := kpi.NewCalculator(cfg.Data.AnalyticsDir, kpi.Options{
			ActiveWindowDays:  cfg.KPI.ActiveWindowDays,
			RevenueWindowDays: cfg.KPI.RevenueWindowDays,
		})

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/tables", func(w http.ResponseWriter, req *http.Request) {
			token, err := calc.FreshnessToken()
			if err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no derived tables available"})
				return
			}
			s, err := calc.Snapshot(token)
			if err != nil {
				serveError(w, req, err)
				return
			}
			type tableInfo struct {
				Name string `json:"name"`
				Rows int    `json:"rows"`
			}
			out := []tableInfo{
				{model.TableOrdenesCompletas, len(s.OrdenesCompletas)},
				{model.TableVentasPorProducto, len(s.VentasPorProducto)},
				{model.TableUsoMaterialesAgregado, len(s.UsoMaterialesAgregado)},
				{model.TableMetricasPorCliente, len(s.MetricasPorCliente)},
				{model.TableProductividad, len(s.ProductividadEmpleados)},
			}
			writeJSON(w, http.StatusOK, out)
		})

		r.Get("/api/tables/{name}", func(w http.ResponseWriter, req *http.Request) {
			token, err := calc.FreshnessToken()
			if err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no derived tables available"})
				return
			}
			s, err := calc.Snapshot(token)
			if err != nil {
				serveError(w, req, err)
				return
			}
			var rows any
			switch chi.URLParam(req, "name") {
			case model.TableOrdenesCompletas:
				rows = s.OrdenesCompletas
			case model.TableVentasPorProducto:
				rows = s.VentasPorProducto
			case model.TableUsoMaterialesAgregado:
				rows = s.UsoMaterialesAgregado
			case model.TableMetricasPorCliente:
				rows = s.MetricasPorCliente
			case model.TableProductividad:
				rows = s.ProductividadEmpleados
			default:
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown table"})
				return
			}
			writeJSON(w, http.StatusOK, rows)
		})

		r.Get("/api/kpis", func(w http.ResponseWriter, req *http.Request) {
			asOf := time.Now().UTC()
			if s := req.URL.Query().Get("as_of"); s != "" {
				t, err := parseAsOf(s)
				if err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid as_of: expected YYYY-MM-DD or RFC 3339"})
					return
				}
				asOf = t
			}
			report, err := calc.Report(asOf)
			if err != nil {
				serveError(w, req, err)
				return
			}
			writeJSON(w, http.StatusOK, report)
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			if st == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run history is disabled"})
				return
			}
			runs, err := st.ListRuns(req.Context(), store.RunFilter{
				Status: model.RunStatus(req.URL.Query().Get("status")),
			})
			if err != nil {
				serveError(w, req, err)
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func serveError(w http.ResponseWriter, req *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("path", req.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
