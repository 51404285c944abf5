package kpi

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// Snapshot holds one immutable read of the five derived tables. Tables
// skipped by the pipeline are simply empty.
type Snapshot struct {
	Token string

	OrdenesCompletas       []model.OrdenCompleta
	VentasPorProducto      []model.VentaProducto
	UsoMaterialesAgregado  []model.UsoMaterialAgregado
	MetricasPorCliente     []model.MetricaCliente
	ProductividadEmpleados []model.ProductividadEmpleado
}

// Options configures the windowed indicators.
type Options struct {
	ActiveWindowDays  int // customer considered active within this many days
	RevenueWindowDays int // window for the periodic revenue indicator
}

// Calculator loads derived tables from the analytics directory and computes
// KPI reports. Snapshots are memoized per freshness token; callers obtain
// the token explicitly, there is no ambient global cache.
type Calculator struct {
	dir  string
	opts Options

	mu   sync.Mutex
	last *Snapshot
}

// NewCalculator returns a Calculator over the analytics directory.
func NewCalculator(dir string, opts Options) *Calculator {
	if opts.ActiveWindowDays <= 0 {
		opts.ActiveWindowDays = 90
	}
	if opts.RevenueWindowDays <= 0 {
		opts.RevenueWindowDays = 30
	}
	return &Calculator{dir: dir, opts: opts}
}

// FreshnessToken returns a token identifying the current state of the
// derived tables: the latest modification time across the five files.
// A snapshot computed under one token is valid as long as the token holds.
func (c *Calculator) FreshnessToken() (string, error) {
	var latest time.Time
	var found bool
	for _, name := range model.AllDerivedTables {
		info, err := os.Stat(filepath.Join(c.dir, name+".csv"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", eris.Wrapf(err, "kpi: stat %s", name)
		}
		found = true
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	if !found {
		return "", eris.Errorf("kpi: no derived tables in %s", c.dir)
	}
	return latest.UTC().Format(time.RFC3339Nano), nil
}

// Snapshot returns the derived tables for the given freshness token,
// reloading from disk only when the token differs from the memoized one.
func (c *Calculator) Snapshot(token string) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && c.last.Token == token {
		return c.last, nil
	}

	s := &Snapshot{Token: token}
	var err error
	if s.OrdenesCompletas, err = readTable[model.OrdenCompleta](c.dir, model.TableOrdenesCompletas); err != nil {
		return nil, err
	}
	if s.VentasPorProducto, err = readTable[model.VentaProducto](c.dir, model.TableVentasPorProducto); err != nil {
		return nil, err
	}
	if s.UsoMaterialesAgregado, err = readTable[model.UsoMaterialAgregado](c.dir, model.TableUsoMaterialesAgregado); err != nil {
		return nil, err
	}
	if s.MetricasPorCliente, err = readTable[model.MetricaCliente](c.dir, model.TableMetricasPorCliente); err != nil {
		return nil, err
	}
	if s.ProductividadEmpleados, err = readTable[model.ProductividadEmpleado](c.dir, model.TableProductividad); err != nil {
		return nil, err
	}

	c.last = s
	return s, nil
}

// Report computes every KPI against the current derived tables, using asOf
// as the reference time for windowed indicators.
func (c *Calculator) Report(asOf time.Time) (*Report, error) {
	token, err := c.FreshnessToken()
	if err != nil {
		return nil, err
	}
	s, err := c.Snapshot(token)
	if err != nil {
		return nil, err
	}

	r := &Report{
		AsOf:      asOf,
		Freshness: token,
		Produccion: []KPI{
			TasaCompletitudOrdenes(s),
			TiempoPromedioProduccion(s),
			ProductividadPorEmpleado(s),
			EficienciaUsoMateriales(s),
			OrdenesEnProceso(s),
		},
		Financiero: []KPI{
			IngresosTotales(s, nil, asOf),
			IngresosTotales(s, &c.opts.RevenueWindowDays, asOf),
			TicketPromedio(s),
			ConcentracionTopClientes(s, 10),
		},
		Clientes: []KPI{
			ClientesActivos(s, c.opts.ActiveWindowDays, asOf),
			TasaRetencion(s),
			FrecuenciaCompra(s),
			DistribucionGeografica(s),
		},
		Inventario: []KPI{
			RotacionMateriales(s),
			StockCritico(s, 20),
			MaterialesMasUsados(s, 10),
		},
	}
	return r, nil
}

// readTable decodes one derived table from CSV into typed rows. A missing
// file yields an empty table: the pipeline skipped it this run.
func readTable[T any](dir, name string) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("derived table missing, treating as empty",
				zap.String("table", name),
			)
			return nil, nil
		}
		return nil, eris.Wrapf(err, "kpi: open %s", name)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "kpi: decode header %s", name)
	}

	var rows []T
	for {
		var row T
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "kpi: decode row %s", name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
