package etl

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// Loader persists cleaned entities and derived tables as UTF-8 CSV files.
// Every write goes to a temp file in the destination directory and is
// renamed into place, so a crashed run leaves the previous table intact,
// never a half-written one. Any write failure is fatal to the run.
type Loader struct {
	ProcessedDir string
	AnalyticsDir string
}

// NewLoader returns a Loader, creating both destination directories.
func NewLoader(processedDir, analyticsDir string) (*Loader, error) {
	for _, dir := range []string{processedDir, analyticsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "load: create dir %s", dir)
		}
	}
	return &Loader{ProcessedDir: processedDir, AnalyticsDir: analyticsDir}, nil
}

// writeTable encodes rows as CSV with a header row and atomically replaces
// the file at dir/<name>.csv. The header is written even for empty tables.
func writeTable[T any](dir, name string, rows []T) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "load: create temp for %s", name)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	enc := csvutil.NewEncoder(w)

	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "load: encode header for %s", name)
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			tmp.Close()
			return eris.Wrapf(err, "load: encode row for %s", name)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "load: flush %s", name)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "load: close temp for %s", name)
	}

	dest := filepath.Join(dir, name+".csv")
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return eris.Wrapf(err, "load: rename %s into place", name)
	}

	zap.L().Info("table saved",
		zap.String("file", dest),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// SaveCleaned writes every present cleaned entity to the processed
// directory with the `_limpio` suffix.
func (l *Loader) SaveCleaned(clean *model.CleanSet) error {
	type saver struct {
		entity string
		write  func() error
	}
	savers := []saver{
		{model.EntityClientes, func() error {
			return writeTable(l.ProcessedDir, model.EntityClientes+"_limpio", clean.Clientes)
		}},
		{model.EntityOrdenes, func() error {
			return writeTable(l.ProcessedDir, model.EntityOrdenes+"_limpio", clean.Ordenes)
		}},
		{model.EntityProductos, func() error {
			return writeTable(l.ProcessedDir, model.EntityProductos+"_limpio", clean.Productos)
		}},
		{model.EntityMateriales, func() error {
			return writeTable(l.ProcessedDir, model.EntityMateriales+"_limpio", clean.Materiales)
		}},
		{model.EntityEmpleados, func() error {
			return writeTable(l.ProcessedDir, model.EntityEmpleados+"_limpio", clean.Empleados)
		}},
		{model.EntityDetalles, func() error {
			return writeTable(l.ProcessedDir, model.EntityDetalles+"_limpio", clean.Detalles)
		}},
		{model.EntityUsoMat, func() error {
			return writeTable(l.ProcessedDir, model.EntityUsoMat+"_limpio", clean.Usos)
		}},
	}

	var saved int
	for _, s := range savers {
		if !clean.Present[s.entity] {
			continue
		}
		if err := s.write(); err != nil {
			return err
		}
		saved++
	}

	zap.L().Info("cleaned entities saved",
		zap.Int("files", saved),
		zap.String("dir", l.ProcessedDir),
	)
	return nil
}

// SaveDerived writes every derived table built this run to the analytics
// directory.
func (l *Loader) SaveDerived(derived *model.DerivedSet) error {
	type saver struct {
		table string
		write func() error
	}
	savers := []saver{
		{model.TableOrdenesCompletas, func() error {
			return writeTable(l.AnalyticsDir, model.TableOrdenesCompletas, derived.OrdenesCompletas)
		}},
		{model.TableVentasPorProducto, func() error {
			return writeTable(l.AnalyticsDir, model.TableVentasPorProducto, derived.VentasPorProducto)
		}},
		{model.TableUsoMaterialesAgregado, func() error {
			return writeTable(l.AnalyticsDir, model.TableUsoMaterialesAgregado, derived.UsoMaterialesAgregado)
		}},
		{model.TableMetricasPorCliente, func() error {
			return writeTable(l.AnalyticsDir, model.TableMetricasPorCliente, derived.MetricasPorCliente)
		}},
		{model.TableProductividad, func() error {
			return writeTable(l.AnalyticsDir, model.TableProductividad, derived.ProductividadEmpleados)
		}},
	}

	var saved int
	for _, s := range savers {
		if !derived.Built[s.table] {
			continue
		}
		if err := s.write(); err != nil {
			return err
		}
		saved++
	}

	zap.L().Info("derived tables saved",
		zap.Int("files", saved),
		zap.String("dir", l.AnalyticsDir),
	)
	return nil
}
