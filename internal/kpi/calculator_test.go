package kpi

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazamatic/analytics-cli/internal/model"
)

func writeDerived(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(content), 0o644))
}

func seedAnalyticsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeDerived(t, dir, model.TableOrdenesCompletas,
		"id_orden,id_cliente,id_empleado_responsable,fecha_orden,fecha_completado,estado,duracion_dias,nombre_empresa,ciudad,nombre_empleado,cargo_empleado\n"+
			"O1,C1,E1,2024-01-05,2024-01-14,Completado,9,Acme SA,Madrid,Marta Díaz,Operaria\n"+
			"O2,C1,E1,2024-02-01,,En Proceso,,Acme SA,Madrid,Marta Díaz,Operaria\n")
	writeDerived(t, dir, model.TableVentasPorProducto,
		"id_producto,nombre_producto,cantidad_total,ingresos_totales,num_ordenes,ticket_promedio\n"+
			"P1,Tornillo M6,7,180,2,90\n")
	writeDerived(t, dir, model.TableUsoMaterialesAgregado,
		"id_material,nombre_material,tipo,cantidad_disponible,cantidad_total_usada,num_ordenes,tasa_rotacion\n"+
			"M1,Acero inox,Materia Prima,500,250,2,0.5\n")
	writeDerived(t, dir, model.TableMetricasPorCliente,
		"id_cliente,num_ordenes,ingresos_totales,primera_orden,ultima_orden,nombre_empresa,ciudad,ticket_promedio\n"+
			"C1,2,1380,2024-01-05,2024-02-01,Acme SA,Madrid,690\n")
	writeDerived(t, dir, model.TableProductividad,
		"id_empleado,total_ordenes,ordenes_completadas,nombre,cargo,tasa_completitud\n"+
			"E1,2,1,Marta Díaz,Operaria,50\n")

	return dir
}

func TestFreshnessToken(t *testing.T) {
	dir := seedAnalyticsDir(t)
	calc := NewCalculator(dir, Options{})

	token, err := calc.FreshnessToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	again, err := calc.FreshnessToken()
	require.NoError(t, err)
	assert.Equal(t, token, again)

	// Touching a table changes the token.
	future := time.Now().Add(time.Hour)
	path := filepath.Join(dir, model.TableOrdenesCompletas+".csv")
	require.NoError(t, os.Chtimes(path, future, future))

	changed, err := calc.FreshnessToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, changed)
}

func TestFreshnessTokenNoTables(t *testing.T) {
	calc := NewCalculator(t.TempDir(), Options{})
	_, err := calc.FreshnessToken()
	require.Error(t, err)
}

func TestSnapshotMemoized(t *testing.T) {
	calc := NewCalculator(seedAnalyticsDir(t), Options{})

	token, err := calc.FreshnessToken()
	require.NoError(t, err)

	first, err := calc.Snapshot(token)
	require.NoError(t, err)
	require.Len(t, first.OrdenesCompletas, 2)
	require.Len(t, first.MetricasPorCliente, 1)

	second, err := calc.Snapshot(token)
	require.NoError(t, err)
	assert.Same(t, first, second) // same token, no reload

	reloaded, err := calc.Snapshot("different-token")
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
}

func TestSnapshotDecodesNulls(t *testing.T) {
	calc := NewCalculator(seedAnalyticsDir(t), Options{})

	token, err := calc.FreshnessToken()
	require.NoError(t, err)
	s, err := calc.Snapshot(token)
	require.NoError(t, err)

	require.NotNil(t, s.OrdenesCompletas[0].DuracionDias)
	assert.Equal(t, 9, *s.OrdenesCompletas[0].DuracionDias)

	// Open order: empty fields decode to nil.
	assert.Nil(t, s.OrdenesCompletas[1].FechaCompletado)
	assert.Nil(t, s.OrdenesCompletas[1].DuracionDias)
}

func TestSnapshotMissingTableIsEmpty(t *testing.T) {
	dir := seedAnalyticsDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, model.TableVentasPorProducto+".csv")))

	calc := NewCalculator(dir, Options{})
	token, err := calc.FreshnessToken()
	require.NoError(t, err)

	s, err := calc.Snapshot(token)
	require.NoError(t, err)
	assert.Empty(t, s.VentasPorProducto)
	assert.Len(t, s.OrdenesCompletas, 2)
}

func TestReport(t *testing.T) {
	calc := NewCalculator(seedAnalyticsDir(t), Options{ActiveWindowDays: 90, RevenueWindowDays: 30})
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	report, err := calc.Report(asOf)
	require.NoError(t, err)

	assert.Equal(t, asOf, report.AsOf)
	assert.NotEmpty(t, report.Freshness)
	assert.Len(t, report.Produccion, 5)
	assert.Len(t, report.Financiero, 4)
	assert.Len(t, report.Clientes, 4)
	assert.Len(t, report.Inventario, 3)

	assert.Equal(t, "Tasa de Completitud de Órdenes", report.Produccion[0].Name)
	assert.Equal(t, 50.0, report.Produccion[0].Value)

	// Same snapshot and reference time always yields the same report.
	again, err := calc.Report(asOf)
	require.NoError(t, err)
	assert.Equal(t, report, again)
}

func TestReportDefaultWindows(t *testing.T) {
	calc := NewCalculator(seedAnalyticsDir(t), Options{})
	assert.Equal(t, 90, calc.opts.ActiveWindowDays)
	assert.Equal(t, 30, calc.opts.RevenueWindowDays)
}
