package etl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazamatic/analytics-cli/internal/model"
)

func TestWriteTable(t *testing.T) {
	dir := t.TempDir()

	rows := []model.Producto{
		{ID: "P1", Nombre: "Tornillo M6", Precio: 12.5},
		{ID: "P2", Nombre: "Motor", Precio: 1200},
	}
	require.NoError(t, writeTable(dir, "productos_limpio", rows))

	data, err := os.ReadFile(filepath.Join(dir, "productos_limpio.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id_producto,nombre_producto,precio", lines[0])
	assert.Equal(t, "P1,Tornillo M6,12.5", lines[1])

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteTableEmpty(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeTable(dir, "ventas_por_producto", []model.VentaProducto{}))

	data, err := os.ReadFile(filepath.Join(dir, "ventas_por_producto.csv"))
	require.NoError(t, err)

	// Header row is written even when the table is empty.
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "id_producto,nombre_producto,cantidad_total,ingresos_totales,num_ordenes,ticket_promedio", lines[0])
}

func TestWriteTableReplacesAtomically(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeTable(dir, "productos_limpio", []model.Producto{{ID: "P1", Nombre: "A", Precio: 1}}))
	require.NoError(t, writeTable(dir, "productos_limpio", []model.Producto{{ID: "P2", Nombre: "B", Precio: 2}}))

	data, err := os.ReadFile(filepath.Join(dir, "productos_limpio.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "P2")
	assert.NotContains(t, string(data), "P1")
}

func TestSaveCleanedSkipsAbsent(t *testing.T) {
	processed := t.TempDir()
	analytics := t.TempDir()

	l, err := NewLoader(processed, analytics)
	require.NoError(t, err)

	clean := &model.CleanSet{
		Productos: []model.Producto{{ID: "P1", Nombre: "A", Precio: 1}},
		Present:   map[string]bool{model.EntityProductos: true},
	}
	require.NoError(t, l.SaveCleaned(clean))

	entries, err := os.ReadDir(processed)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "productos_limpio.csv", entries[0].Name())
}
