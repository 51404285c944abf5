package etl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/trazamatic/analytics-cli/internal/model"
)

func TestLoadTableCSV(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, model.EntityProductos,
		"id_producto,nombre_producto,precio\nP1,Tornillo M6,12.50\nP2,Motor,1200\n")

	table, err := NewExtractor(dir).LoadTable(context.Background(), model.EntityProductos)
	require.NoError(t, err)

	assert.Equal(t, model.EntityProductos, table.Name)
	assert.Equal(t, []string{"id_producto", "nombre_producto", "precio"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Tornillo M6", table.Field(table.Rows[0], "nombre_producto"))
}

func TestLoadTableXLSXFallback(t *testing.T) {
	dir := t.TempDir()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("empleados")
	require.NoError(t, err)
	for _, rowVals := range [][]string{
		{"id_empleado", "nombre", "cargo", "email"},
		{"E1", "Marta Díaz", "operaria", "marta@trazamatic.com"},
	} {
		row := sheet.AddRow()
		for _, v := range rowVals {
			row.AddCell().Value = v
		}
	}
	require.NoError(t, f.Save(filepath.Join(dir, model.EntityEmpleados+".xlsx")))

	table, err := NewExtractor(dir).LoadTable(context.Background(), model.EntityEmpleados)
	require.NoError(t, err)

	assert.Equal(t, []string{"id_empleado", "nombre", "cargo", "email"}, table.Header)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Marta Díaz", table.Field(table.Rows[0], "nombre"))
}

func TestLoadTableCSVWinsOverXLSX(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, model.EntityEmpleados, "id_empleado,nombre,cargo,email\nE9,CSV Wins,op,e@x.com\n")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("empleados")
	require.NoError(t, err)
	row := sheet.AddRow()
	row.AddCell().Value = "id_empleado"
	require.NoError(t, f.Save(filepath.Join(dir, model.EntityEmpleados+".xlsx")))

	table, err := NewExtractor(dir).LoadTable(context.Background(), model.EntityEmpleados)
	require.NoError(t, err)
	assert.Equal(t, "E9", table.Field(table.Rows[0], "id_empleado"))
}

func TestLoadTableMissing(t *testing.T) {
	_, err := NewExtractor(t.TempDir()).LoadTable(context.Background(), model.EntityClientes)
	require.Error(t, err)
}

func TestExtractAllPartial(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, model.EntityProductos, "id_producto,nombre_producto,precio\nP1,A,1\n")

	set, err := NewExtractor(dir).ExtractAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, set, 1)
	assert.True(t, set.Available(model.EntityProductos))
	assert.False(t, set.Available(model.EntityClientes))
}

func TestExtractAllEmpty(t *testing.T) {
	_, err := NewExtractor(t.TempDir()).ExtractAll(context.Background())
	require.Error(t, err)
}
