// Package model defines the raw, cleaned, and derived data shapes shared by
// the ETL pipeline, the KPI calculator, and the run-history store.
package model

// Raw entity names as they appear on disk (one tabular file per entity).
const (
	EntityClientes   = "clientes"
	EntityOrdenes    = "ordenes_produccion"
	EntityProductos  = "productos"
	EntityMateriales = "materiales"
	EntityEmpleados  = "empleados"
	EntityDetalles   = "detalles_orden"
	EntityUsoMat     = "uso_materiales"
)

// AllEntities lists the seven raw entities in extraction order.
var AllEntities = []string{
	EntityClientes,
	EntityOrdenes,
	EntityProductos,
	EntityMateriales,
	EntityEmpleados,
	EntityDetalles,
	EntityUsoMat,
}

// RawTable is an unmodified tabular extract: a header row plus data rows,
// addressed by column name. A column may be absent; lookups tolerate that.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string

	cols map[string]int
}

// NewRawTable builds a RawTable and indexes its header.
func NewRawTable(name string, header []string, rows [][]string) *RawTable {
	t := &RawTable{Name: name, Header: header, Rows: rows}
	t.cols = make(map[string]int, len(header))
	for i, h := range header {
		t.cols[h] = i
	}
	return t
}

// Col returns the index of a named column, or false when the column is
// absent from this extract.
func (t *RawTable) Col(name string) (int, bool) {
	i, ok := t.cols[name]
	return i, ok
}

// HasCol reports whether the extract carries the named column.
func (t *RawTable) HasCol(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Field returns the value of the named column in a row, or "" when the
// column is absent or the row is shorter than the header.
func (t *RawTable) Field(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Len returns the number of data rows.
func (t *RawTable) Len() int { return len(t.Rows) }

// EntitySet maps entity name to its loaded raw table. Entities that failed
// to load are simply absent; downstream steps check availability explicitly.
type EntitySet map[string]*RawTable

// Available reports whether every named entity loaded this run.
func (s EntitySet) Available(names ...string) bool {
	for _, n := range names {
		if s[n] == nil {
			return false
		}
	}
	return true
}

// Missing returns the subset of names absent from the set.
func (s EntitySet) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if s[n] == nil {
			out = append(out, n)
		}
	}
	return out
}
