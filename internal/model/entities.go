package model

// Cleaned entity records. Field tags define the on-disk column contract for
// the `_limpio` CSVs; renaming a tag is a breaking change for the KPI and
// dashboard layers.

// Cliente is a cleaned customer record. Contact columns are renamed from
// their raw `contacto_*` form.
type Cliente struct {
	ID             string `csv:"id_cliente"`
	NombreEmpresa  string `csv:"nombre_empresa"`
	Ciudad         string `csv:"ciudad"`
	Telefono       string `csv:"telefono"`
	Email          string `csv:"email"`
	NombreContacto string `csv:"nombre_contacto"`
}

// OrdenProduccion is a cleaned production order. Dates are nil when the raw
// value was missing or unparseable; DuracionDias is present only when both
// dates are.
type OrdenProduccion struct {
	ID                    string `csv:"id_orden"`
	IDCliente             string `csv:"id_cliente"`
	IDEmpleadoResponsable string `csv:"id_empleado_responsable"`
	FechaOrden            *Date  `csv:"fecha_orden"`
	FechaCompletado       *Date  `csv:"fecha_completado"`
	Estado                string `csv:"estado"`
	DuracionDias          *int   `csv:"duracion_dias"`
}

// Producto is a cleaned product. Rows with non-positive or unparseable
// prices never reach this type; Precio is therefore always > 0.
type Producto struct {
	ID     string  `csv:"id_producto"`
	Nombre string  `csv:"nombre_producto"`
	Precio float64 `csv:"precio"`
}

// Material is a cleaned material record.
type Material struct {
	ID                 string  `csv:"id_material"`
	Nombre             string  `csv:"nombre_material"`
	Tipo               string  `csv:"tipo"`
	UnidadMedida       string  `csv:"unidad_medida"`
	CantidadDisponible float64 `csv:"cantidad_disponible"`
}

// Empleado is a cleaned employee record.
type Empleado struct {
	ID     string `csv:"id_empleado"`
	Nombre string `csv:"nombre"`
	Cargo  string `csv:"cargo"`
	Email  string `csv:"email"`
}

// DetalleOrden is a cleaned order line item. PrecioUnitario is nil when
// either operand was missing or the quantity was zero.
type DetalleOrden struct {
	IDOrden        string   `csv:"id_orden"`
	IDProducto     string   `csv:"id_producto"`
	Cantidad       *float64 `csv:"cantidad"`
	Subtotal       *float64 `csv:"subtotal"`
	PrecioUnitario *float64 `csv:"precio_unitario"`
}

// UsoMaterial is a cleaned material consumption record.
type UsoMaterial struct {
	IDOrden       string  `csv:"id_orden"`
	IDMaterial    string  `csv:"id_material"`
	CantidadUsada float64 `csv:"cantidad_usada"`
}

// CleanReport summarizes one entity's cleaning pass.
type CleanReport struct {
	Entity           string `json:"entity"`
	RowsIn           int    `json:"rows_in"`
	RowsOut          int    `json:"rows_out"`
	Dropped          int    `json:"dropped"`
	CoercionFailures int    `json:"coercion_failures"`
	EmailsDeduped    int    `json:"emails_deduped"`
}

// CleanSet is the immutable output of the Transformer: every cleaned entity
// present in this run, plus the availability set and per-entity reports.
// No component mutates a CleanSet after TransformAll returns it.
type CleanSet struct {
	Clientes   []Cliente
	Ordenes    []OrdenProduccion
	Productos  []Producto
	Materiales []Material
	Empleados  []Empleado
	Detalles   []DetalleOrden
	Usos       []UsoMaterial

	// Present holds the entity names that survived extraction and cleaning.
	// Derived-table builders consult it before running.
	Present map[string]bool

	// Reports maps entity name to its cleaning summary.
	Reports map[string]CleanReport
}

// Available reports whether every named entity is present in the clean set.
func (c *CleanSet) Available(names ...string) bool {
	for _, n := range names {
		if !c.Present[n] {
			return false
		}
	}
	return true
}

// MissingOf returns the subset of names not present in the clean set.
func (c *CleanSet) MissingOf(names ...string) []string {
	var out []string
	for _, n := range names {
		if !c.Present[n] {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of entities present.
func (c *CleanSet) Count() int { return len(c.Present) }
