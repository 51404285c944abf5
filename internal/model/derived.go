package model

// Derived analytical table names as persisted under the analytics directory.
const (
	TableOrdenesCompletas      = "ordenes_completas"
	TableVentasPorProducto     = "ventas_por_producto"
	TableUsoMaterialesAgregado = "uso_materiales_agregado"
	TableMetricasPorCliente    = "metricas_por_cliente"
	TableProductividad         = "productividad_empleados"
)

// AllDerivedTables lists the five derived tables in build order.
var AllDerivedTables = []string{
	TableOrdenesCompletas,
	TableVentasPorProducto,
	TableUsoMaterialesAgregado,
	TableMetricasPorCliente,
	TableProductividad,
}

// OrdenCompleta is one production order left-joined with its customer and
// responsible employee. Unmatched foreign keys leave the joined columns
// empty; the order row itself is never dropped.
type OrdenCompleta struct {
	ID                    string `csv:"id_orden"`
	IDCliente             string `csv:"id_cliente"`
	IDEmpleadoResponsable string `csv:"id_empleado_responsable"`
	FechaOrden            *Date  `csv:"fecha_orden"`
	FechaCompletado       *Date  `csv:"fecha_completado"`
	Estado                string `csv:"estado"`
	DuracionDias          *int   `csv:"duracion_dias"`
	NombreEmpresa         string `csv:"nombre_empresa"`
	Ciudad                string `csv:"ciudad"`
	NombreEmpleado        string `csv:"nombre_empleado"`
	CargoEmpleado         string `csv:"cargo_empleado"`
}

// VentaProducto aggregates order lines by product.
type VentaProducto struct {
	IDProducto      string   `csv:"id_producto"`
	NombreProducto  string   `csv:"nombre_producto"`
	CantidadTotal   float64  `csv:"cantidad_total"`
	IngresosTotales float64  `csv:"ingresos_totales"`
	NumOrdenes      int      `csv:"num_ordenes"`
	TicketPromedio  *float64 `csv:"ticket_promedio"`
}

// UsoMaterialAgregado aggregates material consumption by material.
// TasaRotacion is 0 when the available quantity is zero or missing.
type UsoMaterialAgregado struct {
	IDMaterial         string  `csv:"id_material"`
	NombreMaterial     string  `csv:"nombre_material"`
	Tipo               string  `csv:"tipo"`
	CantidadDisponible float64 `csv:"cantidad_disponible"`
	CantidadTotalUsada float64 `csv:"cantidad_total_usada"`
	NumOrdenes         int     `csv:"num_ordenes"`
	TasaRotacion       float64 `csv:"tasa_rotacion"`
}

// MetricaCliente aggregates orders and revenue by customer. Only customers
// with at least one order appear.
type MetricaCliente struct {
	IDCliente       string   `csv:"id_cliente"`
	NumOrdenes      int      `csv:"num_ordenes"`
	IngresosTotales float64  `csv:"ingresos_totales"`
	PrimeraOrden    *Date    `csv:"primera_orden"`
	UltimaOrden     *Date    `csv:"ultima_orden"`
	NombreEmpresa   string   `csv:"nombre_empresa"`
	Ciudad          string   `csv:"ciudad"`
	TicketPromedio  *float64 `csv:"ticket_promedio"`
}

// ProductividadEmpleado aggregates assigned orders by responsible employee.
// TasaCompletitud is completed/total*100 rounded to two decimals.
type ProductividadEmpleado struct {
	IDEmpleado         string  `csv:"id_empleado"`
	TotalOrdenes       int     `csv:"total_ordenes"`
	OrdenesCompletadas int     `csv:"ordenes_completadas"`
	NombreEmpleado     string  `csv:"nombre"`
	Cargo              string  `csv:"cargo"`
	TasaCompletitud    float64 `csv:"tasa_completitud"`
}

// DerivedSet holds the derived tables built this run. Built records which
// tables were produced; Skipped maps a skipped table to the entities whose
// absence prevented it.
type DerivedSet struct {
	OrdenesCompletas       []OrdenCompleta
	VentasPorProducto      []VentaProducto
	UsoMaterialesAgregado  []UsoMaterialAgregado
	MetricasPorCliente     []MetricaCliente
	ProductividadEmpleados []ProductividadEmpleado

	Built   map[string]bool
	Skipped map[string][]string
}

// CountBuilt returns the number of tables produced this run.
func (d *DerivedSet) CountBuilt() int { return len(d.Built) }
