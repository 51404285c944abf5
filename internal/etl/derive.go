package etl

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// derivedDeps maps each derived table to the cleaned entities it requires.
// A table whose dependencies are incomplete this run is skipped, never an
// error.
var derivedDeps = map[string][]string{
	model.TableOrdenesCompletas:      {model.EntityOrdenes, model.EntityClientes, model.EntityEmpleados},
	model.TableVentasPorProducto:     {model.EntityDetalles, model.EntityProductos, model.EntityOrdenes},
	model.TableUsoMaterialesAgregado: {model.EntityUsoMat, model.EntityMateriales, model.EntityOrdenes},
	model.TableMetricasPorCliente:    {model.EntityOrdenes, model.EntityDetalles, model.EntityClientes},
	model.TableProductividad:         {model.EntityOrdenes, model.EntityEmpleados},
}

// BuildOrdenesCompletas left-joins every production order with its customer
// and responsible employee. Unmatched foreign keys leave the joined columns
// empty; order rows are never dropped.
func BuildOrdenesCompletas(clean *model.CleanSet) []model.OrdenCompleta {
	clientes := make(map[string]model.Cliente, len(clean.Clientes))
	for _, c := range clean.Clientes {
		clientes[c.ID] = c
	}
	empleados := make(map[string]model.Empleado, len(clean.Empleados))
	for _, e := range clean.Empleados {
		empleados[e.ID] = e
	}

	out := make([]model.OrdenCompleta, 0, len(clean.Ordenes))
	for _, o := range clean.Ordenes {
		row := model.OrdenCompleta{
			ID:                    o.ID,
			IDCliente:             o.IDCliente,
			IDEmpleadoResponsable: o.IDEmpleadoResponsable,
			FechaOrden:            o.FechaOrden,
			FechaCompletado:       o.FechaCompletado,
			Estado:                o.Estado,
			DuracionDias:          o.DuracionDias,
		}
		if c, ok := clientes[o.IDCliente]; ok {
			row.NombreEmpresa = c.NombreEmpresa
			row.Ciudad = c.Ciudad
		}
		if e, ok := empleados[o.IDEmpleadoResponsable]; ok {
			row.NombreEmpleado = e.Nombre
			row.CargoEmpleado = e.Cargo
		}
		out = append(out, row)
	}
	return out
}

// BuildVentasPorProducto aggregates order lines by product: summed
// quantity, summed subtotal, distinct order count, and average ticket.
func BuildVentasPorProducto(clean *model.CleanSet) []model.VentaProducto {
	productos := make(map[string]model.Producto, len(clean.Productos))
	for _, p := range clean.Productos {
		productos[p.ID] = p
	}

	type acc struct {
		cantidad float64
		ingresos float64
		ordenes  map[string]bool
	}
	groups := make(map[string]*acc)

	for _, d := range clean.Detalles {
		g := groups[d.IDProducto]
		if g == nil {
			g = &acc{ordenes: make(map[string]bool)}
			groups[d.IDProducto] = g
		}
		if d.Cantidad != nil {
			g.cantidad += *d.Cantidad
		}
		if d.Subtotal != nil {
			g.ingresos += *d.Subtotal
		}
		g.ordenes[d.IDOrden] = true
	}

	out := make([]model.VentaProducto, 0, len(groups))
	for id, g := range groups {
		row := model.VentaProducto{
			IDProducto:      id,
			CantidadTotal:   g.cantidad,
			IngresosTotales: g.ingresos,
			NumOrdenes:      len(g.ordenes),
		}
		if p, ok := productos[id]; ok {
			row.NombreProducto = p.Nombre
		}
		if row.NumOrdenes > 0 {
			ticket := row.IngresosTotales / float64(row.NumOrdenes)
			row.TicketPromedio = &ticket
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].IDProducto < out[j].IDProducto })
	return out
}

// BuildUsoMaterialesAgregado aggregates consumption by material. The
// rotation rate is consumed/available, 0 when nothing is available.
func BuildUsoMaterialesAgregado(clean *model.CleanSet) []model.UsoMaterialAgregado {
	materiales := make(map[string]model.Material, len(clean.Materiales))
	for _, m := range clean.Materiales {
		materiales[m.ID] = m
	}

	type acc struct {
		usada   float64
		ordenes map[string]bool
	}
	groups := make(map[string]*acc)

	for _, u := range clean.Usos {
		g := groups[u.IDMaterial]
		if g == nil {
			g = &acc{ordenes: make(map[string]bool)}
			groups[u.IDMaterial] = g
		}
		g.usada += u.CantidadUsada
		g.ordenes[u.IDOrden] = true
	}

	out := make([]model.UsoMaterialAgregado, 0, len(groups))
	for id, g := range groups {
		row := model.UsoMaterialAgregado{
			IDMaterial:         id,
			CantidadTotalUsada: g.usada,
			NumOrdenes:         len(g.ordenes),
		}
		if m, ok := materiales[id]; ok {
			row.NombreMaterial = m.Nombre
			row.Tipo = m.Tipo
			row.CantidadDisponible = m.CantidadDisponible
		}
		if row.CantidadDisponible > 0 {
			row.TasaRotacion = row.CantidadTotalUsada / row.CantidadDisponible
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].IDMaterial < out[j].IDMaterial })
	return out
}

// BuildMetricasPorCliente aggregates orders by customer: order count,
// summed order totals, first and last order date, and average ticket.
// An order's total is the sum of its line subtotals.
func BuildMetricasPorCliente(clean *model.CleanSet) []model.MetricaCliente {
	totales := make(map[string]float64, len(clean.Ordenes))
	for _, d := range clean.Detalles {
		if d.Subtotal != nil {
			totales[d.IDOrden] += *d.Subtotal
		}
	}

	clientes := make(map[string]model.Cliente, len(clean.Clientes))
	for _, c := range clean.Clientes {
		clientes[c.ID] = c
	}

	type acc struct {
		ordenes  int
		ingresos float64
		primera  *model.Date
		ultima   *model.Date
	}
	groups := make(map[string]*acc)

	for _, o := range clean.Ordenes {
		g := groups[o.IDCliente]
		if g == nil {
			g = &acc{}
			groups[o.IDCliente] = g
		}
		g.ordenes++
		g.ingresos += totales[o.ID]
		if o.FechaOrden != nil {
			if g.primera == nil || o.FechaOrden.Before(g.primera.Time) {
				g.primera = o.FechaOrden
			}
			if g.ultima == nil || o.FechaOrden.After(g.ultima.Time) {
				g.ultima = o.FechaOrden
			}
		}
	}

	out := make([]model.MetricaCliente, 0, len(groups))
	for id, g := range groups {
		row := model.MetricaCliente{
			IDCliente:       id,
			NumOrdenes:      g.ordenes,
			IngresosTotales: g.ingresos,
			PrimeraOrden:    g.primera,
			UltimaOrden:     g.ultima,
		}
		if c, ok := clientes[id]; ok {
			row.NombreEmpresa = c.NombreEmpresa
			row.Ciudad = c.Ciudad
		}
		if g.ordenes > 0 {
			ticket := g.ingresos / float64(g.ordenes)
			row.TicketPromedio = &ticket
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].IDCliente < out[j].IDCliente })
	return out
}

// BuildProductividadEmpleados aggregates assigned orders by responsible
// employee: total assigned, count completed, and completion rate.
func BuildProductividadEmpleados(clean *model.CleanSet) []model.ProductividadEmpleado {
	empleados := make(map[string]model.Empleado, len(clean.Empleados))
	for _, e := range clean.Empleados {
		empleados[e.ID] = e
	}

	type acc struct {
		total      int
		completado int
	}
	groups := make(map[string]*acc)

	for _, o := range clean.Ordenes {
		g := groups[o.IDEmpleadoResponsable]
		if g == nil {
			g = &acc{}
			groups[o.IDEmpleadoResponsable] = g
		}
		g.total++
		if o.Estado == "Completado" {
			g.completado++
		}
	}

	out := make([]model.ProductividadEmpleado, 0, len(groups))
	for id, g := range groups {
		row := model.ProductividadEmpleado{
			IDEmpleado:         id,
			TotalOrdenes:       g.total,
			OrdenesCompletadas: g.completado,
		}
		if e, ok := empleados[id]; ok {
			row.NombreEmpleado = e.Nombre
			row.Cargo = e.Cargo
		}
		if g.total > 0 {
			row.TasaCompletitud = round2(float64(g.completado) / float64(g.total) * 100)
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].IDEmpleado < out[j].IDEmpleado })
	return out
}

// BuildDerived builds every derived table whose required entities are
// present in the clean set. Eligible builders run concurrently; each reads
// only the immutable clean set and writes to its own output slot.
func BuildDerived(ctx context.Context, clean *model.CleanSet) (*model.DerivedSet, error) {
	log := zap.L().With(zap.String("component", "aggregator"))

	out := &model.DerivedSet{
		Built:   make(map[string]bool, len(model.AllDerivedTables)),
		Skipped: make(map[string][]string),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)

	build := func(table string, fn func()) {
		if missing := clean.MissingOf(derivedDeps[table]...); len(missing) > 0 {
			out.Skipped[table] = missing
			log.Warn("derived table skipped",
				zap.String("table", table),
				zap.Strings("missing_entities", missing),
			)
			return
		}
		g.Go(func() error {
			fn()
			mu.Lock()
			out.Built[table] = true
			mu.Unlock()
			return nil
		})
	}

	build(model.TableOrdenesCompletas, func() {
		out.OrdenesCompletas = BuildOrdenesCompletas(clean)
	})
	build(model.TableVentasPorProducto, func() {
		out.VentasPorProducto = BuildVentasPorProducto(clean)
	})
	build(model.TableUsoMaterialesAgregado, func() {
		out.UsoMaterialesAgregado = BuildUsoMaterialesAgregado(clean)
	})
	build(model.TableMetricasPorCliente, func() {
		out.MetricasPorCliente = BuildMetricasPorCliente(clean)
	})
	build(model.TableProductividad, func() {
		out.ProductividadEmpleados = BuildProductividadEmpleados(clean)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("aggregation complete",
		zap.Int("built", out.CountBuilt()),
		zap.Int("skipped", len(out.Skipped)),
	)
	return out, nil
}
