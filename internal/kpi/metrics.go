package kpi

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Individual indicators. Every ratio guards its denominator: an empty table
// or zero divisor yields 0, never NaN or Inf.

// TasaCompletitudOrdenes is the share of orders with status Completado.
// Target: at least 85%.
func TasaCompletitudOrdenes(s *Snapshot) KPI {
	total := len(s.OrdenesCompletas)
	var completadas int
	for _, o := range s.OrdenesCompletas {
		if o.Estado == "Completado" {
			completadas++
		}
	}
	var tasa float64
	if total > 0 {
		tasa = float64(completadas) / float64(total) * 100
	}
	return KPI{
		Name:        "Tasa de Completitud de Órdenes",
		Value:       round2(tasa),
		Unit:        "%",
		Target:      f64(85),
		MeetsTarget: meets(tasa >= 85),
		Detail: map[string]any{
			"ordenes_completadas": completadas,
			"total_ordenes":       total,
		},
	}
}

// TiempoPromedioProduccion is the mean production duration in days over
// completed orders. Target: under 15 days.
func TiempoPromedioProduccion(s *Snapshot) KPI {
	var sum float64
	var n int
	for _, o := range s.OrdenesCompletas {
		if o.Estado == "Completado" && o.DuracionDias != nil {
			sum += float64(*o.DuracionDias)
			n++
		}
	}
	var avg float64
	if n > 0 {
		avg = sum / float64(n)
	}
	return KPI{
		Name:        "Tiempo Promedio de Producción",
		Value:       math.Round(avg*10) / 10,
		Unit:        "días",
		Target:      f64(15),
		MeetsTarget: meets(avg < 15),
		Detail:      map[string]any{"ordenes_analizadas": n},
	}
}

// ProductividadPorEmpleado is the mean number of assigned orders per
// employee. Target: more than 5.
func ProductividadPorEmpleado(s *Snapshot) KPI {
	var sum float64
	for _, p := range s.ProductividadEmpleados {
		sum += float64(p.TotalOrdenes)
	}
	var avg float64
	if len(s.ProductividadEmpleados) > 0 {
		avg = sum / float64(len(s.ProductividadEmpleados))
	}
	return KPI{
		Name:        "Productividad por Empleado",
		Value:       math.Round(avg*10) / 10,
		Unit:        "órdenes/empleado",
		Target:      f64(5),
		MeetsTarget: meets(avg > 5),
		Detail:      map[string]any{"total_empleados": len(s.ProductividadEmpleados)},
	}
}

// EficienciaUsoMateriales is the mean material rotation rate expressed as a
// percentage. Target range: 70-85%.
func EficienciaUsoMateriales(s *Snapshot) KPI {
	var sum float64
	for _, u := range s.UsoMaterialesAgregado {
		sum += u.TasaRotacion
	}
	var pct float64
	if len(s.UsoMaterialesAgregado) > 0 {
		pct = sum / float64(len(s.UsoMaterialesAgregado)) * 100
	}
	return KPI{
		Name:        "Eficiencia de Uso de Materiales",
		Value:       round2(pct),
		Unit:        "%",
		Target:      f64(70),
		TargetMax:   f64(85),
		MeetsTarget: meets(pct >= 70 && pct <= 85),
	}
}

// OrdenesEnProceso counts orders currently in progress. Monitoring only.
func OrdenesEnProceso(s *Snapshot) KPI {
	var n int
	for _, o := range s.OrdenesCompletas {
		if o.Estado == "En Proceso" {
			n++
		}
	}
	return KPI{
		Name:  "Órdenes en Proceso",
		Value: float64(n),
		Unit:  "órdenes",
	}
}

// IngresosTotales sums customer revenue. With a window, only customers
// whose last order falls within the window before asOf contribute.
func IngresosTotales(s *Snapshot, windowDays *int, asOf time.Time) KPI {
	name := "Ingresos Totales"
	var ingresos float64

	if windowDays != nil {
		name = fmt.Sprintf("Ingresos Totales (%d días)", *windowDays)
		limit := asOf.AddDate(0, 0, -*windowDays)
		for _, m := range s.MetricasPorCliente {
			if m.UltimaOrden != nil && !m.UltimaOrden.Before(limit) {
				ingresos += m.IngresosTotales
			}
		}
	} else {
		for _, m := range s.MetricasPorCliente {
			ingresos += m.IngresosTotales
		}
	}

	k := KPI{
		Name:  name,
		Value: round2(ingresos),
		Unit:  "$",
	}
	if windowDays != nil {
		k.Detail = map[string]any{"periodo_dias": *windowDays}
	}
	return k
}

// TicketPromedio is the mean average ticket across customers.
// Target: above $5,000.
func TicketPromedio(s *Snapshot) KPI {
	var sum float64
	var n int
	for _, m := range s.MetricasPorCliente {
		if m.TicketPromedio != nil {
			sum += *m.TicketPromedio
			n++
		}
	}
	var avg float64
	if n > 0 {
		avg = sum / float64(n)
	}
	return KPI{
		Name:        "Ticket Promedio",
		Value:       round2(avg),
		Unit:        "$",
		Target:      f64(5000),
		MeetsTarget: meets(avg > 5000),
	}
}

// ConcentracionTopClientes is the revenue share of the top-N customers.
// Target: under 50%.
func ConcentracionTopClientes(s *Snapshot, topN int) KPI {
	var total float64
	ingresos := make([]float64, 0, len(s.MetricasPorCliente))
	for _, m := range s.MetricasPorCliente {
		total += m.IngresosTotales
		ingresos = append(ingresos, m.IngresosTotales)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ingresos)))

	var top float64
	for i := 0; i < topN && i < len(ingresos); i++ {
		top += ingresos[i]
	}

	var pct float64
	if total > 0 {
		pct = top / total * 100
	}
	return KPI{
		Name:        fmt.Sprintf("Concentración Top %d Clientes", topN),
		Value:       round2(pct),
		Unit:        "%",
		Target:      f64(50),
		MeetsTarget: meets(pct < 50),
		Detail: map[string]any{
			"ingresos_top":   round2(top),
			"total_ingresos": round2(total),
		},
	}
}

// ClientesActivos counts customers whose last order falls within the window
// before asOf.
func ClientesActivos(s *Snapshot, windowDays int, asOf time.Time) KPI {
	limit := asOf.AddDate(0, 0, -windowDays)
	var activos int
	for _, m := range s.MetricasPorCliente {
		if m.UltimaOrden != nil && !m.UltimaOrden.Before(limit) {
			activos++
		}
	}
	return KPI{
		Name:  fmt.Sprintf("Clientes Activos (%d días)", windowDays),
		Value: float64(activos),
		Unit:  "clientes",
		Detail: map[string]any{
			"periodo_dias":   windowDays,
			"total_clientes": len(s.MetricasPorCliente),
		},
	}
}

// TasaRetencion is the share of customers with more than one order.
// Target: above 60%.
func TasaRetencion(s *Snapshot) KPI {
	total := len(s.MetricasPorCliente)
	var recurrentes int
	for _, m := range s.MetricasPorCliente {
		if m.NumOrdenes > 1 {
			recurrentes++
		}
	}
	var tasa float64
	if total > 0 {
		tasa = float64(recurrentes) / float64(total) * 100
	}
	return KPI{
		Name:        "Tasa de Retención",
		Value:       round2(tasa),
		Unit:        "%",
		Target:      f64(60),
		MeetsTarget: meets(tasa > 60),
		Detail: map[string]any{
			"clientes_recurrentes": recurrentes,
			"total_clientes":       total,
		},
	}
}

// FrecuenciaCompra is the mean order count per customer. Target: above 3.
func FrecuenciaCompra(s *Snapshot) KPI {
	var sum float64
	for _, m := range s.MetricasPorCliente {
		sum += float64(m.NumOrdenes)
	}
	var avg float64
	if len(s.MetricasPorCliente) > 0 {
		avg = sum / float64(len(s.MetricasPorCliente))
	}
	return KPI{
		Name:        "Frecuencia de Compra",
		Value:       round2(avg),
		Unit:        "órdenes/cliente",
		Target:      f64(3),
		MeetsTarget: meets(avg > 3),
	}
}

// DistribucionGeografica counts customers by city. Monitoring only.
func DistribucionGeografica(s *Snapshot) KPI {
	dist := make(map[string]any)
	for _, m := range s.MetricasPorCliente {
		ciudad := m.Ciudad
		if ciudad == "" {
			ciudad = "(sin ciudad)"
		}
		n, _ := dist[ciudad].(int)
		dist[ciudad] = n + 1
	}
	return KPI{
		Name:   "Distribución Geográfica",
		Value:  float64(len(dist)),
		Unit:   "ciudades",
		Detail: dist,
	}
}

// RotacionMateriales is the mean material rotation rate. Target: above 4.
func RotacionMateriales(s *Snapshot) KPI {
	var sum float64
	for _, u := range s.UsoMaterialesAgregado {
		sum += u.TasaRotacion
	}
	var avg float64
	if len(s.UsoMaterialesAgregado) > 0 {
		avg = sum / float64(len(s.UsoMaterialesAgregado))
	}
	return KPI{
		Name:        "Rotación de Materiales",
		Value:       round2(avg),
		Unit:        "veces",
		Target:      f64(4),
		MeetsTarget: meets(avg > 4),
	}
}

// StockCritico counts materials whose remaining stock is below the given
// percentage threshold. Target: zero.
func StockCritico(s *Snapshot, thresholdPct float64) KPI {
	var criticos int
	for _, u := range s.UsoMaterialesAgregado {
		if u.CantidadDisponible <= 0 {
			continue // no stock figure, nothing to compare
		}
		restante := (u.CantidadDisponible - u.CantidadTotalUsada) / u.CantidadDisponible * 100
		if restante < thresholdPct {
			criticos++
		}
	}
	return KPI{
		Name:        "Materiales con Stock Crítico",
		Value:       float64(criticos),
		Unit:        "materiales",
		Target:      f64(0),
		MeetsTarget: meets(criticos == 0),
		Detail:      map[string]any{"umbral_porcentaje": thresholdPct},
	}
}

// MaterialesMasUsados ranks the top-N materials by consumed quantity.
// Monitoring only.
func MaterialesMasUsados(s *Snapshot, topN int) KPI {
	rows := make([]struct {
		Nombre string
		Tipo   string
		Usada  float64
	}, 0, len(s.UsoMaterialesAgregado))
	for _, u := range s.UsoMaterialesAgregado {
		rows = append(rows, struct {
			Nombre string
			Tipo   string
			Usada  float64
		}{u.NombreMaterial, u.Tipo, u.CantidadTotalUsada})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Usada > rows[j].Usada })

	ranking := make([]map[string]any, 0, topN)
	for i := 0; i < topN && i < len(rows); i++ {
		ranking = append(ranking, map[string]any{
			"nombre_material":      rows[i].Nombre,
			"tipo":                 rows[i].Tipo,
			"cantidad_total_usada": rows[i].Usada,
		})
	}
	return KPI{
		Name:   fmt.Sprintf("Top %d Materiales Más Usados", topN),
		Value:  float64(len(ranking)),
		Unit:   "materiales",
		Detail: map[string]any{"ranking": ranking},
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
