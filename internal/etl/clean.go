package etl

import (
	"strconv"
	"strings"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// Per-entity cleaning functions. Each is pure, total, and idempotent:
// malformed values coerce to null or a default, and re-cleaning already
// clean data yields the same result. Only CleanProductos removes rows.

// rawField returns the first named column present in the table, so cleaners
// accept both the raw column names and their cleaned renames.
func rawField(t *model.RawTable, row []string, names ...string) string {
	for _, n := range names {
		if t.HasCol(n) {
			return t.Field(row, n)
		}
	}
	return ""
}

// CleanClientes trims every string field, strips phone numbers to digits,
// renames contact columns, and disambiguates duplicate emails by suffixing
// the local part with the row index.
func CleanClientes(t *model.RawTable) ([]model.Cliente, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityClientes, RowsIn: t.Len()}

	out := make([]model.Cliente, 0, t.Len())
	seenEmails := make(map[string]bool, t.Len())

	for i, row := range t.Rows {
		c := model.Cliente{
			ID:             strings.TrimSpace(t.Field(row, "id_cliente")),
			NombreEmpresa:  strings.TrimSpace(t.Field(row, "nombre_empresa")),
			Ciudad:         strings.TrimSpace(t.Field(row, "ciudad")),
			Telefono:       digitsOnly(rawField(t, row, "telefono", "contacto_telefono")),
			Email:          strings.TrimSpace(rawField(t, row, "email", "contacto_email")),
			NombreContacto: strings.TrimSpace(rawField(t, row, "nombre_contacto", "contacto_nombre")),
		}

		if c.Email != "" && seenEmails[c.Email] {
			if at := strings.Index(c.Email, "@"); at >= 0 {
				c.Email = c.Email[:at] + strconv.Itoa(i) + c.Email[at:]
				rep.EmailsDeduped++
			}
		}
		seenEmails[c.Email] = true

		out = append(out, c)
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanOrdenes parses date columns with parse-else-null semantics,
// title-cases the status, and derives duracion_dias when both dates are
// present.
func CleanOrdenes(t *model.RawTable) ([]model.OrdenProduccion, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityOrdenes, RowsIn: t.Len()}

	out := make([]model.OrdenProduccion, 0, t.Len())
	for _, row := range t.Rows {
		o := model.OrdenProduccion{
			ID:                    strings.TrimSpace(t.Field(row, "id_orden")),
			IDCliente:             strings.TrimSpace(t.Field(row, "id_cliente")),
			IDEmpleadoResponsable: strings.TrimSpace(t.Field(row, "id_empleado_responsable")),
			Estado:                titleCase(t.Field(row, "estado")),
		}

		for _, col := range []string{"fecha_orden", "fecha_completado"} {
			raw := t.Field(row, col)
			d := parseDate(raw)
			if d == nil && strings.TrimSpace(raw) != "" {
				rep.CoercionFailures++
			}
			if col == "fecha_orden" {
				o.FechaOrden = d
			} else {
				o.FechaCompletado = d
			}
		}

		if o.FechaOrden != nil && o.FechaCompletado != nil {
			days := o.FechaOrden.DaysUntil(*o.FechaCompletado)
			o.DuracionDias = &days
		}

		out = append(out, o)
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanProductos coerces prices to numbers and filters out rows whose price
// is unparseable or not positive. The dropped count is reported.
func CleanProductos(t *model.RawTable) ([]model.Producto, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityProductos, RowsIn: t.Len()}

	out := make([]model.Producto, 0, t.Len())
	for _, row := range t.Rows {
		precio := parseFloat(t.Field(row, "precio"))
		if precio == nil || *precio <= 0 {
			rep.Dropped++
			continue
		}
		out = append(out, model.Producto{
			ID:     strings.TrimSpace(t.Field(row, "id_producto")),
			Nombre: strings.TrimSpace(t.Field(row, "nombre_producto")),
			Precio: *precio,
		})
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanMateriales title-cases the material type, lower-cases the unit of
// measure, and coerces the available quantity with a default of 0.
func CleanMateriales(t *model.RawTable) ([]model.Material, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityMateriales, RowsIn: t.Len()}

	out := make([]model.Material, 0, t.Len())
	for _, row := range t.Rows {
		disponible, failed := floatOrZero(t.Field(row, "cantidad_disponible"))
		if failed {
			rep.CoercionFailures++
		}
		out = append(out, model.Material{
			ID:                 strings.TrimSpace(t.Field(row, "id_material")),
			Nombre:             strings.TrimSpace(t.Field(row, "nombre_material")),
			Tipo:               titleCase(t.Field(row, "tipo")),
			UnidadMedida:       strings.ToLower(strings.TrimSpace(t.Field(row, "unidad_medida"))),
			CantidadDisponible: disponible,
		})
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanEmpleados trims names, title-cases roles, and lower-cases emails.
func CleanEmpleados(t *model.RawTable) ([]model.Empleado, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityEmpleados, RowsIn: t.Len()}

	out := make([]model.Empleado, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, model.Empleado{
			ID:     strings.TrimSpace(t.Field(row, "id_empleado")),
			Nombre: strings.TrimSpace(t.Field(row, "nombre")),
			Cargo:  titleCase(t.Field(row, "cargo")),
			Email:  strings.ToLower(strings.TrimSpace(t.Field(row, "email"))),
		})
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanDetalles coerces quantity and subtotal with parse-else-null
// semantics and derives the unit price when both are present. A zero
// quantity yields a null unit price, never an error.
func CleanDetalles(t *model.RawTable) ([]model.DetalleOrden, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityDetalles, RowsIn: t.Len()}

	out := make([]model.DetalleOrden, 0, t.Len())
	for _, row := range t.Rows {
		d := model.DetalleOrden{
			IDOrden:    strings.TrimSpace(t.Field(row, "id_orden")),
			IDProducto: strings.TrimSpace(t.Field(row, "id_producto")),
			Cantidad:   parseFloat(t.Field(row, "cantidad")),
			Subtotal:   parseFloat(t.Field(row, "subtotal")),
		}
		if d.Cantidad == nil && strings.TrimSpace(t.Field(row, "cantidad")) != "" {
			rep.CoercionFailures++
		}
		if d.Subtotal == nil && strings.TrimSpace(t.Field(row, "subtotal")) != "" {
			rep.CoercionFailures++
		}

		if d.Cantidad != nil && d.Subtotal != nil && *d.Cantidad != 0 {
			unit := *d.Subtotal / *d.Cantidad
			d.PrecioUnitario = &unit
		}

		out = append(out, d)
	}

	rep.RowsOut = len(out)
	return out, rep
}

// CleanUsos coerces the consumed quantity with a default of 0.
func CleanUsos(t *model.RawTable) ([]model.UsoMaterial, model.CleanReport) {
	rep := model.CleanReport{Entity: model.EntityUsoMat, RowsIn: t.Len()}

	out := make([]model.UsoMaterial, 0, t.Len())
	for _, row := range t.Rows {
		usada, failed := floatOrZero(t.Field(row, "cantidad_usada"))
		if failed {
			rep.CoercionFailures++
		}
		out = append(out, model.UsoMaterial{
			IDOrden:       strings.TrimSpace(t.Field(row, "id_orden")),
			IDMaterial:    strings.TrimSpace(t.Field(row, "id_material")),
			CantidadUsada: usada,
		})
	}

	rep.RowsOut = len(out)
	return out, rep
}
