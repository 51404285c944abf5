// Package kpi computes business indicators from the derived analytical
// tables. Results are memoized per freshness token, and every time-windowed
// indicator takes an explicit reference time so historical re-runs are
// reproducible.
package kpi

import "time"

// KPI is one computed indicator. Target fields are nil for monitoring-only
// indicators; Detail carries distributions and rankings.
type KPI struct {
	Name        string         `json:"nombre"`
	Value       float64        `json:"valor"`
	Unit        string         `json:"unidad"`
	Target      *float64       `json:"objetivo,omitempty"`
	TargetMax   *float64       `json:"objetivo_max,omitempty"`
	MeetsTarget *bool          `json:"cumple_objetivo,omitempty"`
	Detail      map[string]any `json:"detalle,omitempty"`
}

// Report groups every indicator computed from one snapshot of the derived
// tables.
type Report struct {
	AsOf       time.Time `json:"as_of"`
	Freshness  string    `json:"freshness_token"`
	Produccion []KPI     `json:"produccion"`
	Financiero []KPI     `json:"financiero"`
	Clientes   []KPI     `json:"clientes"`
	Inventario []KPI     `json:"inventario"`
}

func f64(v float64) *float64 { return &v }

func meets(ok bool) *bool { return &ok }
