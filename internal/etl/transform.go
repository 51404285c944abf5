package etl

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trazamatic/analytics-cli/internal/model"
)

// Transformer applies the per-entity cleaning rules. Each entity is cleaned
// independently from its own raw table only, so the seven passes run
// concurrently.
type Transformer struct{}

// NewTransformer returns a Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformAll cleans every entity present in the raw set. Entities absent
// from the input are absent from the output; the returned CleanSet is
// immutable from the caller's perspective.
func (tr *Transformer) TransformAll(ctx context.Context, raw model.EntitySet) (*model.CleanSet, error) {
	log := zap.L().With(zap.String("component", "transformer"))

	clean := &model.CleanSet{
		Present: make(map[string]bool, len(raw)),
		Reports: make(map[string]model.CleanReport, len(raw)),
	}

	var mu sync.Mutex
	record := func(rep model.CleanReport) {
		mu.Lock()
		clean.Present[rep.Entity] = true
		clean.Reports[rep.Entity] = rep
		mu.Unlock()

		log.Info("entity cleaned",
			zap.String("entity", rep.Entity),
			zap.Int("rows_in", rep.RowsIn),
			zap.Int("rows_out", rep.RowsOut),
		)
		if rep.Dropped > 0 {
			log.Warn("invalid rows removed",
				zap.String("entity", rep.Entity),
				zap.Int("dropped", rep.Dropped),
			)
		}
		if rep.EmailsDeduped > 0 {
			log.Warn("duplicate emails disambiguated",
				zap.String("entity", rep.Entity),
				zap.Int("emails_deduped", rep.EmailsDeduped),
			)
		}
		if rep.CoercionFailures > 0 {
			log.Warn("values coerced to null or default",
				zap.String("entity", rep.Entity),
				zap.Int("coercion_failures", rep.CoercionFailures),
			)
		}
	}

	g, _ := errgroup.WithContext(ctx)

	if t := raw[model.EntityClientes]; t != nil {
		g.Go(func() error {
			rows, rep := CleanClientes(t)
			mu.Lock()
			clean.Clientes = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityOrdenes]; t != nil {
		g.Go(func() error {
			rows, rep := CleanOrdenes(t)
			mu.Lock()
			clean.Ordenes = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityProductos]; t != nil {
		g.Go(func() error {
			rows, rep := CleanProductos(t)
			mu.Lock()
			clean.Productos = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityMateriales]; t != nil {
		g.Go(func() error {
			rows, rep := CleanMateriales(t)
			mu.Lock()
			clean.Materiales = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityEmpleados]; t != nil {
		g.Go(func() error {
			rows, rep := CleanEmpleados(t)
			mu.Lock()
			clean.Empleados = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityDetalles]; t != nil {
		g.Go(func() error {
			rows, rep := CleanDetalles(t)
			mu.Lock()
			clean.Detalles = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}
	if t := raw[model.EntityUsoMat]; t != nil {
		g.Go(func() error {
			rows, rep := CleanUsos(t)
			mu.Lock()
			clean.Usos = rows
			mu.Unlock()
			record(rep)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("transformation complete", zap.Int("entities", clean.Count()))
	return clean, nil
}
