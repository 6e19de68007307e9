package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.Exporter = (*Exporter)(nil)

const defaultExportCount = 20

type ExporterConfig struct {
	// Workers > 1 builds items in parallel.
	Workers int
}

// Exporter builds a page of export items. Products that cannot be exported
// are reported in the result errors and never abort the page.
type Exporter struct {
	catalog    port.CatalogReader
	groups     port.ProductGroupReader
	groupCache port.ProductGroupCache
	builder    ItemBuilder
	publisher  port.ItemsPublisher
	workers    int
}

// NewExporter creates an exporter. publisher may be nil.
func NewExporter(
	catalog port.CatalogReader,
	groups port.ProductGroupReader,
	groupCache port.ProductGroupCache,
	builder ItemBuilder,
	publisher port.ItemsPublisher,
	cfg ExporterConfig,
) *Exporter {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Exporter{
		catalog:    catalog,
		groups:     groups,
		groupCache: groupCache,
		builder:    builder,
		publisher:  publisher,
		workers:    workers,
	}
}

func (e *Exporter) Export(
	ctx context.Context, req domain.ExportRequest,
) (domain.ExportResult, error) {
	const op = "Exporter.Export"

	if err := ctx.Err(); err != nil {
		return domain.ExportResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !req.ExcludeProductGroups && !e.groupCache.IsWarmedUp(req.ShopKey) {
		return domain.ExportResult{}, fmt.Errorf("%s: %w", op, domain.ErrProductGroupsNotWarmedUp)
	}

	runID := uuid.NewString()
	errs := domain.NewExportErrors()
	log := newTeeLogger(slog.Default().Handler(), NewErrorSink(errs)).With(
		"op", op, "run_id", runID, "shopkey", req.ShopKey,
	)

	products, total, err := e.readProducts(ctx, req, log)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("%s: %w", op, err)
	}

	ec := ExportContext{ShopKey: req.ShopKey}
	if !req.ExcludeProductGroups {
		ec.ProductGroups = e.groupCache
	}

	results, err := e.buildAll(ctx, ec, products)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]domain.ExportItem, 0, len(results))
	for _, res := range results {
		if res.Skipped() {
			log.Warn("product skipped", "err", res.Skip)
			continue
		}
		items = append(items, res.Item)
	}

	if e.publisher != nil && len(items) != 0 {
		if err := e.publisher.PublishItems(ctx, req.ShopKey, items); err != nil {
			log.Error("failed to publish items", "err", err)
		}
	}

	log.Info("export finished",
		"nProducts", len(products), "nItems", len(items), "total", total,
	)

	return domain.ExportResult{
		RunID:  runID,
		Items:  items,
		Start:  req.Start,
		Total:  total,
		Errors: errs,
	}, nil
}

func (e *Exporter) readProducts(
	ctx context.Context, req domain.ExportRequest, log *slog.Logger,
) ([]domain.Product, int, error) {
	if req.ProductID != "" {
		ps, err := e.catalog.ReadProductsByIDs(ctx, []string{req.ProductID})
		if err != nil {
			return nil, 0, err
		}
		if len(ps) == 0 {
			log.Warn("product not found", productIDKey, req.ProductID)
		}
		return ps, len(ps), nil
	}

	total, err := e.catalog.CountProducts(ctx)
	if err != nil {
		return nil, 0, err
	}

	count := req.Count
	if count <= 0 {
		count = defaultExportCount
	}
	ps, err := e.catalog.ReadProducts(ctx, req.Start, count)
	if err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

// buildAll keeps results in the order of ps.
func (e *Exporter) buildAll(
	ctx context.Context, ec ExportContext, ps []domain.Product,
) ([]domain.ItemResult, error) {
	results := make([]domain.ItemResult, len(ps))

	if e.workers == 1 || len(ps) < 2 {
		for i, p := range ps {
			res, err := e.builder.Build(ctx, ec, p)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		jobs     = make(chan int)
	)

	for range min(e.workers, len(ps)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.builder.Build(ctx, ec, ps[i])
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[i] = res
			}
		}()
	}

feed:
	for i := range ps {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) WarmUpProductGroups(ctx context.Context, shopKey string) (int, error) {
	const op = "Exporter.WarmUpProductGroups"
	log := slog.With("op", op, "shopkey", shopKey)

	cats, err := e.groups.ReadProductGroupCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	e.groupCache.Store(shopKey, cats)

	log.Info("product groups warmed up", "nProducts", len(cats))
	return len(cats), nil
}
