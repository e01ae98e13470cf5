package invalidation

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-request-cache/cache"
)

// Invalidator translates domain mutations into cache clears. It is bound to
// one facade and one dependency graph; mutation code paths call the named
// helpers fire-and-forget.
type Invalidator struct {
	svc   cache.CacheService
	graph Graph
	log   *slog.Logger
}

// New creates an Invalidator over svc driven by graph. A nil graph uses
// DefaultGraph; a nil logger uses slog.Default().
func New(svc cache.CacheService, graph Graph, logger *slog.Logger) *Invalidator {
	if graph == nil {
		graph = DefaultGraph()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{svc: svc, graph: graph, log: logger}
}

// Invalidate clears every pattern the graph lists for entity, plus any
// ad-hoc patterns attached to ctx via WithPatterns. Unknown entities clear
// only the context patterns.
func (i *Invalidator) Invalidate(ctx context.Context, entity string) {
	patterns := dedupeStrings(append(i.graph.Patterns(entity), PatternsFromContext(ctx)...))
	for _, p := range patterns {
		i.svc.ClearMatching(ctx, p)
	}
	i.log.Debug("cache invalidated", "entity", entity, "patterns", patterns)
}

// Named helpers, one per entity, callable from any mutation code path.

func (i *Invalidator) InvalidateProductCache(ctx context.Context)   { i.Invalidate(ctx, "product") }
func (i *Invalidator) InvalidateCategoryCache(ctx context.Context)  { i.Invalidate(ctx, "category") }
func (i *Invalidator) InvalidateBrandCache(ctx context.Context)     { i.Invalidate(ctx, "brand") }
func (i *Invalidator) InvalidateUnitCache(ctx context.Context)      { i.Invalidate(ctx, "unit") }
func (i *Invalidator) InvalidateVariationCache(ctx context.Context) { i.Invalidate(ctx, "variation") }
func (i *Invalidator) InvalidateTaxCache(ctx context.Context)       { i.Invalidate(ctx, "tax") }
func (i *Invalidator) InvalidateCustomerCache(ctx context.Context)  { i.Invalidate(ctx, "customer") }
func (i *Invalidator) InvalidateSupplierCache(ctx context.Context)  { i.Invalidate(ctx, "supplier") }
func (i *Invalidator) InvalidateSaleCache(ctx context.Context)      { i.Invalidate(ctx, "sale") }
func (i *Invalidator) InvalidatePurchaseCache(ctx context.Context)  { i.Invalidate(ctx, "purchase") }
func (i *Invalidator) InvalidateStockCache(ctx context.Context)     { i.Invalidate(ctx, "stock") }
func (i *Invalidator) InvalidateExpenseCache(ctx context.Context)   { i.Invalidate(ctx, "expense") }
func (i *Invalidator) InvalidateWarehouseCache(ctx context.Context) { i.Invalidate(ctx, "warehouse") }
func (i *Invalidator) InvalidateCouponCache(ctx context.Context)    { i.Invalidate(ctx, "coupon") }
