package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.SearchGateway = (*SearchService)(nil)

// SearchService answers storefront searches through the search service
// and falls back to the native catalog search.
type SearchService struct {
	config  port.ServiceConfigReader
	api     port.SearchAPI
	catalog port.CatalogReader
	native  port.NativeSearcher
}

func NewSearchService(
	config port.ServiceConfigReader,
	api port.SearchAPI,
	catalog port.CatalogReader,
	native port.NativeSearcher,
) *SearchService {
	return &SearchService{config, api, catalog, native}
}

func (s *SearchService) Search(
	ctx context.Context, shopKey string, c domain.Criteria,
) (domain.SearchResult, error) {
	const op = "SearchService.Search"
	log := slog.With("op", op, "shopkey", shopKey)

	if err := ctx.Err(); err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !s.useSearchAPI(ctx, shopKey, log) {
		return s.nativeSearch(ctx, c)
	}

	resp, err := s.api.Query(ctx, domain.SearchQuery{
		ShopKey:      shopKey,
		Term:         c.Term,
		First:        c.OffsetOr(0),
		Count:        c.LimitOr(domain.DefaultLimit),
		OutputAttrib: []string{attrCategory},
	})
	if err != nil {
		log.Warn("search service failed, using native search", "err", err)
		return s.nativeSearch(ctx, c)
	}

	ec := ApplyExternalPagination(CriteriaFromResponse(c, resp))

	local, err := s.catalog.ReadProductsByIDs(ctx, ec.IDs)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	products := ReconcileOrder(local, ProductKey, ec.IDs)
	offset := min(ec.OffsetOr(0), len(products))
	end := min(offset+ec.LimitOr(domain.DefaultLimit), len(products))

	return domain.SearchResult{
		Products: products[offset:end],
		Total:    resp.Total,
		Filters:  resp.Filters,
		External: true,
	}, nil
}

// useSearchAPI is false for direct integration shops, where the storefront
// talks to the search service itself, and when the config is unavailable.
func (s *SearchService) useSearchAPI(ctx context.Context, shopKey string, log *slog.Logger) bool {
	if shopKey == "" {
		return false
	}
	direct, err := s.config.IsDirectIntegrationEnabled(ctx, shopKey)
	if err != nil {
		log.Warn("service config unavailable, using native search", "err", err)
		return false
	}
	return !direct
}

func (s *SearchService) nativeSearch(ctx context.Context, c domain.Criteria) (domain.SearchResult, error) {
	const op = "SearchService.nativeSearch"

	ps, total, err := s.native.SearchProducts(ctx, c)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.SearchResult{Products: ps, Total: total}, nil
}

// CriteriaFromResponse replaces the criteria ids with the ranked ids of the
// response. The offset is dropped since the search service already skipped
// those ids, the caller's limit is kept.
func CriteriaFromResponse(c domain.Criteria, resp domain.SearchAPIResponse) domain.Criteria {
	out := domain.Criteria{
		IDs:        append([]string(nil), resp.IDs...),
		Term:       c.Term,
		Limit:      c.Limit,
		Extensions: maps.Clone(c.Extensions),
	}
	out.AddExtension(domain.ExtensionExternalPagination, resp.Total)
	return out
}
