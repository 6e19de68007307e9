package port

import (
	"context"

	"github.com/niksmo/finsearch/internal/core/domain"
)

// Inbound ports.

type Exporter interface {
	Export(context.Context, domain.ExportRequest) (domain.ExportResult, error)
	WarmUpProductGroups(ctx context.Context, shopKey string) (int, error)
}

type SearchGateway interface {
	Search(ctx context.Context, shopKey string, c domain.Criteria) (domain.SearchResult, error)
}

type ServiceConfigReader interface {
	IsDirectIntegrationEnabled(ctx context.Context, shopKey string) (bool, error)
	IsStaging(ctx context.Context, shopKey string) (bool, error)
	SmartSuggestBlocks(ctx context.Context, shopKey string) ([]string, error)
}

// Outbound ports.

type ConfigCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, v []byte) error
}

type ConfigFetcher interface {
	FetchConfig(ctx context.Context, shopKey string) (domain.RemoteConfigPayload, error)
}

type CatalogReader interface {
	ReadProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
	ReadProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type NativeSearcher interface {
	SearchProducts(ctx context.Context, c domain.Criteria) ([]domain.Product, int, error)
}

type ProductGroupReader interface {
	ReadProductGroupCategories(ctx context.Context) (map[string][]domain.Category, error)
}

type ProductGroupCache interface {
	Store(shopKey string, categories map[string][]domain.Category)
	Categories(shopKey, productID string) ([]domain.Category, bool)
	IsWarmedUp(shopKey string) bool
}

type CustomerContextProvider interface {
	ContextForCustomerGroup(ctx context.Context, groupID string) (domain.SalesContext, error)
}

type RuleEvaluator interface {
	MatchingRules(ctx context.Context, sc domain.SalesContext) ([]string, error)
}

type PriceCalculator interface {
	CalculatePrices(ctx context.Context, p domain.Product, sc domain.SalesContext) ([]domain.PriceEntry, error)
}

type SearchAPI interface {
	Query(ctx context.Context, q domain.SearchQuery) (domain.SearchAPIResponse, error)
}

type ItemsPublisher interface {
	PublishItems(ctx context.Context, shopKey string, items []domain.ExportItem) error
}
