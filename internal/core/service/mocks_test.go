package service

import (
	"context"
	"sync"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockConfigFetcher struct {
	mock.Mock
}

func (m *MockConfigFetcher) FetchConfig(
	ctx context.Context, shopKey string,
) (domain.RemoteConfigPayload, error) {
	args := m.Called(ctx, shopKey)
	return args.Get(0).(domain.RemoteConfigPayload), args.Error(1)
}

type mapCache struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, v []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
	return nil
}

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) ReadProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, offset, limit)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockCatalogReader) CountProducts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogReader) ReadProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockNativeSearcher struct {
	mock.Mock
}

func (m *MockNativeSearcher) SearchProducts(
	ctx context.Context, c domain.Criteria,
) ([]domain.Product, int, error) {
	args := m.Called(ctx, c)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Int(1), args.Error(2)
}

type MockProductGroupReader struct {
	mock.Mock
}

func (m *MockProductGroupReader) ReadProductGroupCategories(
	ctx context.Context,
) (map[string][]domain.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).(map[string][]domain.Category)
	return cats, args.Error(1)
}

type fakeGroupCache struct {
	mu    sync.Mutex
	shops map[string]map[string][]domain.Category
}

func newFakeGroupCache() *fakeGroupCache {
	return &fakeGroupCache{shops: make(map[string]map[string][]domain.Category)}
}

func (c *fakeGroupCache) Store(shopKey string, cats map[string][]domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shops[shopKey] = cats
}

func (c *fakeGroupCache) Categories(shopKey, productID string) ([]domain.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cats, ok := c.shops[shopKey][productID]
	return cats, ok
}

func (c *fakeGroupCache) IsWarmedUp(shopKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.shops[shopKey]
	return ok
}

type MockCustomerContextProvider struct {
	mock.Mock
}

func (m *MockCustomerContextProvider) ContextForCustomerGroup(
	ctx context.Context, groupID string,
) (domain.SalesContext, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(domain.SalesContext), args.Error(1)
}

type MockRuleEvaluator struct {
	mock.Mock
}

func (m *MockRuleEvaluator) MatchingRules(ctx context.Context, sc domain.SalesContext) ([]string, error) {
	args := m.Called(ctx, sc)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type MockPriceCalculator struct {
	mock.Mock
}

func (m *MockPriceCalculator) CalculatePrices(
	ctx context.Context, p domain.Product, sc domain.SalesContext,
) ([]domain.PriceEntry, error) {
	args := m.Called(ctx, p, sc)
	prices, _ := args.Get(0).([]domain.PriceEntry)
	return prices, args.Error(1)
}

type MockAdvancedPriceResolver struct {
	mock.Mock
}

func (m *MockAdvancedPriceResolver) ResolveAdvancedPrice(
	ctx context.Context, p domain.Product, customerGroupID string,
) (*domain.PriceEntry, error) {
	args := m.Called(ctx, p, customerGroupID)
	price, _ := args.Get(0).(*domain.PriceEntry)
	return price, args.Error(1)
}

type MockSearchAPI struct {
	mock.Mock
}

func (m *MockSearchAPI) Query(ctx context.Context, q domain.SearchQuery) (domain.SearchAPIResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.SearchAPIResponse), args.Error(1)
}

type MockServiceConfigReader struct {
	mock.Mock
}

func (m *MockServiceConfigReader) IsDirectIntegrationEnabled(ctx context.Context, shopKey string) (bool, error) {
	args := m.Called(ctx, shopKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceConfigReader) IsStaging(ctx context.Context, shopKey string) (bool, error) {
	args := m.Called(ctx, shopKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceConfigReader) SmartSuggestBlocks(ctx context.Context, shopKey string) ([]string, error) {
	args := m.Called(ctx, shopKey)
	blocks, _ := args.Get(0).([]string)
	return blocks, args.Error(1)
}

type MockItemsPublisher struct {
	mock.Mock
}

func (m *MockItemsPublisher) PublishItems(
	ctx context.Context, shopKey string, items []domain.ExportItem,
) error {
	args := m.Called(ctx, shopKey, items)
	return args.Error(0)
}
