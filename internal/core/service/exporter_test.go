package service

import (
	"errors"
	"testing"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type exporterDeps struct {
	catalog    *MockCatalogReader
	groups     *MockProductGroupReader
	groupCache *fakeGroupCache
	publisher  *MockItemsPublisher
}

func newTestExporter(workers int, withPublisher bool) (*Exporter, exporterDeps) {
	deps := exporterDeps{
		catalog:    new(MockCatalogReader),
		groups:     new(MockProductGroupReader),
		groupCache: newFakeGroupCache(),
		publisher:  new(MockItemsPublisher),
	}
	var publisher port.ItemsPublisher
	if withPublisher {
		publisher = deps.publisher
	}
	builder := NewItemBuilder(nil, nil, BuilderConfig{})
	e := NewExporter(
		deps.catalog, deps.groups, deps.groupCache, builder, publisher,
		ExporterConfig{Workers: workers},
	)
	return e, deps
}

func exportRequest() domain.ExportRequest {
	return domain.ExportRequest{ShopKey: testShopKey, Count: 20, ExcludeProductGroups: true}
}

func TestExporter_Export(t *testing.T) {
	t.Run("SkipsInvalidProducts", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		second := testProduct("2")
		second.Categories = nil
		deps.catalog.On("CountProducts", mock.Anything).Return(3, nil)
		deps.catalog.On("ReadProducts", mock.Anything, 0, 20).
			Return([]domain.Product{testProduct("1"), second, testProduct("3")}, nil)

		res, err := e.Export(t.Context(), exportRequest())
		require.NoError(t, err)

		require.Len(t, res.Items, 2)
		assert.Equal(t, "1", res.Items[0].ID)
		assert.Equal(t, "3", res.Items[1].ID)
		assert.Equal(t, 3, res.Total)
		assert.NotEmpty(t, res.RunID)

		errResp := res.Errors.BuildErrorResponse()
		assert.Empty(t, errResp.General)
		require.Len(t, errResp.Products, 1)
		assert.Equal(t, "2", errResp.Products[0].ProductID)
		require.Len(t, errResp.Products[0].Errors, 1)
		assert.Contains(t, errResp.Products[0].Errors[0], "has no categories assigned")
	})

	t.Run("ParallelWorkersKeepOrder", func(t *testing.T) {
		e, deps := newTestExporter(4, false)
		var ps []domain.Product
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			ps = append(ps, testProduct(id))
		}
		ps[3].Name = ""
		deps.catalog.On("CountProducts", mock.Anything).Return(len(ps), nil)
		deps.catalog.On("ReadProducts", mock.Anything, 0, 20).Return(ps, nil)

		res, err := e.Export(t.Context(), exportRequest())
		require.NoError(t, err)

		var ids []string
		for _, item := range res.Items {
			ids = append(ids, item.ID)
		}
		assert.Equal(t, []string{"a", "b", "c", "e", "f", "g", "h"}, ids)
		_, ok := res.Errors.ProductError("d")
		assert.True(t, ok)
	})

	t.Run("NotWarmedUp", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		req := exportRequest()
		req.ExcludeProductGroups = false

		_, err := e.Export(t.Context(), req)
		assert.ErrorIs(t, err, domain.ErrProductGroupsNotWarmedUp)
		deps.catalog.AssertNotCalled(t, "CountProducts", mock.Anything)
	})

	t.Run("WarmedUpProductGroups", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		deps.groups.On("ReadProductGroupCategories", mock.Anything).Return(
			map[string][]domain.Category{"1": {{ID: "pg", Name: "Sale"}}}, nil,
		)
		n, err := e.WarmUpProductGroups(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		p := testProduct("1")
		p.Categories = nil
		deps.catalog.On("CountProducts", mock.Anything).Return(1, nil)
		deps.catalog.On("ReadProducts", mock.Anything, 0, 20).Return([]domain.Product{p}, nil)

		req := exportRequest()
		req.ExcludeProductGroups = false
		res, err := e.Export(t.Context(), req)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, []string{"Sale"}, res.Items[0].Attributes["cat"])
	})

	t.Run("SingleProduct", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		deps.catalog.On("ReadProductsByIDs", mock.Anything, []string{"7"}).
			Return([]domain.Product{testProduct("7")}, nil)

		req := exportRequest()
		req.ProductID = "7"
		res, err := e.Export(t.Context(), req)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, 1, res.Total)
		assert.False(t, res.Errors.HasErrors())
		deps.catalog.AssertNotCalled(t, "CountProducts", mock.Anything)
	})

	t.Run("SingleProductNotFound", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		deps.catalog.On("ReadProductsByIDs", mock.Anything, []string{"7"}).Return(nil, nil)

		req := exportRequest()
		req.ProductID = "7"
		res, err := e.Export(t.Context(), req)
		require.NoError(t, err)
		assert.Empty(t, res.Items)

		pe, ok := res.Errors.ProductError("7")
		require.True(t, ok)
		assert.Equal(t, []string{"product not found"}, pe.Errors)
	})

	t.Run("CatalogFailure", func(t *testing.T) {
		e, deps := newTestExporter(1, false)
		errDB := errors.New("db down")
		deps.catalog.On("CountProducts", mock.Anything).Return(0, errDB)

		_, err := e.Export(t.Context(), exportRequest())
		assert.ErrorIs(t, err, errDB)
	})

	t.Run("PublishesBuiltItems", func(t *testing.T) {
		e, deps := newTestExporter(1, true)
		deps.catalog.On("CountProducts", mock.Anything).Return(1, nil)
		deps.catalog.On("ReadProducts", mock.Anything, 0, 20).
			Return([]domain.Product{testProduct("1")}, nil)
		deps.publisher.On("PublishItems", mock.Anything, testShopKey, mock.MatchedBy(
			func(items []domain.ExportItem) bool { return len(items) == 1 && items[0].ID == "1" },
		)).Return(nil)

		_, err := e.Export(t.Context(), exportRequest())
		require.NoError(t, err)
		deps.publisher.AssertExpectations(t)
	})

	t.Run("PublishFailureIsGeneralError", func(t *testing.T) {
		e, deps := newTestExporter(2, true)
		deps.catalog.On("CountProducts", mock.Anything).Return(2, nil)
		deps.catalog.On("ReadProducts", mock.Anything, 0, 20).
			Return([]domain.Product{testProduct("1"), testProduct("2")}, nil)
		deps.publisher.On("PublishItems", mock.Anything, testShopKey, mock.Anything).
			Return(errors.New("broker unavailable"))

		res, err := e.Export(t.Context(), exportRequest())
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t,
			[]string{"failed to publish items: broker unavailable"},
			res.Errors.BuildErrorResponse().General,
		)
	})
}
