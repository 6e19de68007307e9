package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProduct(id string) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "Product " + id,
		Description:   "Description " + id,
		ProductNumber: "SW-" + id,
		Manufacturer:  "Acme",
		CreatedAt:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		URL:           "https://shop.example/p/" + id,
		Keywords:      []string{"kw"},
		Properties:    map[string]string{"material": "cotton"},
		Attributes:    map[string][]string{"color": {"red"}},
		Categories: []domain.Category{{
			ID:         "c-1",
			Name:       "Shirts",
			URL:        "/men/shirts",
			Breadcrumb: []string{"Men", "Shirts"},
		}},
		Images: []domain.ProductImage{{URL: "https://img/" + id, Type: "default"}},
		Prices: []domain.ProductPrice{{Gross: decimal.RequireFromString("19.99"), Currency: "EUR"}},
		Sales:  3,
	}
}

func TestItemBuilder_Build(t *testing.T) {
	ec := ExportContext{ShopKey: testShopKey}

	t.Run("Regular", func(t *testing.T) {
		b := NewItemBuilder(nil, nil, BuilderConfig{})
		res, err := b.Build(t.Context(), ec, testProduct("1"))
		require.NoError(t, err)
		require.False(t, res.Skipped())

		item := res.Item
		assert.Equal(t, "1", item.ID)
		assert.Equal(t, "Product 1", item.Name)
		assert.Equal(t, []string{"Men_Shirts"}, item.Attributes["cat"])
		assert.Equal(t, []string{"/men/shirts"}, item.Attributes["cat_url"])
		assert.Equal(t, []string{"Acme"}, item.Attributes["vendor"])
		assert.Equal(t, []string{"red"}, item.Attributes["color"])
		assert.Equal(t, map[string]string{"material": "cotton"}, item.Properties)
		require.Len(t, item.Prices, 1)
		assert.Empty(t, item.Prices[0].UserGroup)
		assert.Equal(t, []string{"SW-1"}, item.OrderNumbers)
		assert.Equal(t, 3, item.SalesFrequency)
		assert.Equal(t, []domain.ImageEntry{{URL: "https://img/1", Type: "default"}}, item.Images)
	})

	skipCases := []struct {
		name   string
		mutate func(p *domain.Product)
		kind   domain.InvalidProductKind
	}{
		{"NoName", func(p *domain.Product) { p.Name = "  " }, domain.NoName},
		{"NoCategories", func(p *domain.Product) { p.Categories = nil }, domain.NoCategories},
		{"NoPrices", func(p *domain.Product) { p.Prices = nil }, domain.NoPrices},
		{"EmptyAttributeName", func(p *domain.Product) {
			p.Attributes = map[string][]string{"": {"x"}}
		}, domain.EmptyPropertyAccess},
		{"EmptyPropertyName", func(p *domain.Product) {
			p.Properties = map[string]string{"": "x"}
		}, domain.EmptyPropertyAccess},
		{"NoAttributes", func(p *domain.Product) {
			p.Categories = []domain.Category{{ID: "c-9"}}
			p.Manufacturer = ""
			p.Attributes = nil
		}, domain.NoAttributes},
	}
	for _, tc := range skipCases {
		t.Run(tc.name, func(t *testing.T) {
			p := testProduct("1")
			tc.mutate(&p)

			res, err := NewItemBuilder(nil, nil, BuilderConfig{}).Build(t.Context(), ec, p)
			require.NoError(t, err)
			require.True(t, res.Skipped())
			assert.Equal(t, tc.kind, res.Skip.Kind)
			assert.Equal(t, "1", res.Skip.Product.ID)
		})
	}

	t.Run("CrossSellingOnly", func(t *testing.T) {
		b := NewItemBuilder(nil, nil, BuilderConfig{CrossSellingCategories: []string{"c-1"}})
		res, err := b.Build(t.Context(), ec, testProduct("1"))
		require.NoError(t, err)
		require.True(t, res.Skipped())
		assert.Equal(t, domain.CrossSellingCategory, res.Skip.Kind)
		require.NotNil(t, res.Skip.Category)
		assert.Equal(t, "c-1", res.Skip.Category.ID)
	})

	t.Run("CrossSellingAndRegularCategory", func(t *testing.T) {
		p := testProduct("1")
		p.Categories = append(p.Categories, domain.Category{ID: "cs", Name: "Cross"})
		b := NewItemBuilder(nil, nil, BuilderConfig{CrossSellingCategories: []string{"cs"}})

		res, err := b.Build(t.Context(), ec, p)
		require.NoError(t, err)
		assert.False(t, res.Skipped())
	})

	t.Run("ProductGroupCategories", func(t *testing.T) {
		groups := newFakeGroupCache()
		groups.Store(testShopKey, map[string][]domain.Category{
			"1": {{ID: "pg-1", Name: "Sale"}},
		})
		p := testProduct("1")
		p.Categories = nil

		res, err := NewItemBuilder(nil, nil, BuilderConfig{}).Build(
			t.Context(), ExportContext{ShopKey: testShopKey, ProductGroups: groups}, p,
		)
		require.NoError(t, err)
		require.False(t, res.Skipped())
		assert.Equal(t, []string{"Sale"}, res.Item.Attributes["cat"])
	})

	t.Run("AdvancedPrices", func(t *testing.T) {
		resolver := new(MockAdvancedPriceResolver)
		p := testProduct("1")
		resolver.On("ResolveAdvancedPrice", mock.Anything, p, "g-1").
			Return(&domain.PriceEntry{UnitPrice: decimal.RequireFromString("15"), Currency: "EUR"}, nil)
		resolver.On("ResolveAdvancedPrice", mock.Anything, p, "g-2").Return(nil, nil)

		b := NewItemBuilder(resolver, nil, BuilderConfig{CustomerGroups: []string{"g-1", "g-2"}})
		res, err := b.Build(t.Context(), ec, p)
		require.NoError(t, err)
		require.False(t, res.Skipped())

		prices := res.Item.Prices
		require.Len(t, prices, 2)
		assert.Equal(t, UserGroupHash(testShopKey, "g-1"), prices[1].UserGroup)
		assert.Equal(t, []string{
			UserGroupHash(testShopKey, "g-1"),
			UserGroupHash(testShopKey, "g-2"),
		}, res.Item.UserGroups)
	})

	t.Run("PriceResolutionFailureIsFatal", func(t *testing.T) {
		resolver := new(MockAdvancedPriceResolver)
		errDB := errors.New("db down")
		resolver.On("ResolveAdvancedPrice", mock.Anything, mock.Anything, "g-1").Return(nil, errDB)

		b := NewItemBuilder(resolver, nil, BuilderConfig{CustomerGroups: []string{"g-1"}})
		_, err := b.Build(t.Context(), ec, testProduct("1"))
		assert.ErrorIs(t, err, errDB)
	})

	t.Run("Variants", func(t *testing.T) {
		p := testProduct("1")
		p.Variants = []domain.Product{
			{
				ID:            "1.1",
				ParentID:      "1",
				ProductNumber: "SW-1.1",
				EAN:           "4006381333931",
				Attributes:    map[string][]string{"size": {"M"}},
				Properties:    map[string]string{"fit": "slim", "material": "linen"},
			},
			{
				ID:            "1.2",
				ParentID:      "1",
				ProductNumber: "SW-1.2",
				Attributes:    map[string][]string{"size": {"L"}, "color": {"blue"}},
			},
		}

		res, err := NewItemBuilder(nil, nil, BuilderConfig{}).Build(t.Context(), ec, p)
		require.NoError(t, err)
		item := res.Item

		assert.Equal(t, []string{"SW-1", "SW-1.1", "4006381333931", "SW-1.2"}, item.OrderNumbers)
		assert.Equal(t, []string{"M", "L"}, item.Attributes["size"])
		assert.Equal(t, []string{"red", "blue"}, item.Attributes["color"])
		assert.Equal(t, "slim", item.Properties["fit"])
		assert.Equal(t, "cotton", item.Properties["material"])
	})

	t.Run("Hooks", func(t *testing.T) {
		var calls []string
		hooks := new(Hooks)
		hooks.OnBeforeItemAdapt(func(p domain.Product, item *domain.ExportItem) {
			calls = append(calls, "beforeItem:"+p.ID)
		})
		hooks.OnBeforeVariantAdapt(func(v domain.Product, item *domain.ExportItem) {
			calls = append(calls, "beforeVariant:"+v.ID+":"+v.Name)
		})
		hooks.OnAfterVariantAdapt(func(v domain.Product, item *domain.ExportItem) {
			calls = append(calls, "afterVariant:"+v.ID)
		})
		hooks.OnAfterItemBuild(func(item *domain.ExportItem) {
			calls = append(calls, "afterItem:"+item.ID)
			item.Properties["exported_by"] = "hook"
		})

		p := testProduct("1")
		p.Variants = []domain.Product{{ID: "1.1", ParentID: "1"}}

		res, err := NewItemBuilder(nil, hooks, BuilderConfig{}).Build(t.Context(), ec, p)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"beforeItem:1",
			"beforeVariant:1.1:Product 1",
			"afterVariant:1.1",
			"afterItem:1",
		}, calls)
		assert.Equal(t, "hook", res.Item.Properties["exported_by"])
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := NewItemBuilder(nil, nil, BuilderConfig{}).Build(ctx, ec, testProduct("1"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
