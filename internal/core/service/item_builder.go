package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

const (
	attrCategory    = "cat"
	attrCategoryURL = "cat_url"
	attrVendor      = "vendor"
)

type advancedPriceResolver interface {
	ResolveAdvancedPrice(ctx context.Context, p domain.Product, customerGroupID string) (*domain.PriceEntry, error)
}

type BuilderConfig struct {
	CustomerGroups         []string
	CrossSellingCategories []string
}

// ExportContext carries per request data into the builder.
type ExportContext struct {
	ShopKey string
	// ProductGroups is nil when dynamic product groups are excluded.
	ProductGroups port.ProductGroupCache
}

// ItemBuilder turns catalog products into export items.
type ItemBuilder struct {
	prices         advancedPriceResolver
	hooks          *Hooks
	customerGroups []string
	crossSelling   map[string]struct{}
}

func NewItemBuilder(prices advancedPriceResolver, hooks *Hooks, cfg BuilderConfig) ItemBuilder {
	crossSelling := make(map[string]struct{}, len(cfg.CrossSellingCategories))
	for _, id := range cfg.CrossSellingCategories {
		crossSelling[id] = struct{}{}
	}
	return ItemBuilder{
		prices:         prices,
		hooks:          hooks,
		customerGroups: cfg.CustomerGroups,
		crossSelling:   crossSelling,
	}
}

// Build returns a skipped result for products that cannot be exported. The
// error is reserved for failures that should stop the export.
func (b ItemBuilder) Build(
	ctx context.Context, ec ExportContext, p domain.Product,
) (domain.ItemResult, error) {
	const op = "ItemBuilder.Build"

	if err := ctx.Err(); err != nil {
		return domain.ItemResult{}, fmt.Errorf("%s: %w", op, err)
	}

	item := domain.NewExportItem(p.ID)
	b.hooks.runBeforeItemAdapt(p, &item)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		return skip(domain.NoName, p), nil
	}
	item.Name = name

	categories := b.categories(ec, p)
	if len(categories) == 0 {
		return skip(domain.NoCategories, p), nil
	}
	if cat, ok := b.onlyCrossSelling(categories); ok {
		invalid := domain.NewInvalidProductError(domain.CrossSellingCategory, p)
		invalid.Category = &cat
		return domain.Skipped(invalid), nil
	}

	if invalid := b.adaptAttributes(&item, p, categories); invalid != nil {
		return domain.Skipped(invalid), nil
	}
	if len(item.Attributes) == 0 {
		return skip(domain.NoAttributes, p), nil
	}

	prices, err := b.buildPrices(ctx, ec, p)
	if err != nil {
		return domain.ItemResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(prices) == 0 {
		return skip(domain.NoPrices, p), nil
	}
	item.Prices = prices

	if invalid := b.adaptProperties(&item, p); invalid != nil {
		return domain.Skipped(invalid), nil
	}

	item.Description = p.Description
	item.DateAdded = p.CreatedAt
	item.URL = p.URL
	item.SalesFrequency = p.Sales
	item.Keywords = append(item.Keywords, p.Keywords...)
	item.AddOrderNumber(p.ProductNumber)
	item.AddOrderNumber(p.EAN)
	item.AddOrderNumber(p.ManufacturerNumber)
	for _, img := range p.Images {
		item.Images = append(item.Images, domain.ImageEntry{URL: img.URL, Type: img.Type})
	}
	for _, group := range b.customerGroups {
		item.UserGroups = append(item.UserGroups, UserGroupHash(ec.ShopKey, group))
	}

	for _, v := range p.Variants {
		b.adaptVariant(&item, p, v)
	}

	b.hooks.runAfterItemBuild(&item)
	return domain.Built(item), nil
}

func skip(kind domain.InvalidProductKind, p domain.Product) domain.ItemResult {
	return domain.Skipped(domain.NewInvalidProductError(kind, p))
}

func (b ItemBuilder) categories(ec ExportContext, p domain.Product) []domain.Category {
	cats := append([]domain.Category(nil), p.Categories...)
	if ec.ProductGroups == nil {
		return cats
	}
	extra, _ := ec.ProductGroups.Categories(ec.ShopKey, p.ID)
	for _, c := range extra {
		if !hasCategory(cats, c.ID) {
			cats = append(cats, c)
		}
	}
	return cats
}

func hasCategory(cats []domain.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}

// onlyCrossSelling returns the first category if every category of the
// product is a cross selling category.
func (b ItemBuilder) onlyCrossSelling(cats []domain.Category) (domain.Category, bool) {
	if len(b.crossSelling) == 0 {
		return domain.Category{}, false
	}
	for _, c := range cats {
		if _, ok := b.crossSelling[c.ID]; !ok {
			return domain.Category{}, false
		}
	}
	return cats[0], true
}

func (b ItemBuilder) adaptAttributes(
	item *domain.ExportItem, p domain.Product, cats []domain.Category,
) *domain.InvalidProductError {
	for _, c := range cats {
		path := c.Breadcrumb
		if len(path) == 0 && c.Name != "" {
			path = []string{c.Name}
		}
		if len(path) != 0 {
			item.AddAttribute(attrCategory, strings.Join(path, domain.CategoryPathSeparator))
		}
		item.AddAttribute(attrCategoryURL, c.URL)
	}

	item.AddAttribute(attrVendor, p.Manufacturer)

	for _, name := range sortedKeys(p.Attributes) {
		if strings.TrimSpace(name) == "" {
			invalid := domain.NewInvalidProductError(domain.EmptyPropertyAccess, p)
			invalid.Property = "attributes"
			return invalid
		}
		item.AddAttribute(name, p.Attributes[name]...)
	}
	return nil
}

func (b ItemBuilder) adaptProperties(item *domain.ExportItem, p domain.Product) *domain.InvalidProductError {
	for k, v := range p.Properties {
		if strings.TrimSpace(k) == "" {
			invalid := domain.NewInvalidProductError(domain.EmptyPropertyAccess, p)
			invalid.Property = "properties"
			return invalid
		}
		if v == "" {
			continue
		}
		item.Properties[k] = v
	}
	return nil
}

func (b ItemBuilder) buildPrices(
	ctx context.Context, ec ExportContext, p domain.Product,
) ([]domain.PriceEntry, error) {
	var prices []domain.PriceEntry
	for _, bp := range p.Prices {
		prices = append(prices, domain.PriceEntry{UnitPrice: bp.Gross, Currency: bp.Currency})
	}

	if len(prices) == 0 {
		return nil, nil
	}

	for _, group := range b.customerGroups {
		price, err := b.prices.ResolveAdvancedPrice(ctx, p, group)
		if err != nil {
			return nil, err
		}
		if price == nil {
			continue
		}
		price.UserGroup = UserGroupHash(ec.ShopKey, group)
		prices = append(prices, *price)
	}
	return prices, nil
}

func (b ItemBuilder) adaptVariant(item *domain.ExportItem, parent, v domain.Product) {
	v = inheritFromParent(parent, v)
	b.hooks.runBeforeVariantAdapt(v, item)

	item.AddOrderNumber(v.ProductNumber)
	item.AddOrderNumber(v.EAN)
	item.AddOrderNumber(v.ManufacturerNumber)
	for _, name := range sortedKeys(v.Attributes) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		item.AddAttribute(name, v.Attributes[name]...)
	}
	for k, val := range v.Properties {
		if _, ok := item.Properties[k]; !ok && k != "" && val != "" {
			item.Properties[k] = val
		}
	}

	b.hooks.runAfterVariantAdapt(v, item)
}

// inheritFromParent fills the fields a variant does not override. Only
// attributes reach the item directly, the other fields are there for the
// variant hooks.
func inheritFromParent(parent, v domain.Product) domain.Product {
	if v.Name == "" {
		v.Name = parent.Name
	}
	if v.Description == "" {
		v.Description = parent.Description
	}
	if v.Manufacturer == "" {
		v.Manufacturer = parent.Manufacturer
	}
	if len(v.Categories) == 0 {
		v.Categories = parent.Categories
	}
	if len(v.Prices) == 0 {
		v.Prices = parent.Prices
	}
	if len(v.TierPrices) == 0 {
		v.TierPrices = parent.TierPrices
	}

	attrs := make(map[string][]string, len(parent.Attributes)+len(v.Attributes))
	for k, vs := range parent.Attributes {
		attrs[k] = vs
	}
	for k, vs := range v.Attributes {
		attrs[k] = vs
	}
	v.Attributes = attrs
	return v
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
