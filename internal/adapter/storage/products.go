package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
	"github.com/shopspring/decimal"
)

var (
	_ port.CatalogReader  = (*ProductsRepository)(nil)
	_ port.NativeSearcher = (*ProductsRepository)(nil)
)

const productColumns = `
	p.id, COALESCE(p.parent_id, ''), p.name, p.description,
	p.product_number, p.manufacturer, p.ean, p.manufacturer_number,
	p.url, p.keywords, p.properties, p.attributes, p.images,
	p.sales, p.created_at`

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) CountProducts(ctx context.Context) (int, error) {
	const op = "ProductsRepository.CountProducts"

	var n int
	err := r.sqldb.QueryRowContext(ctx, `
		SELECT count(*) FROM products
		WHERE parent_id IS NULL AND active;`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r ProductsRepository) ReadProducts(
	ctx context.Context, offset, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ReadProducts"

	query := `SELECT` + productColumns + `
		FROM products p
		WHERE p.parent_id IS NULL AND p.active
		ORDER BY p.created_at ASC, p.id ASC
		LIMIT $1 OFFSET $2;`

	ps, err := r.queryProducts(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadRelations(ctx, ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// ReadProductsByIDs returns active main products in storage order.
func (r ProductsRepository) ReadProductsByIDs(
	ctx context.Context, ids []string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ReadProductsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1) AND p.parent_id IS NULL AND p.active;`

	ps, err := r.queryProducts(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadRelations(ctx, ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) SearchProducts(
	ctx context.Context, c domain.Criteria,
) ([]domain.Product, int, error) {
	const op = "ProductsRepository.SearchProducts"

	pattern := "%" + escapeLike(c.Term) + "%"

	var total int
	err := r.sqldb.QueryRowContext(ctx, `
		SELECT count(*) FROM products
		WHERE parent_id IS NULL AND active AND name ILIKE $1;`, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT` + productColumns + `
		FROM products p
		WHERE p.parent_id IS NULL AND p.active AND p.name ILIKE $1
		ORDER BY p.name ASC, p.id ASC
		LIMIT $2 OFFSET $3;`

	ps, err := r.queryProducts(ctx, query,
		pattern, c.LimitOr(domain.DefaultLimit), c.OffsetOr(0),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadRelations(ctx, ps); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return ps, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE wildcards in a search term match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (r ProductsRepository) queryProducts(
	ctx context.Context, query string, args ...any,
) ([]domain.Product, error) {
	rows, err := r.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

type productImage struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Width int    `json:"width"`
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p                                  domain.Product
		keywordsS, propsS, attrsS, imagesS []byte
		createdAt                          time.Time
	)
	err := row.Scan(
		&p.ID, &p.ParentID, &p.Name, &p.Description,
		&p.ProductNumber, &p.Manufacturer, &p.EAN, &p.ManufacturerNumber,
		&p.URL, &keywordsS, &propsS, &attrsS, &imagesS,
		&p.Sales, &createdAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = createdAt

	if err := json.Unmarshal(keywordsS, &p.Keywords); err != nil {
		return domain.Product{}, fmt.Errorf("keywords of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(propsS, &p.Properties); err != nil {
		return domain.Product{}, fmt.Errorf("properties of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(attrsS, &p.Attributes); err != nil {
		return domain.Product{}, fmt.Errorf("attributes of %s: %w", p.ID, err)
	}

	var images []productImage
	if err := json.Unmarshal(imagesS, &images); err != nil {
		return domain.Product{}, fmt.Errorf("images of %s: %w", p.ID, err)
	}
	p.Images = make([]domain.ProductImage, len(images))
	for i := range images {
		p.Images[i].URL = images[i].URL
		p.Images[i].Type = images[i].Type
		p.Images[i].Width = images[i].Width
	}
	return p, nil
}

// loadRelations loads variants, categories and prices of main products.
func (r ProductsRepository) loadRelations(ctx context.Context, ps []domain.Product) error {
	if len(ps) == 0 {
		return nil
	}

	ids := make([]string, len(ps))
	for i := range ps {
		ids[i] = ps[i].ID
	}

	variants, err := r.queryProducts(ctx, `SELECT`+productColumns+`
		FROM products p
		WHERE p.parent_id = ANY($1) AND p.active
		ORDER BY p.product_number ASC, p.id ASC;`, ids)
	if err != nil {
		return err
	}
	for _, v := range variants {
		ids = append(ids, v.ID)
	}

	cats, err := r.readCategories(ctx, ids)
	if err != nil {
		return err
	}
	prices, err := r.readPrices(ctx, ids)
	if err != nil {
		return err
	}
	tiers, err := r.readTierPrices(ctx, ids)
	if err != nil {
		return err
	}

	byParent := make(map[string][]domain.Product)
	for _, v := range variants {
		v.Categories = cats[v.ID]
		v.Prices = prices[v.ID]
		v.TierPrices = tiers[v.ID]
		byParent[v.ParentID] = append(byParent[v.ParentID], v)
	}

	for i := range ps {
		id := ps[i].ID
		ps[i].Categories = cats[id]
		ps[i].Prices = prices[id]
		ps[i].TierPrices = tiers[id]
		ps[i].Variants = byParent[id]
	}
	return nil
}

func (r ProductsRepository) readCategories(
	ctx context.Context, ids []string,
) (map[string][]domain.Category, error) {
	rows, err := r.sqldb.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.url, c.breadcrumb
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY pc.product_id, c.id;`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string][]domain.Category)
	for rows.Next() {
		productID, c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		res[productID] = append(res[productID], c)
	}
	return res, rows.Err()
}

func scanCategory(row rowScanner) (string, domain.Category, error) {
	var (
		productID   string
		c           domain.Category
		breadcrumbS []byte
	)
	if err := row.Scan(&productID, &c.ID, &c.Name, &c.URL, &breadcrumbS); err != nil {
		return "", domain.Category{}, err
	}
	if err := json.Unmarshal(breadcrumbS, &c.Breadcrumb); err != nil {
		return "", domain.Category{}, fmt.Errorf("breadcrumb of %s: %w", c.ID, err)
	}
	return productID, c, nil
}

func (r ProductsRepository) readPrices(
	ctx context.Context, ids []string,
) (map[string][]domain.ProductPrice, error) {
	rows, err := r.sqldb.QueryContext(ctx, `
		SELECT product_id, currency, gross::text
		FROM product_prices
		WHERE product_id = ANY($1)
		ORDER BY product_id, currency;`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string][]domain.ProductPrice)
	for rows.Next() {
		var productID, grossS string
		var p domain.ProductPrice
		if err := rows.Scan(&productID, &p.Currency, &grossS); err != nil {
			return nil, err
		}
		if p.Gross, err = decimal.NewFromString(grossS); err != nil {
			return nil, fmt.Errorf("price of %s: %w", productID, err)
		}
		res[productID] = append(res[productID], p)
	}
	return res, rows.Err()
}

func (r ProductsRepository) readTierPrices(
	ctx context.Context, ids []string,
) (map[string][]domain.TierPrice, error) {
	rows, err := r.sqldb.QueryContext(ctx, `
		SELECT product_id, rule_id, quantity_start, currency, gross::text
		FROM product_tier_prices
		WHERE product_id = ANY($1)
		ORDER BY product_id, rule_id, quantity_start;`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string][]domain.TierPrice)
	for rows.Next() {
		var productID, grossS string
		var tp domain.TierPrice
		err := rows.Scan(&productID, &tp.RuleID, &tp.QuantityStart, &tp.Currency, &grossS)
		if err != nil {
			return nil, err
		}
		if tp.Gross, err = decimal.NewFromString(grossS); err != nil {
			return nil, fmt.Errorf("tier price of %s: %w", productID, err)
		}
		res[productID] = append(res[productID], tp)
	}
	return res, rows.Err()
}
