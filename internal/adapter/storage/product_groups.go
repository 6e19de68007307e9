package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.ProductGroupReader = (*ProductGroupsRepository)(nil)

type ProductGroupsRepository struct {
	sqldb sqldb
}

func NewProductGroupsRepository(sqldb sqldb) ProductGroupsRepository {
	return ProductGroupsRepository{sqldb}
}

// ReadProductGroupCategories maps product ids to the categories of the
// dynamic product groups they belong to.
func (r ProductGroupsRepository) ReadProductGroupCategories(
	ctx context.Context,
) (map[string][]domain.Category, error) {
	const op = "ProductGroupsRepository.ReadProductGroupCategories"

	rows, err := r.sqldb.QueryContext(ctx, `
		SELECT gp.product_id, c.id, c.name, c.url, c.breadcrumb
		FROM product_group_products gp
		JOIN product_groups g ON g.id = gp.group_id
		JOIN categories c ON c.id = g.category_id
		ORDER BY gp.product_id, c.id;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make(map[string][]domain.Category)
	for rows.Next() {
		productID, c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res[productID] = append(res[productID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
