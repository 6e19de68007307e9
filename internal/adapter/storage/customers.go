package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var (
	_ port.CustomerContextProvider = (*CustomersRepository)(nil)
	_ port.RuleEvaluator           = (*CustomersRepository)(nil)
)

// CustomersRepository simulates sales contexts from stored customers and
// the rules assigned to their groups.
type CustomersRepository struct {
	sqldb sqldb
}

func NewCustomersRepository(sqldb sqldb) CustomersRepository {
	return CustomersRepository{sqldb}
}

func (r CustomersRepository) ContextForCustomerGroup(
	ctx context.Context, groupID string,
) (domain.SalesContext, error) {
	const op = "CustomersRepository.ContextForCustomerGroup"

	sc := domain.SalesContext{CustomerGroupID: groupID}
	err := r.sqldb.QueryRowContext(ctx, `
		SELECT id, currency FROM customers
		WHERE group_id = $1
		ORDER BY created_at ASC, id ASC LIMIT 1;`, groupID,
	).Scan(&sc.CustomerID, &sc.Currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SalesContext{}, fmt.Errorf("%s: %w", op, domain.ErrCustomerNotFound)
		}
		return domain.SalesContext{}, fmt.Errorf("%s: %w", op, err)
	}
	return sc, nil
}

func (r CustomersRepository) MatchingRules(
	ctx context.Context, sc domain.SalesContext,
) ([]string, error) {
	const op = "CustomersRepository.MatchingRules"

	rows, err := r.sqldb.QueryContext(ctx, `
		SELECT rule_id FROM rule_customer_groups
		WHERE group_id = $1
		ORDER BY rule_id;`, sc.CustomerGroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
