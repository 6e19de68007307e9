package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.PriceCalculator = TierPriceCalculator{}

type AdvancedPricingMode string

const (
	AdvancedPricingOff      AdvancedPricingMode = "off"
	AdvancedPricingUnit     AdvancedPricingMode = "unit"
	AdvancedPricingCheapest AdvancedPricingMode = "cheapest"
)

// PriceResolver resolves the advanced price of a product for a customer
// group by simulating a sales context of a customer in that group.
type PriceResolver struct {
	contexts   port.CustomerContextProvider
	rules      port.RuleEvaluator
	calculator port.PriceCalculator
	mode       AdvancedPricingMode
}

func NewPriceResolver(
	contexts port.CustomerContextProvider,
	rules port.RuleEvaluator,
	calculator port.PriceCalculator,
	mode AdvancedPricingMode,
) PriceResolver {
	if mode == "" {
		mode = AdvancedPricingCheapest
	}
	return PriceResolver{contexts, rules, calculator, mode}
}

// ResolveAdvancedPrice returns nil when advanced pricing is off, the group
// has no customer or no price could be calculated.
func (r PriceResolver) ResolveAdvancedPrice(
	ctx context.Context, p domain.Product, customerGroupID string,
) (*domain.PriceEntry, error) {
	const op = "PriceResolver.ResolveAdvancedPrice"
	log := slog.With("op", op, "product_id", p.ID, "customer_group_id", customerGroupID)

	if r.mode == AdvancedPricingOff {
		return nil, nil
	}

	sc, err := r.contexts.ContextForCustomerGroup(ctx, customerGroupID)
	if err != nil {
		if isNotFound(err) {
			log.Debug("no customer in group")
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ruleIDs, err := r.rules.MatchingRules(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sc.RuleIDs = ruleIDs

	prices, err := r.calculator.CalculatePrices(ctx, p, sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	var price domain.PriceEntry
	if r.mode == AdvancedPricingUnit {
		price = prices[0]
	} else {
		price = CheapestPrice(prices)
	}
	price.UserGroup = customerGroupID
	return &price, nil
}

// CheapestPrice returns the first price after a stable ascending sort by
// unit price. The input is not modified. prices must not be empty.
func CheapestPrice(prices []domain.PriceEntry) domain.PriceEntry {
	sorted := make([]domain.PriceEntry, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
	})
	return sorted[0]
}

// TierPriceCalculator calculates prices from the base prices of a product
// and the tier prices whose rule matched the sales context.
type TierPriceCalculator struct{}

func (TierPriceCalculator) CalculatePrices(
	ctx context.Context, p domain.Product, sc domain.SalesContext,
) ([]domain.PriceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prices []domain.PriceEntry
	for _, tp := range p.TierPrices {
		if !sc.HasRule(tp.RuleID) || !currencyMatches(sc, tp.Currency) {
			continue
		}
		prices = append(prices, domain.PriceEntry{
			UnitPrice: tp.Gross,
			Currency:  tp.Currency,
			RuleConditions: []domain.RuleCondition{
				{RuleID: tp.RuleID, QuantityStart: tp.QuantityStart},
			},
		})
	}
	if len(prices) != 0 {
		return prices, nil
	}

	for _, bp := range p.Prices {
		if !currencyMatches(sc, bp.Currency) {
			continue
		}
		prices = append(prices, domain.PriceEntry{UnitPrice: bp.Gross, Currency: bp.Currency})
	}
	return prices, nil
}

func currencyMatches(sc domain.SalesContext, currency string) bool {
	return sc.Currency == "" || sc.Currency == currency
}
