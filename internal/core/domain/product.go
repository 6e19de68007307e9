package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ID                 string
		ParentID           string
		Name               string
		Description        string
		ProductNumber      string
		Manufacturer       string
		EAN                string
		ManufacturerNumber string
		CreatedAt          time.Time
		URL                string
		Keywords           []string
		Properties         map[string]string
		Attributes         map[string][]string
		Categories         []Category
		Images             []ProductImage
		Prices             []ProductPrice
		TierPrices         []TierPrice
		Sales              int
		Variants           []Product
	}

	ProductImage struct {
		URL   string
		Type  string
		Width int
	}

	ProductPrice struct {
		Gross    decimal.Decimal
		Currency string
	}

	// A TierPrice applies only when its rule matched the sales context.
	TierPrice struct {
		RuleID        string
		QuantityStart int
		Gross         decimal.Decimal
		Currency      string
	}
)

// IsVariant reports whether the product has a parent.
func (p Product) IsVariant() bool {
	return p.ParentID != ""
}

type Category struct {
	ID         string
	Name       string
	URL        string
	Breadcrumb []string
}

// SalesContext is a simulated shopping context of a customer group.
type SalesContext struct {
	CustomerID      string
	CustomerGroupID string
	Currency        string
	RuleIDs         []string
}

func (c SalesContext) HasRule(ruleID string) bool {
	for _, id := range c.RuleIDs {
		if id == ruleID {
			return true
		}
	}
	return false
}
