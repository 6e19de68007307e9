package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	ExportItem struct {
		ID             string
		Name           string
		Attributes     map[string][]string
		Prices         []PriceEntry
		Description    string
		DateAdded      time.Time
		URL            string
		Keywords       []string
		Images         []ImageEntry
		SalesFrequency int
		UserGroups     []string
		OrderNumbers   []string
		Properties     map[string]string
	}

	PriceEntry struct {
		UnitPrice      decimal.Decimal
		Currency       string
		RuleConditions []RuleCondition
		// UserGroup is empty for the default price.
		UserGroup string
	}

	RuleCondition struct {
		RuleID        string
		QuantityStart int
	}

	ImageEntry struct {
		URL  string
		Type string
	}
)

// NewExportItem returns an item with initialized collections.
func NewExportItem(id string) ExportItem {
	return ExportItem{
		ID:         id,
		Attributes: make(map[string][]string),
		Properties: make(map[string]string),
	}
}

// AddAttribute appends values to the attribute, skipping duplicates.
func (i *ExportItem) AddAttribute(name string, values ...string) {
	for _, v := range values {
		if v == "" || contains(i.Attributes[name], v) {
			continue
		}
		i.Attributes[name] = append(i.Attributes[name], v)
	}
}

func (i *ExportItem) AddOrderNumber(n string) {
	if n == "" || contains(i.OrderNumbers, n) {
		return
	}
	i.OrderNumbers = append(i.OrderNumbers, n)
}

func contains(vs []string, v string) bool {
	for _, s := range vs {
		if s == v {
			return true
		}
	}
	return false
}

// An ItemResult is either a built item or the reason the product was skipped.
type ItemResult struct {
	Item ExportItem
	Skip *InvalidProductError
}

func Built(item ExportItem) ItemResult {
	return ItemResult{Item: item}
}

func Skipped(err *InvalidProductError) ItemResult {
	return ItemResult{Skip: err}
}

func (r ItemResult) Skipped() bool {
	return r.Skip != nil
}
