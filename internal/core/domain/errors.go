package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductGroupsNotWarmedUp indicates an export with dynamic product
	// groups was requested before the product group cache was filled.
	ErrProductGroupsNotWarmedUp = errors.New("dynamic product groups are not warmed up")

	// ErrCustomerNotFound indicates that no customer belongs to the group.
	ErrCustomerNotFound = errors.New("customer not found")

	ErrProductNotFound = errors.New("product not found")
)

// ProductGroupsNotWarmedUpMessage is shown to the caller of the export.
const ProductGroupsNotWarmedUpMessage = "Dynamic product groups have not been warmed up yet. " +
	"Call /findologic/dynamic-product-groups with the same shopkey first, " +
	"or export without product groups by adding excludeProductGroups=true."

type UnknownConfigKeyError struct {
	Key string
}

func (e *UnknownConfigKeyError) Error() string {
	return fmt.Sprintf("unknown config key %q", e.Key)
}

type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize remote config: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

type RemoteFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

type InvalidProductKind int

const (
	NoAttributes InvalidProductKind = iota + 1
	NoName
	NoPrices
	NoCategories
	CrossSellingCategory
	EmptyPropertyAccess
)

func (k InvalidProductKind) String() string {
	switch k {
	case NoAttributes:
		return "no_attributes"
	case NoName:
		return "no_name"
	case NoPrices:
		return "no_prices"
	case NoCategories:
		return "no_categories"
	case CrossSellingCategory:
		return "cross_selling_category"
	case EmptyPropertyAccess:
		return "empty_property_access"
	}
	return "unknown"
}

// An InvalidProductError means that the product cannot be exported at all.
// It never aborts a batch.
type InvalidProductError struct {
	Kind    InvalidProductKind
	Product Product
	// Category is set for CrossSellingCategory.
	Category *Category
	// Property is set for EmptyPropertyAccess.
	Property string
}

func NewInvalidProductError(kind InvalidProductKind, p Product) *InvalidProductError {
	return &InvalidProductError{Kind: kind, Product: p}
}

func (e *InvalidProductError) Error() string {
	id := e.Product.ID
	switch e.Kind {
	case NoAttributes:
		return fmt.Sprintf("Product with id %s was not exported because it has no attributes", id)
	case NoName:
		return fmt.Sprintf("Product with id %s was not exported because it has no name set", id)
	case NoPrices:
		return fmt.Sprintf(
			"Product with id %s was not exported because it has no price associated to it", id,
		)
	case NoCategories:
		return fmt.Sprintf(
			"Product with id %s was not exported because it has no categories assigned", id,
		)
	case CrossSellingCategory:
		var catID, breadcrumb string
		if e.Category != nil {
			catID = e.Category.ID
			breadcrumb = strings.Join(e.Category.Breadcrumb, " > ")
		}
		return fmt.Sprintf(
			"Product with id %s (%s) was not exported because it is assigned to cross selling category %s (%s)",
			id, e.Product.Name, catID, breadcrumb,
		)
	case EmptyPropertyAccess:
		return fmt.Sprintf(
			"Product with id %s could not be exported. It appears to have empty values assigned to it (%s). "+
				"If you see this message in your logs, please report this as a bug.",
			id, e.Property,
		)
	}
	return fmt.Sprintf("Product with id %s could not be exported", id)
}
