package domain

import "strings"

const (
	// ExtensionExternalPagination marks criteria whose paging is already
	// applied by the search service.
	ExtensionExternalPagination = "findologicSource"

	DefaultLimit = 24
)

const compositeKeyDelimiter = "-"

type Criteria struct {
	IDs        []string
	Term       string
	Limit      *int
	Offset     *int
	Extensions map[string]any
}

func (c *Criteria) AddExtension(name string, v any) {
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	c.Extensions[name] = v
}

func (c Criteria) HasExtension(name string) bool {
	_, ok := c.Extensions[name]
	return ok
}

// LimitOr returns the limit or def when unset.
func (c Criteria) LimitOr(def int) int {
	if c.Limit == nil {
		return def
	}
	return *c.Limit
}

func (c Criteria) OffsetOr(def int) int {
	if c.Offset == nil {
		return def
	}
	return *c.Offset
}

type SearchResult struct {
	Products []Product
	Total    int
	Filters  []Filter
	// External is false when the native catalog search answered.
	External bool
}

// CompositeKey normalizes a composite identifier to a single lookup key.
func CompositeKey(parts ...string) string {
	return strings.Join(parts, compositeKeyDelimiter)
}
