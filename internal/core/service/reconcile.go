package service

import (
	"log/slog"

	"github.com/niksmo/finsearch/internal/core/domain"
)

// ReconcileOrder orders local entities by the external ranking. Composite
// keys are joined into one lookup key. Ranked ids without a local entity are
// skipped, so the result may be shorter than order.
func ReconcileOrder[T any](local []T, key func(T) []string, order []string) []T {
	const op = "ReconcileOrder"

	byKey := make(map[string]T, len(local))
	for _, v := range local {
		byKey[domain.CompositeKey(key(v)...)] = v
	}

	out := make([]T, 0, min(len(order), len(local)))
	dropped := 0
	for _, id := range order {
		v, ok := byKey[id]
		if !ok {
			dropped++
			continue
		}
		out = append(out, v)
	}

	if dropped != 0 {
		slog.Debug("ranked ids without local match", "op", op, "nDropped", dropped)
	}
	return out
}

func ProductKey(p domain.Product) []string {
	return []string{p.ID}
}

// ApplyExternalPagination prevents paging twice when the search service
// already paged the ids.
func ApplyExternalPagination(c domain.Criteria) domain.Criteria {
	if !c.HasExtension(domain.ExtensionExternalPagination) {
		return c
	}
	if c.Limit == nil {
		limit := domain.DefaultLimit
		c.Limit = &limit
	}
	if c.Offset == nil {
		offset := 0
		c.Offset = &offset
	}
	return c
}
