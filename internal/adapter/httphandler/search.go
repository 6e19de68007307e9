package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

// GET /search?shopkey=&query=&limit=&offset= (200 OK, 400 Bad request)

type SearchHandler struct {
	gateway port.SearchGateway
}

func RegisterSearch(mux *http.ServeMux, gateway port.SearchGateway) {
	h := SearchHandler{gateway}
	mux.HandleFunc("GET /search", h.GetSearch)
}

func (h SearchHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.GetSearch"
	log := slog.With("op", op)

	q := r.URL.Query()
	c := domain.Criteria{Term: q.Get("query")}

	if q.Has("limit") {
		limit, ok := intParam(r, "limit", 0)
		if !ok || limit == 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		c.Limit = &limit
	}
	if q.Has("offset") {
		offset, ok := intParam(r, "offset", 0)
		if !ok {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		c.Offset = &offset
	}

	res, err := h.gateway.Search(r.Context(), q.Get(paramShopKey), c)
	if err != nil {
		log.Error("search failed", "err", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(res))
}

func toSearchResponse(res domain.SearchResult) SearchResponse {
	out := SearchResponse{
		Total:    res.Total,
		External: res.External,
		Products: make([]SearchProduct, len(res.Products)),
		Filters:  make([]Filter, len(res.Filters)),
	}
	for i, p := range res.Products {
		out.Products[i] = SearchProduct{
			ID:            p.ID,
			Name:          p.Name,
			ProductNumber: p.ProductNumber,
			URL:           p.URL,
		}
	}
	for i, f := range res.Filters {
		out.Filters[i] = Filter{
			ID:     f.ID,
			Name:   f.Name,
			Type:   string(f.Type),
			Values: toFilterValues(f.Values),
		}
	}
	return out
}

func toFilterValues(vs []domain.FilterValue) []FilterValue {
	out := make([]FilterValue, 0, len(vs))
	for _, v := range vs {
		out = append(out, toFilterValue(v))
	}
	return out
}

func toFilterValue(v domain.FilterValue) FilterValue {
	out := FilterValue{ID: v.ID(), Name: v.Name()}
	if s, ok := v.(domain.Selectable); ok {
		out.Selected = s.IsSelected()
	}

	switch fv := v.(type) {
	case *domain.SelectFilterValue:
		out.Frequency = fv.Frequency
	case *domain.ColorFilterValue:
		out.Frequency = fv.Frequency
		out.Color = fv.HexValue
		out.ImageURL = fv.ImageURL
	case *domain.ImageFilterValue:
		out.Frequency = fv.Frequency
		out.ImageURL = fv.ImageURL
	case *domain.CategoryFilterValue:
		out.Frequency = fv.Frequency
		for _, child := range fv.Children {
			out.Children = append(out.Children, toFilterValue(child))
		}
	}
	return out
}
