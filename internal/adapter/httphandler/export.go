package httphandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/niksmo/finsearch/internal/adapter/xmlexport"
	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

// GET /findologic?shopkey=&start=&count=&productId=&excludeProductGroups=&format=xml|json
//   (200 OK, 400 Bad request, 412 Precondition failed, 422 Unprocessable entity)
// POST /findologic/dynamic-product-groups?shopkey= (200 OK)

const (
	formatXML  = "xml"
	formatJSON = "json"

	defaultCount = 20

	headerRunID = "X-Export-Run-Id"
)

type ExportHandler struct {
	exporter port.Exporter
}

func RegisterExport(mux *http.ServeMux, exporter port.Exporter) {
	h := ExportHandler{exporter}
	mux.Handle("GET /findologic", RequireShopKey(http.HandlerFunc(h.GetExport)))
	mux.Handle(
		"POST /findologic/dynamic-product-groups",
		RequireShopKey(http.HandlerFunc(h.PostWarmUp)),
	)
}

func (h ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	const op = "ExportHandler.GetExport"
	log := slog.With("op", op)

	req, format, err := parseExportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.exporter.Export(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrProductGroupsNotWarmedUp) {
			writeError(w, http.StatusPreconditionFailed, domain.ProductGroupsNotWarmedUpMessage)
			return
		}
		log.Error("export failed", "err", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set(headerRunID, res.RunID)

	if unprocessable(req, res) {
		writeJSON(w, http.StatusUnprocessableEntity, res.Errors.BuildErrorResponse())
		return
	}

	switch format {
	case formatJSON:
		writeJSON(w, http.StatusOK, toExportResponse(res))
	default:
		w.Header().Set("Content-Type", contentTypeXML)
		w.WriteHeader(http.StatusOK)
		if err := xmlexport.Render(w, res.Items, res.Start, res.Total); err != nil {
			log.Error("failed to write response body", "err", err)
		}
	}
}

func (h ExportHandler) PostWarmUp(w http.ResponseWriter, r *http.Request) {
	const op = "ExportHandler.PostWarmUp"
	log := slog.With("op", op)

	shopKey := r.URL.Query().Get(paramShopKey)
	n, err := h.exporter.WarmUpProductGroups(r.Context(), shopKey)
	if err != nil {
		log.Error("failed to warm up product groups", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to warm up product groups")
		return
	}

	writeJSON(w, http.StatusOK, WarmUpResponse{ShopKey: shopKey, ProductGroups: n})
	log.Info("product groups warmed up", "shopkey", shopKey, "nProductGroups", n)
}

// unprocessable is true for a single product export with errors and for a
// page on which every product failed.
func unprocessable(req domain.ExportRequest, res domain.ExportResult) bool {
	if res.Errors == nil || !res.Errors.HasErrors() {
		return false
	}
	return req.ProductID != "" || len(res.Items) == 0
}

func parseExportRequest(r *http.Request) (domain.ExportRequest, string, error) {
	q := r.URL.Query()

	start, ok := intParam(r, "start", 0)
	if !ok {
		return domain.ExportRequest{}, "", errors.New("start must be a non-negative integer")
	}
	count, ok := intParam(r, "count", defaultCount)
	if !ok || count == 0 {
		return domain.ExportRequest{}, "", errors.New("count must be a positive integer")
	}
	exclude, ok := boolParam(r, "excludeProductGroups")
	if !ok {
		return domain.ExportRequest{}, "", errors.New("excludeProductGroups must be a boolean")
	}

	format := q.Get("format")
	switch format {
	case "":
		format = formatXML
	case formatXML, formatJSON:
	default:
		return domain.ExportRequest{}, "", fmt.Errorf("unsupported format %q", format)
	}

	return domain.ExportRequest{
		ShopKey:              q.Get(paramShopKey),
		Start:                start,
		Count:                count,
		ProductID:            q.Get("productId"),
		ExcludeProductGroups: exclude,
	}, format, nil
}

func toExportResponse(res domain.ExportResult) ExportResponse {
	out := ExportResponse{
		RunID:  res.RunID,
		Start:  res.Start,
		Count:  len(res.Items),
		Total:  res.Total,
		Items:  make([]ExportItem, len(res.Items)),
		Errors: domain.ErrorResponse{General: []string{}, Products: []domain.ProductError{}},
	}
	if res.Errors != nil {
		out.Errors = res.Errors.BuildErrorResponse()
	}

	for i, it := range res.Items {
		item := ExportItem{
			ID:             it.ID,
			Name:           it.Name,
			Description:    it.Description,
			URL:            it.URL,
			SalesFrequency: it.SalesFrequency,
			Keywords:       it.Keywords,
			OrderNumbers:   it.OrderNumbers,
			UserGroups:     it.UserGroups,
			Attributes:     it.Attributes,
			Properties:     it.Properties,
			Prices:         make([]Price, len(it.Prices)),
		}
		if !it.DateAdded.IsZero() {
			item.DateAdded = it.DateAdded.Format(time.RFC3339)
		}
		for j, p := range it.Prices {
			item.Prices[j] = Price{
				Value:     p.UnitPrice.StringFixed(2),
				Currency:  p.Currency,
				UserGroup: p.UserGroup,
			}
		}
		for _, img := range it.Images {
			item.Images = append(item.Images, Image{URL: img.URL, Type: img.Type})
		}
		out.Items[i] = item
	}
	return out
}
