package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

// GET /v1/config?shopkey= (200 OK, 400 Bad request, 502 Bad gateway)

type ServiceConfigHandler struct {
	reader port.ServiceConfigReader
}

func RegisterServiceConfig(mux *http.ServeMux, reader port.ServiceConfigReader) {
	h := ServiceConfigHandler{reader}
	mux.Handle("GET /v1/config", RequireShopKey(http.HandlerFunc(h.GetConfig)))
}

func (h ServiceConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	const op = "ServiceConfigHandler.GetConfig"
	log := slog.With("op", op)

	shopKey := r.URL.Query().Get(paramShopKey)
	res, err := h.read(r.Context(), shopKey)
	if err != nil {
		var fetchErr *domain.RemoteFetchError
		if errors.As(err, &fetchErr) {
			log.Warn("remote config unavailable", "err", err)
			writeError(w, http.StatusBadGateway, "remote config unavailable")
			return
		}
		log.Error("failed to read remote config", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read remote config")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// read relies on the config cache, so only the first accessor may fetch.
func (h ServiceConfigHandler) read(
	ctx context.Context, shopKey string,
) (ServiceConfigResponse, error) {
	direct, err := h.reader.IsDirectIntegrationEnabled(ctx, shopKey)
	if err != nil {
		return ServiceConfigResponse{}, err
	}
	staging, err := h.reader.IsStaging(ctx, shopKey)
	if err != nil {
		return ServiceConfigResponse{}, err
	}
	blocks, err := h.reader.SmartSuggestBlocks(ctx, shopKey)
	if err != nil {
		return ServiceConfigResponse{}, err
	}
	if blocks == nil {
		blocks = []string{}
	}

	return ServiceConfigResponse{
		ShopKey:            shopKey,
		DirectIntegration:  direct,
		IsStaging:          staging,
		SmartSuggestBlocks: blocks,
	}, nil
}
