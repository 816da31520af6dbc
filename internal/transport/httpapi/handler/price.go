package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// PriceService defines the price lookups exposed over HTTP
type PriceService interface {
	GetCurrentPriceBySymbol(ctx context.Context, symbol string) (asset.AssetPrice, error)
	GetHistoricalPrices(ctx context.Context, symbol string, start, end *time.Time) ([]asset.AssetPrice, error)
}

// PriceHandler handles price HTTP requests
type PriceHandler struct {
	prices PriceService
	logger *logger.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(prices PriceService, log *logger.Logger) *PriceHandler {
	return &PriceHandler{
		prices: prices,
		logger: log.WithComponent("price_handler"),
	}
}

// GetCurrent handles GET /prices/{symbol}
func (h *PriceHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	symbol := asset.NormalizeSymbol(chi.URLParam(r, "symbol"))

	price, err := h.prices.GetCurrentPriceBySymbol(r.Context(), symbol)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, toPrice(price), http.StatusOK)
}

// GetHistory handles GET /prices/{symbol}/history?start=&end=
// start and end are RFC3339 and must be given together or not at all.
func (h *PriceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := asset.NormalizeSymbol(chi.URLParam(r, "symbol"))

	start, err := parseTimeParam(r, "start")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	history, err := h.prices.GetHistoricalPrices(r.Context(), symbol, start, end)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	out := make([]PriceResponse, 0, len(history))
	for _, p := range history {
		out = append(out, toPrice(p))
	}
	respondJSON(w, out, http.StatusOK)
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be an RFC3339 timestamp")
	}
	return &t, nil
}
