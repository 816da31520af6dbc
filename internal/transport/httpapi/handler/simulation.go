package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/simulation"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// Simulator runs what-if valuations
type Simulator interface {
	Simulate(ctx context.Context, req simulation.Request) (*simulation.Result, error)
}

// SimulationHandler handles simulation HTTP requests
type SimulationHandler struct {
	simulator Simulator
	logger    *logger.Logger
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(simulator Simulator, log *logger.Logger) *SimulationHandler {
	return &SimulationHandler{
		simulator: simulator,
		logger:    log.WithComponent("simulation_handler"),
	}
}

// SimulationAssetRequest is one position of a simulation
type SimulationAssetRequest struct {
	Symbol   string              `json:"symbol"`
	Quantity decimal.NullDecimal `json:"quantity"`
	Value    decimal.NullDecimal `json:"value"`
}

// SimulationRequest is the body of POST /simulation
type SimulationRequest struct {
	Timestamp time.Time                `json:"timestamp"`
	Assets    []SimulationAssetRequest `json:"assets"`
}

// SimulationResponse is the result of a simulation
type SimulationResponse struct {
	Timestamp        time.Time            `json:"timestamp"`
	Total            decimal.Decimal      `json:"total"`
	BestAsset        string               `json:"bestAsset"`
	BestPerformance  decimal.Decimal      `json:"bestPerformance"`
	WorstAsset       string               `json:"worstAsset"`
	WorstPerformance decimal.Decimal      `json:"worstPerformance"`
	Assets           []AssetValueResponse `json:"assets"`
}

// Simulate handles POST /simulation
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	in, err := req.toRequest()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.simulator.Simulate(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, SimulationResponse{
		Timestamp:        result.Timestamp,
		Total:            result.Total,
		BestAsset:        result.BestAsset,
		BestPerformance:  result.BestPerformance,
		WorstAsset:       result.WorstAsset,
		WorstPerformance: result.WorstPerformance,
		Assets:           toAssetValues(result.Assets),
	}, http.StatusOK)
}

func (req SimulationRequest) toRequest() (simulation.Request, error) {
	out := simulation.Request{
		Timestamp: req.Timestamp,
		Assets:    make([]simulation.RequestAsset, 0, len(req.Assets)),
	}
	for i, a := range req.Assets {
		quantity, err := requiredDecimal("quantity", a.Quantity)
		if err != nil {
			return out, withAssetIndex(err, i)
		}
		value, err := requiredDecimal("value", a.Value)
		if err != nil {
			return out, withAssetIndex(err, i)
		}
		out.Assets = append(out.Assets, simulation.RequestAsset{
			Symbol:   a.Symbol,
			Quantity: quantity,
			Value:    value,
		})
	}
	return out, nil
}

func withAssetIndex(err error, i int) error {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		appErr.WithDetail("asset", strconv.Itoa(i))
	}
	return err
}
