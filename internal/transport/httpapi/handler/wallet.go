package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/wallet"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// WalletService defines the wallet operations needed by WalletHandler
type WalletService interface {
	AddAsset(ctx context.Context, userID uuid.UUID, in wallet.AddAssetInput) (*wallet.Holding, error)
	UpdateAsset(ctx context.Context, userID uuid.UUID, in wallet.UpdateAssetInput) (*wallet.Holding, error)
	Info(ctx context.Context, userID uuid.UUID) (*wallet.Info, error)
}

// WalletHandler handles wallet HTTP requests
type WalletHandler struct {
	wallets WalletService
	logger  *logger.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(wallets WalletService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
		logger:  log.WithComponent("wallet_handler"),
	}
}

// AddAssetRequest is the body of POST /wallet/asset
type AddAssetRequest struct {
	Symbol   string              `json:"symbol"`
	Price    decimal.NullDecimal `json:"price"`
	Quantity decimal.NullDecimal `json:"quantity"`
}

// UpdateAssetRequest is the body of PUT /wallet/asset
type UpdateAssetRequest struct {
	Symbol string              `json:"symbol"`
	Price  decimal.NullDecimal `json:"price"`
	Amount decimal.NullDecimal `json:"amount"`
}

// HoldingResponse is a user's position in one asset
type HoldingResponse struct {
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BalanceResponse is a valued list of holdings
type BalanceResponse struct {
	Total  decimal.Decimal      `json:"total"`
	Assets []AssetValueResponse `json:"assets"`
}

// WalletInfoResponse is the wallet at purchase and at current prices
type WalletInfoResponse struct {
	ID       string          `json:"id"`
	Original BalanceResponse `json:"original"`
	Current  BalanceResponse `json:"current"`
}

// GetInfo handles GET /wallet/info
func (h *WalletHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, apperrors.Unauthorized("unauthorized"))
		return
	}

	info, err := h.wallets.Info(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, WalletInfoResponse{
		ID:       info.ID.String(),
		Original: toBalance(info.Original),
		Current:  toBalance(info.Current),
	}, http.StatusOK)
}

// AddAsset handles POST /wallet/asset
func (h *WalletHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, apperrors.Unauthorized("unauthorized"))
		return
	}

	var req AddAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	holding, err := h.wallets.AddAsset(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, toHolding(holding), http.StatusCreated)
}

// UpdateAsset handles PUT /wallet/asset
func (h *WalletHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, apperrors.Unauthorized("unauthorized"))
		return
	}

	var req UpdateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	holding, err := h.wallets.UpdateAsset(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, toHolding(holding), http.StatusOK)
}

func (req AddAssetRequest) toInput() (wallet.AddAssetInput, error) {
	price, err := requiredDecimal("price", req.Price)
	if err != nil {
		return wallet.AddAssetInput{}, err
	}
	quantity, err := requiredDecimal("quantity", req.Quantity)
	if err != nil {
		return wallet.AddAssetInput{}, err
	}
	return wallet.AddAssetInput{Symbol: req.Symbol, Price: price, Quantity: quantity}, nil
}

func (req UpdateAssetRequest) toInput() (wallet.UpdateAssetInput, error) {
	price, err := requiredDecimal("price", req.Price)
	if err != nil {
		return wallet.UpdateAssetInput{}, err
	}
	amount, err := requiredDecimal("amount", req.Amount)
	if err != nil {
		return wallet.UpdateAssetInput{}, err
	}
	return wallet.UpdateAssetInput{Symbol: req.Symbol, Price: price, Amount: amount}, nil
}

func toHolding(h *wallet.Holding) HoldingResponse {
	return HoldingResponse{
		Symbol:        h.AssetID,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func toBalance(b wallet.Balance) BalanceResponse {
	return BalanceResponse{Total: b.Total, Assets: toAssetValues(b.Assets)}
}
