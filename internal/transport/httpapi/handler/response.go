package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// statusFor maps an error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidInput, apperrors.ErrCodeMalformedRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeBadCredentials, apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeAssetNotFound, apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeAssetAlreadyExists, apperrors.ErrCodeUserAlreadyExists:
		return http.StatusConflict
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodePriceFetch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps err to the error envelope. Internal errors are logged
// and their message is not exposed.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	body := ErrorResponse{
		Error:     apperrors.ErrCodeInternal,
		Message:   "internal server error",
		Timestamp: time.Now().UTC(),
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.ErrCodeInternal {
		body.Error = appErr.Code
		body.Message = appErr.Message
		body.Details = appErr.Details
	} else {
		log.WithContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}

	respondJSON(w, body, statusFor(body.Error))
}

// decodeJSON decodes the request body, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.MalformedRequest(err)
	}
	return nil
}

// requiredDecimal unwraps a request amount that must be present and non-null.
func requiredDecimal(field string, v decimal.NullDecimal) (decimal.Decimal, error) {
	if !v.Valid {
		return decimal.Zero, apperrors.Validation(field + " is required").WithDetail("field", field)
	}
	return v.Decimal, nil
}

// AssetValueResponse is one valued position
type AssetValueResponse struct {
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// PriceResponse is a price at a point in time
type PriceResponse struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

func toAssetValues(vs []asset.Valuation) []AssetValueResponse {
	out := make([]AssetValueResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, AssetValueResponse{
			Symbol:    v.Symbol,
			Quantity:  v.Quantity,
			Price:     v.Price,
			Value:     v.Value,
			Timestamp: v.Timestamp,
		})
	}
	return out
}

func toPrice(p asset.AssetPrice) PriceResponse {
	return PriceResponse{Timestamp: p.Timestamp, Price: p.Price}
}
