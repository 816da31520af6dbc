package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
)

type errorBody struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// writeError writes the API error envelope from inside middleware
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, message)
}
