// internal/adapters/in/http/handler/helper_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	cartdom "costtracker/internal/domain/cart"
	"costtracker/internal/application/usecase"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// mutationStatus maps gateway errors onto HTTP statuses:
// validation failures are the caller's fault and never reached the store,
// anything else is a store write failure.
func mutationStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, cartdom.ErrInvalidQuantity),
		errors.Is(err, cartdom.ErrInvalidEntry),
		errors.Is(err, usecase.ErrCartInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
