package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/usmanz-dev/nova-pos-terminal/internal/cart"
	"github.com/usmanz-dev/nova-pos-terminal/internal/checkout"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps engine and orchestrator errors to HTTP answers.
// Capacity and validation errors are inline corrections, not failures of the
// terminal itself.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case cart.IsCapacity(err):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", err.Error())
	case errors.Is(err, checkout.ErrProductNotFound),
		errors.Is(err, checkout.ErrVariantNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrConfirmRequired):
		respondError(w, http.StatusBadRequest, "confirm_required", err.Error())
	case errors.Is(err, checkout.ErrPaymentDisabled):
		respondError(w, http.StatusBadRequest, "payment_disabled", err.Error())
	case errors.Is(err, checkout.ErrNoCompletedSale):
		respondError(w, http.StatusConflict, "no_completed_sale", err.Error())
	case errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_state", err.Error())
	default:
		log.Printf("unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
