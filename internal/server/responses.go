package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campolibro/campolibro/internal/geo"
	"github.com/campolibro/campolibro/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownAccount),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, ledger.ErrPartyNotFound),
		errors.Is(err, geo.ErrPlotNotFound),
		errors.Is(err, geo.ErrVersionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrDuplicateParty),
		errors.Is(err, geo.ErrDuplicatePlot):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrNonPostableAccount),
		errors.Is(err, ledger.ErrUnbalancedEntry),
		errors.Is(err, ledger.ErrEmptyEntry),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrInvalidDirection),
		errors.Is(err, ledger.ErrInvalidAccountCode),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrParentNotFound),
		errors.Is(err, ledger.ErrInvalidCurrency),
		errors.Is(err, ledger.ErrCurrencyMismatch),
		errors.Is(err, ledger.ErrBadPrecision),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrEntryNotPosted),
		errors.Is(err, ledger.ErrInvalidPartyKind),
		errors.Is(err, geo.ErrInvalidGeometry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// postContext pulls the caller-supplied identity from request headers: the
// idempotency key and the acting user. Both are opaque to the core.
func postContext(r *http.Request) ledger.PostContext {
	return ledger.PostContext{
		RequestID: r.Header.Get("X-Request-Id"),
		Actor:     r.Header.Get("X-Actor"),
	}
}
