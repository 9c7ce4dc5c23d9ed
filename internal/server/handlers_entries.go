package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/campolibro/campolibro/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type postEntryRequest struct {
	Description string `json:"description"`
	Lines       []struct {
		AccountCode  string          `json:"account_code"`
		Direction    string          `json:"direction"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency"`
		ThirdPartyID string          `json:"third_party_id"`
		CostCenter   string          `json:"cost_center"`
	} `json:"lines"`
}

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	lines := make([]ledger.LedgerLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, ledger.LedgerLine{
			AccountCode:  l.AccountCode,
			Direction:    ledger.Direction(l.Direction),
			Amount:       l.Amount,
			Currency:     l.Currency,
			ThirdPartyID: l.ThirdPartyID,
			CostCenter:   l.CostCenter,
		})
	}

	entry, err := s.store.PostEntry(r.Context(), req.Description, lines, postContext(r))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := store.EntryFilter{
		AccountCode: r.URL.Query().Get("account"),
		PartyID:     r.URL.Query().Get("party"),
	}

	entries, err := s.store.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []ledger.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.store.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) voidEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.store.VoidEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// postEvent decodes one event payload by its kind and posts the resulting
// entry. Each kind maps to one template row.
func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	ev, err := decodeEvent(kind, json.NewDecoder(r.Body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.store.PostEvent(r.Context(), ev, postContext(r))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func decodeEvent(kind string, dec *json.Decoder) (ledger.Event, error) {
	switch kind {
	case "purchase":
		var ev ledger.InputPurchase
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "application":
		var ev ledger.InputApplication
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "harvest":
		var ev ledger.Harvest
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "consignment":
		var ev ledger.ConsignmentDelivery
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "sale":
		var ev ledger.DirectSale
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "collection":
		var ev ledger.Collection
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	case "payment":
		var ev ledger.SupplierPayment
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}
