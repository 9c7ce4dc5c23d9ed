package server

import (
	"encoding/json"
	"net/http"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/campolibro/campolibro/internal/store"
	"github.com/go-chi/chi/v5"
)

type createAccountRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Postable bool   `json:"postable"`
	Currency string `json:"currency"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	acct := &ledger.Account{
		Code:     req.Code,
		Name:     req.Name,
		Postable: req.Postable,
		Currency: req.Currency,
	}

	if err := s.store.CreateAccount(r.Context(), acct); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	created, err := s.store.GetAccount(r.Context(), acct.Code)
	if err != nil {
		writeJSON(w, http.StatusCreated, acct)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	filter := store.AccountFilter{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = ledger.Kind(kind)
	}
	if p := r.URL.Query().Get("postable"); p != "" {
		val := p == "true"
		filter.Postable = &val
	}

	accounts, err := s.store.ListAccounts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	acct, err := s.store.GetAccount(r.Context(), code)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type balanceResponse struct {
	AccountCode string                  `json:"account_code"`
	Balances    []store.CurrencyBalance `json:"balances"`
}

func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	balances, err := s.store.AccountBalance(r.Context(), code)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if balances == nil {
		balances = []store.CurrencyBalance{}
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountCode: code, Balances: balances})
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.PredefinedChart)
}
