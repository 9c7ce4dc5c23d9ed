package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/campolibro/campolibro/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ts := httptest.NewServer(New(st, "").Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestPostEventEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/v1/parties", map[string]any{
		"id": "agro-sur", "name": "Agro Sur SA", "kind": "supplier",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", ts.URL+"/api/v1/events/purchase", map[string]any{
		"input_account": ledger.AccountFertInventory,
		"supplier_id":   "agro-sur",
		"input":         "urea",
		"amount":        "5000",
		"currency":      "ARS",
	}, map[string]string{"X-Request-Id": "req-1", "X-Actor": "ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry ledger.JournalEntry
	decodeBody(t, resp, &entry)
	assert.Equal(t, ledger.StatusPosted, entry.Status)
	assert.Len(t, entry.Lines, 2)

	// Replay with the same request id returns the same entry.
	resp = doJSON(t, "POST", ts.URL+"/api/v1/events/purchase", map[string]any{
		"input_account": ledger.AccountFertInventory,
		"supplier_id":   "agro-sur",
		"input":         "urea",
		"amount":        "5000",
		"currency":      "ARS",
	}, map[string]string{"X-Request-Id": "req-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var replay ledger.JournalEntry
	decodeBody(t, resp, &replay)
	assert.Equal(t, entry.ID, replay.ID)

	var party ledger.ThirdParty
	resp = doJSON(t, "GET", ts.URL+"/api/v1/parties/agro-sur", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &party)
	assert.Equal(t, "5000", party.PayableBalance.String())
}

func TestPostEntryEndpoint_ErrorCodes(t *testing.T) {
	ts := newTestServer(t)

	// Unbalanced entry.
	resp := doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{
		"description": "unbalanced",
		"lines": []map[string]any{
			{"account_code": ledger.AccountCash, "direction": "debit", "amount": "10", "currency": "ARS"},
			{"account_code": ledger.AccountGrainSales, "direction": "credit", "amount": "9", "currency": "ARS"},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown account.
	resp = doJSON(t, "POST", ts.URL+"/api/v1/entries", map[string]any{
		"description": "ghost",
		"lines": []map[string]any{
			{"account_code": "9.9.9", "direction": "debit", "amount": "10", "currency": "ARS"},
			{"account_code": ledger.AccountGrainSales, "direction": "credit", "amount": "10", "currency": "ARS"},
		},
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Unknown event kind.
	resp = doJSON(t, "POST", ts.URL+"/api/v1/events/teleport", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Missing entry.
	resp = doJSON(t, "GET", ts.URL+"/api/v1/entries/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPlotEndpoints(t *testing.T) {
	ts := newTestServer(t)

	geometry := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[0.009009009009009009,0],[0.009009009009009009,0.009009009009009009],[0,0.009009009009009009],[0,0]]]}`)

	resp := doJSON(t, "POST", ts.URL+"/api/v1/plots", map[string]any{
		"field_id": "f1", "name": "Lote 3", "code": "L3", "geometry": geometry,
	}, map[string]string{"X-Actor": "ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID           string  `json:"id"`
		AreaHectares float64 `json:"area_hectares"`
		Version      *struct {
			Version int `json:"version"`
		} `json:"version"`
	}
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.InDelta(t, 100.0, created.AreaHectares, 1e-6)
	require.NotNil(t, created.Version)
	assert.Equal(t, 1, created.Version.Version)

	// Append a revision and compare.
	smaller := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[0.008,0],[0.008,0.008],[0,0.008],[0,0]]]}`)
	resp = doJSON(t, "POST", ts.URL+"/api/v1/plots/"+created.ID+"/versions", map[string]any{
		"geometry": smaller, "reason": "survey correction",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "GET", ts.URL+"/api/v1/plots/"+created.ID+"/compare?from=1&to=2", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cmp struct {
		FromVersion  int     `json:"from_version"`
		ToVersion    int     `json:"to_version"`
		DeltaHa      float64 `json:"delta_ha"`
		DeltaPercent float64 `json:"delta_percent"`
	}
	decodeBody(t, resp, &cmp)
	assert.Equal(t, 1, cmp.FromVersion)
	assert.Equal(t, 2, cmp.ToVersion)
	assert.Less(t, cmp.DeltaHa, 0.0)
	assert.Less(t, cmp.DeltaPercent, 0.0)

	// Bad geometry is a 400.
	resp = doJSON(t, "POST", ts.URL+"/api/v1/plots", map[string]any{
		"field_id": "f1", "name": "Bad", "code": "B1",
		"geometry": json.RawMessage(`{"type":"Point","coordinates":[0,0]}`),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
