// Package client is a thin HTTP wrapper over the campolibro API, used by the
// CLI and the TUI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/campolibro/campolibro/internal/geo"
	"github.com/campolibro/campolibro/internal/ledger"
	"github.com/campolibro/campolibro/internal/store"
	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL    string
	actor      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithActor sets the identity recorded on write operations.
func (c *Client) WithActor(actor string) *Client {
	c.actor = actor
	return c
}

func (c *Client) CreateAccount(ctx context.Context, acct *ledger.Account) (*ledger.Account, error) {
	body := map[string]any{
		"code":     acct.Code,
		"name":     acct.Name,
		"postable": acct.Postable,
		"currency": acct.Currency,
	}
	var result ledger.Account
	if err := c.post(ctx, "/api/v1/accounts", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, kind string, postable *bool) ([]ledger.Account, error) {
	params := url.Values{}
	if kind != "" {
		params.Set("kind", kind)
	}
	if postable != nil {
		params.Set("postable", strconv.FormatBool(*postable))
	}
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type BalanceResponse struct {
	AccountCode string                  `json:"account_code"`
	Balances    []store.CurrencyBalance `json:"balances"`
}

func (c *Client) GetAccountBalance(ctx context.Context, code string) (*BalanceResponse, error) {
	var result BalanceResponse
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(code)+"/balance", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PostEntry(ctx context.Context, requestID, description string, lines []ledger.LedgerLine) (*ledger.JournalEntry, error) {
	type lineReq struct {
		AccountCode  string          `json:"account_code"`
		Direction    string          `json:"direction"`
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency"`
		ThirdPartyID string          `json:"third_party_id,omitempty"`
		CostCenter   string          `json:"cost_center,omitempty"`
	}
	reqLines := make([]lineReq, len(lines))
	for i, l := range lines {
		reqLines[i] = lineReq{
			AccountCode:  l.AccountCode,
			Direction:    string(l.Direction),
			Amount:       l.Amount,
			Currency:     l.Currency,
			ThirdPartyID: l.ThirdPartyID,
			CostCenter:   l.CostCenter,
		}
	}
	body := map[string]any{
		"description": description,
		"lines":       reqLines,
	}
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/entries", requestID, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListEntries(ctx context.Context, accountCode, partyID string) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	if accountCode != "" {
		params.Set("account", accountCode)
	}
	if partyID != "" {
		params.Set("party", partyID)
	}
	var result []ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/entries?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.get(ctx, "/api/v1/entries/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) VoidEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/entries/"+url.PathEscape(id)+"/void", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostEvent posts one business event; kind selects the template on the
// server side (purchase, application, harvest, consignment, sale,
// collection, payment).
func (c *Client) PostEvent(ctx context.Context, kind, requestID string, event any) (*ledger.JournalEntry, error) {
	var result ledger.JournalEntry
	if err := c.post(ctx, "/api/v1/events/"+url.PathEscape(kind), requestID, event, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateParty(ctx context.Context, party *ledger.ThirdParty) (*ledger.ThirdParty, error) {
	body := map[string]any{
		"id":   party.ID,
		"name": party.Name,
		"kind": party.Kind,
	}
	var result ledger.ThirdParty
	if err := c.post(ctx, "/api/v1/parties", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListParties(ctx context.Context) ([]ledger.ThirdParty, error) {
	var result []ledger.ThirdParty
	if err := c.get(ctx, "/api/v1/parties", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetParty(ctx context.Context, id string) (*ledger.ThirdParty, error) {
	var result ledger.ThirdParty
	if err := c.get(ctx, "/api/v1/parties/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PartyTotals(ctx context.Context) (*ledger.PartyTotals, error) {
	var result ledger.PartyTotals
	if err := c.get(ctx, "/api/v1/parties/totals", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ReplayResponse struct {
	PartyID            string          `json:"party_id"`
	StoredReceivable   decimal.Decimal `json:"stored_receivable"`
	StoredPayable      decimal.Decimal `json:"stored_payable"`
	ReplayedReceivable decimal.Decimal `json:"replayed_receivable"`
	ReplayedPayable    decimal.Decimal `json:"replayed_payable"`
	InSync             bool            `json:"in_sync"`
}

func (c *Client) ReplayParty(ctx context.Context, id string) (*ReplayResponse, error) {
	var result ReplayResponse
	if err := c.get(ctx, "/api/v1/parties/"+url.PathEscape(id)+"/replay", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GeometryVersion is the wire form of a plot boundary revision; geometry is
// carried as raw GeoJSON.
type GeometryVersion struct {
	PlotID       string          `json:"plot_id"`
	Version      int             `json:"version"`
	Geometry     json.RawMessage `json:"geometry"`
	AreaHectares float64         `json:"area_hectares"`
	ChangedAt    time.Time       `json:"changed_at"`
	ChangedBy    string          `json:"changed_by"`
	Reason       string          `json:"reason,omitempty"`
}

type PlotResponse struct {
	geo.Plot
	Version *GeometryVersion `json:"version,omitempty"`
}

func (c *Client) CreatePlot(ctx context.Context, fieldID, name, code string, geometry json.RawMessage) (*PlotResponse, error) {
	body := map[string]any{
		"field_id": fieldID,
		"name":     name,
		"code":     code,
		"geometry": geometry,
	}
	var result PlotResponse
	if err := c.post(ctx, "/api/v1/plots", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPlots(ctx context.Context, fieldID string) ([]geo.Plot, error) {
	params := url.Values{}
	if fieldID != "" {
		params.Set("field", fieldID)
	}
	var result []geo.Plot
	if err := c.get(ctx, "/api/v1/plots?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetPlot(ctx context.Context, id string) (*geo.Plot, error) {
	var result geo.Plot
	if err := c.get(ctx, "/api/v1/plots/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListGeometryVersions(ctx context.Context, plotID string) ([]GeometryVersion, error) {
	var result []GeometryVersion
	if err := c.get(ctx, "/api/v1/plots/"+url.PathEscape(plotID)+"/versions", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) AppendGeometryVersion(ctx context.Context, plotID string, geometry json.RawMessage, reason string) (*GeometryVersion, error) {
	body := map[string]any{
		"geometry": geometry,
		"reason":   reason,
	}
	var result GeometryVersion
	if err := c.post(ctx, "/api/v1/plots/"+url.PathEscape(plotID)+"/versions", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CompareVersions(ctx context.Context, plotID string, from, to int) (*geo.VersionComparison, error) {
	params := url.Values{}
	params.Set("from", strconv.Itoa(from))
	params.Set("to", strconv.Itoa(to))
	var result geo.VersionComparison
	if err := c.get(ctx, "/api/v1/plots/"+url.PathEscape(plotID)+"/compare?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetChart(ctx context.Context) ([]ledger.ChartEntry, error) {
	var result []ledger.ChartEntry
	if err := c.get(ctx, "/api/v1/chart", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ExportJournal streams the journal CSV into w.
func (c *Client) ExportJournal(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/export/journal.csv", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/chart", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) post(ctx context.Context, path, requestID string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
	}
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
