package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/K1T3K1/msfin/internal/core"
	"github.com/K1T3K1/msfin/internal/services"
	"github.com/K1T3K1/msfin/internal/storage"
)

type stubRates struct {
	rate decimal.Decimal
	err  error
}

func (s stubRates) FetchRate(_ context.Context, _, _ string) (decimal.Decimal, error) {
	return s.rate, s.err
}

func newTestServer(t *testing.T, rates RateFetcher) *httptest.Server {
	t.Helper()
	ledger := services.NewLedgerService(storage.NewMemoryStore(), nil)
	srv := NewServer("0", ledger, rates)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createAccount(t *testing.T, ts *httptest.Server, name, balance string) accountResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		createAccountRequest{Name: name, Type: "Debit", Balance: balance})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account status = %d, want 201", resp.StatusCode)
	}
	return decode[accountResponse](t, resp)
}

func TestAccountLifecycle(t *testing.T) {
	ts := newTestServer(t, stubRates{})

	account := createAccount(t, ts, "Checking", "100")
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("opening balance = %s, want 100", account.Balance)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		createAccountRequest{Name: "Checking", Type: "Cash"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate account status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		createAccountRequest{Name: "Vault", Type: "Crypto"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad type status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/accounts/"+account.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete account status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts", nil)
	if accounts := decode[[]accountResponse](t, resp); len(accounts) != 0 {
		t.Errorf("accounts after delete = %d, want 0", len(accounts))
	}
}

func TestTransactionAffectsBalance(t *testing.T) {
	ts := newTestServer(t, stubRates{})

	account := createAccount(t, ts, "Checking", "100")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", transactionRequest{
		Timestamp: "2026-01-10T12:00:00Z",
		Value:     "-30",
		AccountID: account.ID,
		Name:      "groceries",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create transaction status = %d, want 201", resp.StatusCode)
	}
	tx := decode[transactionResponse](t, resp)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts", nil)
	accounts := decode[[]accountResponse](t, resp)
	if len(accounts) != 1 || !accounts[0].Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance after transaction = %+v, want 70", accounts)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/transactions/"+tx.ID, transactionRequest{
		Timestamp: "2026-01-10T12:00:00Z",
		Value:     "-50",
		AccountID: account.ID,
		Name:      "groceries",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update transaction status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+tx.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete transaction status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts", nil)
	accounts = decode[[]accountResponse](t, resp)
	if !accounts[0].Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after delete = %s, want 100", accounts[0].Balance)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+tx.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete of missing transaction status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTransactionValidationErrors(t *testing.T) {
	ts := newTestServer(t, stubRates{})
	account := createAccount(t, ts, "Checking", "")

	tests := []struct {
		name string
		req  transactionRequest
	}{
		{"bad value", transactionRequest{Timestamp: "2026-01-10T12:00:00Z", Value: "abc", AccountID: account.ID, Name: "x"}},
		{"bad timestamp", transactionRequest{Timestamp: "yesterday", Value: "1", AccountID: account.ID, Name: "x"}},
		{"bad account id", transactionRequest{Timestamp: "2026-01-10T12:00:00Z", Value: "1", AccountID: "nope", Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tt.req)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
			resp.Body.Close()
		})
	}
}

func TestListTransactionsFilters(t *testing.T) {
	ts := newTestServer(t, stubRates{})
	account := createAccount(t, ts, "Checking", "")

	seed := []transactionRequest{
		{Timestamp: "2026-01-01T12:00:00Z", Value: "-800", AccountID: account.ID, Name: "rent"},
		{Timestamp: "2026-01-15T12:00:00Z", Value: "2000", AccountID: account.ID, Name: "salary"},
		{Timestamp: "2026-01-10T12:00:00Z", Value: "-4", AccountID: account.ID, Name: "coffee"},
	}
	for _, req := range seed {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed transaction status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions?sign=expense&order=date_asc", nil)
	entries := decode[[]transactionResponse](t, resp)
	if len(entries) != 2 || entries[0].Name != "rent" || entries[1].Name != "coffee" {
		t.Errorf("filtered list = %+v, want [rent coffee]", entries)
	}

	// strict bounds: the Jan 1 rent sits exactly on from and is excluded
	url := fmt.Sprintf("%s/api/transactions?from=%s&to=%s", ts.URL,
		"2026-01-01T12:00:00Z", "2026-02-01T00:00:00Z")
	resp = doJSON(t, http.MethodGet, url, nil)
	entries = decode[[]transactionResponse](t, resp)
	if len(entries) != 2 {
		t.Errorf("strict range kept %d entries, want 2", len(entries))
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?order=sideways", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad order status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t, stubRates{})
	account := createAccount(t, ts, "Checking", "")

	for _, req := range []transactionRequest{
		{Timestamp: "2026-01-15T12:00:00Z", Value: "150", AccountID: account.ID, Name: "salary"},
		{Timestamp: "2026-01-10T12:00:00Z", Value: "-30", AccountID: account.ID, Name: "food"},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", req)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/summary?group_by=account", nil)
	summary := decode[summaryResponse](t, resp)
	if !summary.IncomeTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("income total = %s, want 150", summary.IncomeTotal)
	}
	if len(summary.Expenses) != 1 || summary.Expenses[0].Name != "Checking" {
		t.Errorf("expense groups = %+v, want Checking", summary.Expenses)
	}
	if !summary.Expenses[0].Share.Equal(decimal.NewFromInt(1)) {
		t.Errorf("sole group share = %s, want 1", summary.Expenses[0].Share)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/summary?group_by=color", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad group_by status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCurrencyRateEndpoint(t *testing.T) {
	ts := newTestServer(t, stubRates{rate: decimal.NewFromFloat(0.5)})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/currency/rate?base=USD&quote=EUR&amount=10", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rate status = %d, want 200", resp.StatusCode)
	}
	rate := decode[rateResponse](t, resp)
	if !rate.Rate.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("rate = %s, want 0.5", rate.Rate)
	}
	if rate.Converted == nil || !rate.Converted.Equal(decimal.NewFromInt(5)) {
		t.Errorf("converted = %v, want 5", rate.Converted)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/currency/rate?quote=EUR", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("missing base status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCurrencyRateFailureMapsToBadGateway(t *testing.T) {
	ts := newTestServer(t, stubRates{err: fmt.Errorf("%w: upstream down", core.ErrExternalService)})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/currency/rate?base=USD&quote=EUR", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("rate failure status = %d, want 502", resp.StatusCode)
	}
	resp.Body.Close()
}
