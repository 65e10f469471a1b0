package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K1T3K1/msfin/internal/core"
)

// DefaultBaseURL is the freecurrencyapi latest-rates endpoint.
const DefaultBaseURL = "https://api.freecurrencyapi.com/v1/latest"

// Client fetches exchange rates. Any failure surfaces as
// core.ErrExternalService; there is no retry, caching or fallback rate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
}

// NewClientWithBaseURL points the client at a non-default endpoint.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type rateResponse struct {
	Data map[string]decimal.Decimal `json:"data"`
}

// FetchRate returns how many units of quote one unit of base buys.
func (c *Client) FetchRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("currencies", quote)
	params.Set("base_currency", base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build rate request: %v", core.ErrExternalService, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fetch rate: %v", core.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: rate endpoint returned %s", core.ErrExternalService, resp.Status)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode rate response: %v", core.ErrExternalService, err)
	}

	rate, ok := body.Data[quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s in response", core.ErrExternalService, quote)
	}
	return rate, nil
}

// RateResult carries an async fetch outcome.
type RateResult struct {
	Rate decimal.Decimal
	Err  error
}

// FetchAsync resolves the rate on a buffered channel. A receiver that
// walks away loses nothing: the send never blocks and the goroutine exits.
func (c *Client) FetchAsync(ctx context.Context, base, quote string) <-chan RateResult {
	out := make(chan RateResult, 1)
	go func() {
		rate, err := c.FetchRate(ctx, base, quote)
		out <- RateResult{Rate: rate, Err: err}
	}()
	return out
}

// Convert applies a fetched rate to an amount.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}
