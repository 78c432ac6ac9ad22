// Package eodhd fetches end of day prices from the EOD Historical Data API.
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/httpcache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the EODHD API root.
const DefaultBaseURL = "https://eodhd.com/api"

// ErrNoAPIKey is returned when the provider is used without an api key.
var ErrNoAPIKey = errors.New("eodhd api key is not set, use EODHD_API_KEY")

// Provider fetches daily closes of "SYMBOL.EXCHANGECODE" tickers, like MCD.US.
type Provider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	// Range of the fetched history. Open sides are left to the api defaults.
	Range date.Range
	Log   zerolog.Logger
}

// New returns a provider using client, http.DefaultClient if nil.
func New(apiKey string, client *http.Client, log zerolog.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Client:  client,
		Log:     log.With().Str("provider", "eodhd").Logger(),
	}
}

// eod is one item of the eod endpoint:
//
//	{
//		"date": "2024-02-13",
//		"open": 675.066,
//		"high": 684.219,
//		"low": 648.659,
//		"close": 668.445,
//		"adjusted_close": 67.705,
//		"volume": 0
//	}
type eod struct {
	Date          date.Date           `json:"date"`
	Close         decimal.Decimal     `json:"close"`
	AdjustedClose decimal.NullDecimal `json:"adjusted_close"`
}

// Fetch implements wealth.Provider. Adjusted closes are used when the api has them.
func (p *Provider) Fetch(ctx context.Context, asset wealth.Asset) (*wealth.PriceSeries, error) {
	if p.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	q := url.Values{"fmt": {"json"}, "api_token": {p.APIKey}}
	if !p.Range.From.IsZero() {
		q.Set("from", p.Range.From.String())
	}
	if !p.Range.To.IsZero() {
		q.Set("to", p.Range.To.String())
	}
	addr := fmt.Sprintf("%s/eod/%s?%s", p.BaseURL, url.PathEscape(asset.Ticker), q.Encode())

	content := make([]eod, 0)
	if err := httpcache.GetJSON(ctx, p.Client, addr, &content); err != nil {
		return nil, err
	}

	s := wealth.NewPriceSeries(asset.ID())
	adjusted := 0
	for _, info := range content {
		price := info.Close
		if info.AdjustedClose.Valid {
			price = info.AdjustedClose.Decimal
			adjusted++
		}
		s.Append(info.Date, price.InexactFloat64())
	}
	p.Log.Debug().Str("ticker", asset.Ticker).Int("points", s.Len()).Int("adjusted", adjusted).Msg("eod prices")
	return s, nil
}

// SearchResult is a single item of the search endpoint.
type SearchResult struct {
	Code              string    `json:"Code"`
	Exchange          string    `json:"Exchange"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	Country           string    `json:"Country"`
	Currency          string    `json:"Currency"`
	ISIN              string    `json:"ISIN"`
	PreviousClose     float64   `json:"previousClose"`
	PreviousCloseDate date.Date `json:"previousCloseDate"`
}

// Ticker returns the ticker to use for this result in an eodhd asset.
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search searches for securities by name, ticker or ISIN.
func (p *Provider) Search(ctx context.Context, term string) ([]SearchResult, error) {
	if p.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	addr := fmt.Sprintf("%s/search/%s?api_token=%s&fmt=json", p.BaseURL, url.PathEscape(term), url.QueryEscape(p.APIKey))
	var results []SearchResult
	if err := httpcache.GetJSON(ctx, p.Client, addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}
