// Package yahoo fetches daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/etnz/wealth/httpcache"
	"github.com/rs/zerolog"
)

// DefaultHosts are queried in turn until one answers.
var DefaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

// DefaultBackoffs are the waits between rounds over all hosts.
var DefaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// Provider fetches the whole daily close history of a symbol.
type Provider struct {
	Client   *http.Client
	Hosts    []string
	Backoffs []time.Duration
	Log      zerolog.Logger
}

// New returns a provider using client, http.DefaultClient if nil.
func New(client *http.Client, log zerolog.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		Client:   client,
		Hosts:    DefaultHosts,
		Backoffs: DefaultBackoffs,
		Log:      log.With().Str("provider", "yahoo").Logger(),
	}
}

var header = http.Header{
	"User-Agent":      {"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"},
	"Accept":          {"application/json, text/javascript, */*; q=0.01"},
	"Accept-Language": {"en-US,en;q=0.9"},
}

// Fetch implements wealth.Provider.
func (p *Provider) Fetch(ctx context.Context, asset wealth.Asset) (*wealth.PriceSeries, error) {
	body, err := p.chart(ctx, asset.Ticker)
	if err != nil {
		return nil, err
	}
	return parseChart(asset.ID(), body)
}

// chart returns the chart payload of symbol, rotating over hosts with a backoff between rounds.
func (p *Provider) chart(ctx context.Context, symbol string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(p.Backoffs); attempt++ {
		for _, host := range p.Hosts {
			addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=max&interval=1d&events=div,splits", host, url.PathEscape(symbol))
			body, err := httpcache.Get(ctx, p.Client, addr, header)
			if err == nil && !strings.HasPrefix(string(body), "<") && !strings.HasPrefix(string(body), "Edge:") {
				return body, nil
			}
			if err == nil {
				err = fmt.Errorf("yahoo %s returned a non-json body: %s", host, preview(body))
			}
			var status *httpcache.StatusError
			if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("unknown yahoo symbol %q: %w", symbol, err)
			}
			lastErr = err
			p.Log.Debug().Err(err).Str("symbol", symbol).Str("host", host).Int("attempt", attempt).Msg("yahoo request failed")
		}
		if attempt < len(p.Backoffs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.Backoffs[attempt]):
			}
		}
	}
	return nil, lastErr
}

func preview(body []byte) string {
	if len(body) > 120 {
		body = body[:120]
	}
	return string(body)
}

// parseChart extracts the daily closes of a chart payload. Null closes are gaps.
func parseChart(id string, body []byte) (*wealth.PriceSeries, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse yahoo json: %w; body: %s", err, preview(body))
	}
	if msg, err := jsonpath.Get("$.chart.error.description", payload); err == nil {
		if s, ok := msg.(string); ok && s != "" {
			return nil, fmt.Errorf("yahoo error for %s: %s", id, s)
		}
	}

	timestamps, err := list(payload, "$.chart.result[0].timestamp")
	if err != nil {
		return nil, err
	}
	closes, err := list(payload, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, err
	}
	if len(timestamps) != len(closes) {
		return nil, fmt.Errorf("yahoo %s: %d timestamps for %d closes", id, len(timestamps), len(closes))
	}

	// timestamps are the session open time, shifted to the exchange local day.
	offset := 0.0
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", payload); err == nil {
		offset, _ = v.(float64)
	}

	s := wealth.NewPriceSeries(id)
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			return nil, fmt.Errorf("yahoo %s: invalid timestamp %v", id, ts)
		}
		on := date.FromTime(time.Unix(int64(sec+offset), 0).UTC())
		price, ok := closes[i].(float64)
		if !ok {
			price = 0 // null close, recorded as a gap
		}
		s.Append(on, price)
	}
	return s, nil
}

// list evaluates a JSONPath expected to return an array.
func list(payload any, path string) ([]any, error) {
	v, err := jsonpath.Get(path, payload)
	if err != nil {
		return nil, fmt.Errorf("error parsing yahoo chart %q: %w", path, err)
	}
	res, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing yahoo chart %q: not a list: %v", path, v)
	}
	return res, nil
}
