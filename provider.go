package wealth

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/wealth/observability"
	"github.com/etnz/wealth/trace"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Provider fetches the closing price series of an asset.
type Provider interface {
	Fetch(ctx context.Context, asset Asset) (*PriceSeries, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, asset Asset) (*PriceSeries, error)

// Fetch calls f(ctx, asset).
func (f ProviderFunc) Fetch(ctx context.Context, asset Asset) (*PriceSeries, error) {
	return f(ctx, asset)
}

// Providers selects a Provider by the asset source.
type Providers map[Source]Provider

// Lookup returns the provider of an asset, or an *UnsupportedSourceError.
func (p Providers) Lookup(asset Asset) (Provider, error) {
	provider, ok := p[asset.Source]
	if !ok || provider == nil {
		return nil, &UnsupportedSourceError{Asset: asset.Ticker, Source: asset.Source}
	}
	return provider, nil
}

// FetchAll fetches every asset's series, at most concurrency at a time.
//
// Every asset source is checked before anything is fetched. The returned series are in
// the assets order and named after the asset ID.
func (p Providers) FetchAll(ctx context.Context, assets []Asset, concurrency int) ([]*PriceSeries, error) {
	providers := make([]Provider, len(assets))
	for i, a := range assets {
		provider, err := p.Lookup(a)
		if err != nil {
			return nil, err
		}
		providers[i] = provider
	}

	series := make([]*PriceSeries, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))
	for i, a := range assets {
		g.Go(func() error {
			s, err := fetch(ctx, providers[i], a)
			if err != nil {
				return err
			}
			series[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

func fetch(ctx context.Context, provider Provider, a Asset) (s *PriceSeries, err error) {
	ctx, span := trace.Start(ctx, "wealth.fetch",
		attribute.String("asset", a.Ticker),
		attribute.String("source", string(a.Source)))
	start := time.Now()
	defer func() {
		points := 0
		if s != nil {
			points = s.Len()
		}
		observability.RecordFetch(string(a.Source), points, time.Since(start).Seconds(), err)
		trace.End(span, err)
	}()

	s, err = provider.Fetch(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s from %s: %w", a.Ticker, a.Source, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("could not fetch %s from %s: %w", a.Ticker, a.Source, ErrEmptySeries)
	}
	s.Asset = a.ID()
	return s, nil
}
