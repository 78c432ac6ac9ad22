package wealth

import (
	"fmt"
	"strings"
)

// Source names the capability that provides an asset's prices.
type Source string

const (
	SourceYahoo Source = "yahoo"
	SourceEODHD Source = "eodhd"
	SourceCSV   Source = "csv"
)

// PortfolioTicker is the name of the pseudo-asset holding the blended portfolio return.
const PortfolioTicker = "PORT"

// Asset is a tracked security.
type Asset struct {
	Ticker string `yaml:"ticker" json:"ticker"`
	Name   string `yaml:"name" json:"name"`
	Source Source `yaml:"source" json:"source"`
}

// NewAsset returns an asset with an upper-cased ticker and a lower-cased source.
func NewAsset(ticker, name string, source Source) Asset {
	return Asset{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Name:   name,
		Source: Source(strings.ToLower(strings.TrimSpace(string(source)))),
	}
}

// ID names the asset series and its trades: the yahoo symbol without its exchange
// suffix ("XDEM.MI" is XDEM), the ticker for other sources.
func (a Asset) ID() string {
	if a.Source == SourceYahoo {
		id, _, _ := strings.Cut(a.Ticker, ".")
		return id
	}
	return a.Ticker
}

func (a Asset) String() string {
	if a.Name == "" {
		return a.Ticker
	}
	return fmt.Sprintf("%s (%s)", a.Ticker, a.Name)
}

// ValidateAssets checks that tickers are set, unique and not reserved.
func ValidateAssets(assets []Asset) error {
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		switch {
		case a.Ticker == "":
			return fmt.Errorf("asset %q has no ticker", a.Name)
		case a.ID() == PortfolioTicker:
			return fmt.Errorf("asset %q: %w", a.Ticker, ErrReservedTicker)
		case seen[a.ID()]:
			return fmt.Errorf("asset %q: %w", a.Ticker, ErrDuplicateAsset)
		}
		seen[a.ID()] = true
	}
	return nil
}

// IDs returns the ids of assets, in order.
func IDs(assets []Asset) []string {
	res := make([]string, len(assets))
	for i, a := range assets {
		res[i] = a.ID()
	}
	return res
}
