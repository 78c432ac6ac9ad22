// Package wealth tracks the value of a multi-asset portfolio over time from
// per-asset closing prices and a ledger of cash-flow events.
//
// The core functionalities include:
//   - Returns: simple returns between consecutive price observations of an asset.
//   - Join: a (date, asset) table of returns and net same-day trades.
//   - Wealth: a cash-flow adjusted compounding recurrence, one forward pass per asset.
//   - Weights and blending: each asset's share of total wealth and the blended
//     portfolio return, published as the pseudo-asset PORT.
//   - Backtest: today's allocation replayed over history, optionally resampled.
//   - Rolling statistics and summary reports over a date window.
//
// Missing values are represented by NaN in a Frame. Structural problems (an unknown
// asset in the ledger, an unsupported price source) abort a run, numerical edge cases
// degrade to missing values and are logged.
//
// Price retrieval is a capability: see Provider and the yahoo, eodhd and localcsv
// packages.
package wealth
