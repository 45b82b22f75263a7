// Package interfaces defines service contracts for StockLens
package interfaces

import (
	"context"

	"github.com/stocklens/stocklens/internal/models"
)

// StockService resolves tickers against the market-data source chain and
// derives price, indicator, and statistical analytics.
type StockService interface {
	// GetSnapshot assembles the price/fundamentals snapshot with OHLC
	// history, performance, and the composite risk block.
	GetSnapshot(ctx context.Context, ticker, timeframe string) (*models.Snapshot, error)

	// GetPriceOnly returns just the latest price header, on a short TTL.
	GetPriceOnly(ctx context.Context, ticker string) (*models.PriceOnlySnapshot, error)

	// GetTechnicals computes the moving-average and oscillator battery with
	// per-indicator votes and aggregate signals.
	GetTechnicals(ctx context.Context, ticker, timeframe string) (*models.TechnicalsReport, error)

	// GetCorrelation returns the Pearson and sparse partial correlation
	// matrices over the return/indicator feature table.
	GetCorrelation(ctx context.Context, ticker string) (*models.CorrelationMatrices, error)

	// GetCorrelationTable returns the compact table view of the partial
	// correlation matrix.
	GetCorrelationTable(ctx context.Context, ticker string) (*models.CorrelationTable, error)

	// GetSeasonality computes per-year monthly return curves and cross-year
	// percentile bands.
	GetSeasonality(ctx context.Context, ticker string, excludeOutliers bool) (*models.Seasonality, error)

	// GetSupplyDemand detects volume-weighted support/resistance zones.
	GetSupplyDemand(ctx context.Context, ticker string, opts SupplyDemandOptions) (*models.SupplyDemand, error)

	// GetHistory returns the trailing OHLC window for charting.
	GetHistory(ctx context.Context, ticker, timeframe string) (*models.History, error)

	// GetLivePrice returns the most recent trade price.
	GetLivePrice(ctx context.Context, ticker string) (*models.LivePrice, error)
}

// SupplyDemandOptions carries the zone-detection overrides. Nil fields fall
// back to per-timeframe defaults.
type SupplyDemandOptions struct {
	Timeframe string
	Strength  *float64 // strength percentile
	MinPct    *float64 // minimum zone distance from price, percent
	GapPct    *float64 // zone merge gap, percent
}
