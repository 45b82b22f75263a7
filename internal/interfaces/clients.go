// Package interfaces defines the contracts between stocklens components
package interfaces

import (
	"context"

	"github.com/stocklens/stocklens/internal/models"
)

// MarketClient is the upstream market data provider surface.
type MarketClient interface {
	// GetChart retrieves OHLCV history over rng at interval.
	GetChart(ctx context.Context, symbol, rng, interval string) (*models.ChartData, error)

	// GetQuote retrieves fundamentals from the quote snapshot endpoint.
	GetQuote(ctx context.Context, symbol string) (*models.Fundamentals, error)

	// GetQuoteSummary retrieves fundamentals from the quote summary endpoint.
	GetQuoteSummary(ctx context.Context, symbol string) (*models.Fundamentals, error)

	// ScrapeQuotePage extracts fundamentals from the public quote page HTML.
	// Least-trusted source, consulted last.
	ScrapeQuotePage(ctx context.Context, symbol string) (*models.Fundamentals, error)
}
