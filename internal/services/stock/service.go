// Package stock implements the ticker-resolution and analytics service over
// the market-data source chain.
package stock

import (
	"strings"
	"time"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/cache"
	"github.com/stocklens/stocklens/internal/common"
	"github.com/stocklens/stocklens/internal/interfaces"
	"github.com/stocklens/stocklens/internal/marketdata"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// Service answers all stock analytics requests. Every operation resolves the
// raw ticker into candidate symbols, walks the source chain, and caches its
// response per endpoint family.
type Service struct {
	client interfaces.MarketClient
	chain  *marketdata.Chain
	caches *cache.Caches
	logger *common.Logger
	now    func() time.Time
}

var _ interfaces.StockService = (*Service)(nil)

// NewService builds the stock service. A nil caches gets the default cache
// set; a nil logger discards logs.
func NewService(client interfaces.MarketClient, caches *cache.Caches, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if caches == nil {
		caches = cache.NewCaches()
	}
	return &Service{
		client: client,
		chain:  marketdata.NewChain(client, logger),
		caches: caches,
		logger: logger,
		now:    time.Now,
	}
}

// cacheSymbol is the canonical cache-key form of a raw ticker.
func cacheSymbol(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

func cacheGet[T any](c *cache.Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func cacheSet(c *cache.Cache, key string, value any) {
	if c != nil {
		c.Set(key, value)
	}
}

// historyRange is the chart range requested by the supply/demand and history
// endpoints per canonical interval.
func historyRange(interval models.Interval) string {
	switch interval {
	case models.IntervalDaily:
		return "1y"
	case models.IntervalWeekly:
		return "5y"
	case models.IntervalMonth:
		return "20y"
	default:
		return "6mo"
	}
}

// fundamentalsCandidatesFor merges fundamentals candidates for the raw
// request symbol and the candidate that actually produced price data.
func fundamentalsCandidatesFor(raw, resolved string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, source := range []string{raw, resolved} {
		for _, cand := range ticker.FundamentalsCandidates(source) {
			if cand != "" && !seen[cand] {
				seen[cand] = true
				out = append(out, cand)
			}
		}
	}
	return out
}

// ohlcvFrom flattens a bar series into indicator input columns.
func ohlcvFrom(bars []models.Bar) analytics.OHLCV {
	out := analytics.OHLCV{
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		out.Open[i] = b.Open
		out.High[i] = b.High
		out.Low[i] = b.Low
		out.Close[i] = b.Close
		out.Volume[i] = b.Volume
	}
	return out
}
