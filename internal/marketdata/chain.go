package marketdata

import (
	"context"
	"time"

	"github.com/stocklens/stocklens/internal/common"
	"github.com/stocklens/stocklens/internal/interfaces"
	"github.com/stocklens/stocklens/internal/models"
)

// PriceSource fetches bars for one symbol over a range at an interval.
// Implementations swallow their own failures and return an empty slice, so
// the chain can move on to the next source without special-casing errors.
type PriceSource interface {
	Name() string
	FetchBars(ctx context.Context, symbol, rng, interval string) ([]models.Bar, models.ChartMeta)
}

// chartSource adapts the chart JSON endpoint into a PriceSource.
type chartSource struct {
	client interfaces.MarketClient
	logger *common.Logger
}

func (s *chartSource) Name() string { return "chart" }

func (s *chartSource) FetchBars(ctx context.Context, symbol, rng, interval string) ([]models.Bar, models.ChartMeta) {
	chart, err := s.client.GetChart(ctx, symbol, rng, interval)
	if err != nil {
		s.logger.Debug().
			Str("symbol", symbol).
			Str("range", rng).
			Str("interval", interval).
			Err(err).
			Msg("chart source returned no data")
		return nil, models.ChartMeta{}
	}
	return NormalizeChart(chart), chart.Meta
}

// Chain walks candidates and sources in order until one yields bars.
type Chain struct {
	sources []PriceSource
	logger  *common.Logger
	now     func() time.Time
}

// NewChain builds the production source chain over a market client.
func NewChain(client interfaces.MarketClient, logger *common.Logger) *Chain {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Chain{
		sources: []PriceSource{&chartSource{client: client, logger: logger}},
		logger:  logger,
		now:     time.Now,
	}
}

// Result is the outcome of a successful chain fetch.
type Result struct {
	Series models.Series
	Meta   models.ChartMeta
	Symbol string // the candidate that produced data
}

// FetchRecentDaily retrieves a short daily window for the first candidate
// that has data, widening the range before moving to the next candidate.
func (c *Chain) FetchRecentDaily(ctx context.Context, candidates []string) (*Result, error) {
	for _, symbol := range candidates {
		for _, rng := range []string{"5d", "1mo"} {
			for _, src := range c.sources {
				bars, meta := src.FetchBars(ctx, symbol, rng, "1d")
				if len(bars) > 0 {
					return &Result{
						Series: models.Series{Symbol: symbol, Interval: models.IntervalDaily, Bars: bars},
						Meta:   meta,
						Symbol: symbol,
					}, nil
				}
			}
		}
	}
	return nil, models.ErrNoData
}

// FetchInterval retrieves history for symbol at interval over rng. Weekly and
// monthly series are rebuilt from daily bars first, since upstream truncates
// native 1wk/1mo responses; the native interval is the fallback.
func (c *Chain) FetchInterval(ctx context.Context, symbol string, interval models.Interval, rng string) (*Result, error) {
	if interval == models.IntervalWeekly || interval == models.IntervalMonth {
		if res, err := c.fetchOne(ctx, symbol, rng, models.IntervalDaily); err == nil {
			resampled := Resample(res.Series.Bars, interval, c.now())
			if len(resampled) > 0 {
				res.Series = models.Series{Symbol: symbol, Interval: interval, Bars: resampled}
				return res, nil
			}
		}
	}
	return c.fetchOne(ctx, symbol, rng, interval)
}

// FetchIntervalCandidates runs FetchInterval across candidates in order.
func (c *Chain) FetchIntervalCandidates(ctx context.Context, candidates []string, interval models.Interval, rng string) (*Result, error) {
	for _, symbol := range candidates {
		if res, err := c.FetchInterval(ctx, symbol, interval, rng); err == nil {
			return res, nil
		}
	}
	return nil, models.ErrNoData
}

func (c *Chain) fetchOne(ctx context.Context, symbol, rng string, interval models.Interval) (*Result, error) {
	for _, src := range c.sources {
		bars, meta := src.FetchBars(ctx, symbol, rng, string(interval))
		if len(bars) > 0 {
			return &Result{
				Series: models.Series{Symbol: symbol, Interval: interval, Bars: bars},
				Meta:   meta,
				Symbol: symbol,
			}, nil
		}
	}
	return nil, models.ErrNoData
}

// RangeForInterval returns the history range requested for full-depth series
// at the given interval.
func RangeForInterval(interval models.Interval) string {
	switch {
	case interval.Intraday():
		return "60d"
	case interval == models.IntervalWeekly:
		return "10y"
	case interval == models.IntervalMonth:
		return "20y"
	case interval == models.IntervalDaily:
		return "10y"
	default:
		return "10y"
	}
}
