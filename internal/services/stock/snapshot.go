package stock

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/marketdata"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// betaMarketSymbols are tried in order when fundamentals carry no beta.
var betaMarketSymbols = []string{"SPY", "^GSPC"}

// GetPriceOnly returns the latest price header without fundamentals or
// analytics, cached on a short TTL.
func (s *Service) GetPriceOnly(ctx context.Context, raw string) (*models.PriceOnlySnapshot, error) {
	key := cacheSymbol(raw) + ":priceOnly"
	if cached, ok := cacheGet[*models.PriceOnlySnapshot](s.caches.PriceOnly, key); ok {
		return cached, nil
	}

	daily, err := s.chain.FetchRecentDaily(ctx, ticker.Candidates(raw))
	if err != nil {
		return nil, err
	}

	current, low, high, change := priceHeader(daily.Series.Bars)
	payload := &models.PriceOnlySnapshot{Info: models.PriceOnly{
		CurrentPrice: current,
		DailyChange:  change,
		DailyLow:     low,
		DailyHigh:    high,
	}}
	cacheSet(s.caches.PriceOnly, key, payload)
	return payload, nil
}

// GetSnapshot assembles the full stock snapshot: price header, merged
// fundamentals, interval OHLC history, performance, and the risk composite.
func (s *Service) GetSnapshot(ctx context.Context, raw, timeframe string) (*models.Snapshot, error) {
	interval := models.MapTimeframe(timeframe)
	key := fmt.Sprintf("%s:%s", cacheSymbol(raw), interval)
	if cached, ok := cacheGet[*models.Snapshot](s.caches.Snapshot, key); ok {
		return cached, nil
	}

	daily, err := s.chain.FetchRecentDaily(ctx, ticker.Candidates(raw))
	if err != nil {
		return nil, err
	}
	resolved := daily.Symbol
	current, dailyLow, dailyHigh, dailyChange := priceHeader(daily.Series.Bars)

	hist := s.fetchSnapshotHistory(ctx, resolved, interval, daily.Series.Bars)
	if len(hist) == 0 {
		return nil, models.ErrNoData
	}

	funds := fundamentalsFromMeta(daily.Meta)
	collected := marketdata.CollectFundamentals(ctx, s.client, s.logger, fundamentalsCandidatesFor(raw, resolved))
	marketdata.MergeMissing(funds, collected)

	lastVolume := models.Float(daily.Series.Bars[len(daily.Series.Bars)-1].Volume)
	avgVolumeCalc := meanTailVolume(hist, 30)
	if avgVolumeCalc == nil {
		avgVolumeCalc = meanTailVolume(daily.Series.Bars, 30)
	}

	yearBars := s.fetchYearDaily(ctx, resolved, interval, hist, daily.Series.Bars)
	yearLow, yearHigh := lowHighOf(yearBars)

	marketdata.DeriveFundamentals(funds, current, lastVolume, avgVolumeCalc, yearLow, yearHigh)

	if funds.Beta == nil {
		funds.Beta = s.computeBeta(ctx, interval, hist, yearBars)
	}

	closes := make([]float64, len(hist))
	for i, b := range hist {
		closes[i] = b.Close
	}
	perf := analytics.BuildPerformance(closes)

	avgVolume := funds.AverageVolume
	if avgVolume == nil {
		avgVolume = funds.Volume
	}
	risk := analytics.BuildRisk(analytics.RiskInputs{
		Vol1Y:        perf.Volatility,
		Vol30D:       perf.Volatility30D,
		Drawdown:     perf.MaxDrawdown1Y,
		Beta:         funds.Beta,
		Sharpe:       perf.SharpeRatio,
		Sortino:      perf.SortinoRatio,
		AvgVolume:    avgVolume,
		CurrentPrice: current,
		MarketCap:    funds.MarketCap,
	})

	snapshot := &models.Snapshot{
		Info:        buildInfo(resolved, funds, current, dailyLow, dailyHigh, dailyChange),
		OHLC:        ohlcPoints(hist, interval),
		Performance: perf,
		Risk:        risk,
	}
	cacheSet(s.caches.Snapshot, key, snapshot)
	return snapshot, nil
}

// priceHeader reads the latest bar plus the prior close for the day change.
func priceHeader(bars []models.Bar) (current, low, high float64, change *float64) {
	last := bars[len(bars)-1]
	current, low, high = last.Close, last.Low, last.High
	if len(bars) >= 2 {
		prev := bars[len(bars)-2].Close
		if prev != 0 {
			change = models.Float(round2((current - prev) / prev * 100))
		}
	}
	return current, low, high, change
}

// fetchSnapshotHistory retrieves the full-depth series at the requested
// interval, degrading to a resample of the recent daily window so a thin
// listing still renders a chart.
func (s *Service) fetchSnapshotHistory(ctx context.Context, symbol string, interval models.Interval, dailyBars []models.Bar) []models.Bar {
	res, err := s.chain.FetchInterval(ctx, symbol, interval, marketdata.RangeForInterval(interval))
	if err == nil {
		return res.Series.Bars
	}
	if interval == models.IntervalWeekly || interval == models.IntervalMonth {
		if resampled := marketdata.Resample(dailyBars, interval, s.now()); len(resampled) > 0 {
			return resampled
		}
	}
	return dailyBars
}

// fetchYearDaily retrieves one year of daily bars for 52-week levels and the
// beta regression, reusing series already in hand when the fetch fails.
func (s *Service) fetchYearDaily(ctx context.Context, symbol string, interval models.Interval, hist, dailyBars []models.Bar) []models.Bar {
	res, err := s.chain.FetchInterval(ctx, symbol, models.IntervalDaily, "1y")
	if err == nil {
		return res.Series.Bars
	}
	if interval == models.IntervalDaily && len(hist) > 0 {
		return hist
	}
	return dailyBars
}

// computeBeta regresses the stock against an index proxy over the trailing
// year of daily data.
func (s *Service) computeBeta(ctx context.Context, interval models.Interval, hist, yearBars []models.Bar) *float64 {
	target := yearBars
	if interval == models.IntervalDaily && len(hist) > 0 {
		target = tailBars(hist, 252)
	}
	if len(target) == 0 {
		return nil
	}
	for _, sym := range betaMarketSymbols {
		market, err := s.chain.FetchInterval(ctx, sym, models.IntervalDaily, "1y")
		if err != nil {
			continue
		}
		if beta := analytics.OLSBeta(target, market.Series.Bars); beta != nil {
			return beta
		}
	}
	return nil
}

// fundamentalsFromMeta seeds fundamentals with the fields the chart response
// already carries.
func fundamentalsFromMeta(meta models.ChartMeta) *models.Fundamentals {
	f := &models.Fundamentals{
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		Volume:           meta.RegularMarketVolume,
	}
	if name := firstNonBlank(meta.ShortName, meta.Symbol); name != "" {
		f.ShortName = models.Text(name)
	}
	return f
}

func buildInfo(resolved string, f *models.Fundamentals, current, dailyLow, dailyHigh float64, dailyChange *float64) models.SnapshotInfo {
	shortName := strings.ToUpper(resolved)
	if f.ShortName != nil && *f.ShortName != "" {
		shortName = *f.ShortName
	}
	sector := "N/A"
	if f.Sector != nil && *f.Sector != "" {
		sector = *f.Sector
	}
	return models.SnapshotInfo{
		ShortName:        shortName,
		Sector:           sector,
		CurrentPrice:     current,
		DailyLow:         dailyLow,
		DailyHigh:        dailyHigh,
		DailyChange:      dailyChange,
		MarketCap:        f.MarketCap,
		PERatio:          f.TrailingPE,
		ForwardPE:        f.ForwardPE,
		EPS:              f.TrailingEPS,
		EPSForward:       f.ForwardEPS,
		Dividend:         f.DividendRate,
		DividendYield:    f.DividendYield,
		Beta:             f.Beta,
		Volume:           f.Volume,
		FiftyTwoWeekLow:  f.FiftyTwoWeekLow,
		FiftyTwoWeekHigh: f.FiftyTwoWeekHigh,
		AverageVolume:    f.AverageVolume,
		PriceToSales:     f.PriceToSales,
		PriceToBook:      f.PriceToBook,
	}
}

// ohlcPoints formats bars for the response; intraday bars keep time of day.
func ohlcPoints(bars []models.Bar, interval models.Interval) []models.OHLCPoint {
	layout := "2006-01-02"
	if interval.Intraday() {
		layout = "2006-01-02 15:04"
	}
	out := make([]models.OHLCPoint, len(bars))
	for i, b := range bars {
		out[i] = models.OHLCPoint{
			Date:  b.Time.Format(layout),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		}
	}
	return out
}

func meanTailVolume(bars []models.Bar, n int) *float64 {
	tail := tailBars(bars, n)
	if len(tail) == 0 {
		return nil
	}
	sum := 0.0
	for _, b := range tail {
		sum += b.Volume
	}
	return models.Float(sum / float64(len(tail)))
}

func lowHighOf(bars []models.Bar) (low, high *float64) {
	for _, b := range bars {
		if low == nil || b.Low < *low {
			low = models.Float(b.Low)
		}
		if high == nil || b.High > *high {
			high = models.Float(b.High)
		}
	}
	return low, high
}

func tailBars(bars []models.Bar, n int) []models.Bar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
