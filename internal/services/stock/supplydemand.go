package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/interfaces"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// Per-interval tuning for the zone detector. Longer bars cover more time, so
// monthly charts use fewer bars and a stricter strength cut.
var (
	sdTailBars = map[models.Interval]int{
		models.IntervalDaily:  120,
		models.IntervalWeekly: 100,
		models.IntervalMonth:  60,
	}
	sdStrength = map[models.Interval]float64{
		models.IntervalDaily:  70,
		models.IntervalWeekly: 80,
		models.IntervalMonth:  90,
	}
	sdMinPct = map[models.Interval]float64{
		models.IntervalDaily:  1.0,
		models.IntervalWeekly: 2.0,
		models.IntervalMonth:  4.0,
	}
	sdGapPct = map[models.Interval]float64{
		models.IntervalDaily:  0.6,
		models.IntervalWeekly: 1.2,
		models.IntervalMonth:  2.5,
	}
)

const (
	sdDefaultTail     = 120
	sdDefaultStrength = 75.0
	sdDefaultMinPct   = 1.0
	sdDefaultGapPct   = 0.6
	sdProximityPct    = 1.5
	sdTimestampLayout = "2006-01-02 15:04:05"
)

// GetSupplyDemand detects volume-weighted support and resistance zones on
// the requested timeframe and classifies where price sits between them.
func (s *Service) GetSupplyDemand(ctx context.Context, raw string, opts interfaces.SupplyDemandOptions) (*models.SupplyDemand, error) {
	interval := models.MapTimeframe(opts.Timeframe)
	key := fmt.Sprintf("%s:%s:%s:%s:%s",
		cacheSymbol(raw), interval,
		floatKey(opts.Strength), floatKey(opts.MinPct), floatKey(opts.GapPct))
	if cached, ok := cacheGet[*models.SupplyDemand](s.caches.SupplyDemand, key); ok {
		return cached, nil
	}

	res, err := s.chain.FetchIntervalCandidates(ctx, ticker.Candidates(raw), interval, historyRange(interval))
	if err != nil {
		return nil, err
	}
	if res.Series.Empty() {
		return nil, models.ErrNoData
	}

	tail := sdDefaultTail
	if n, ok := sdTailBars[interval]; ok {
		tail = n
	}
	bars := tailBars(res.Series.Bars, tail)

	params := analytics.DefaultZoneParams()
	params.StrengthPercentile = sdDefaultStrength
	if v, ok := sdStrength[interval]; ok {
		params.StrengthPercentile = v
	}
	if opts.Strength != nil {
		params.StrengthPercentile = *opts.Strength
	}
	if interval == models.IntervalWeekly || interval == models.IntervalMonth {
		params.PivotSource = "hilo"
	}

	minPct := sdDefaultMinPct
	if v, ok := sdMinPct[interval]; ok {
		minPct = v
	}
	if opts.MinPct != nil {
		minPct = *opts.MinPct
	}
	gapPct := sdDefaultGapPct
	if v, ok := sdGapPct[interval]; ok {
		gapPct = v
	}
	if opts.GapPct != nil {
		gapPct = *opts.GapPct
	}

	price := res.Series.Bars[len(res.Series.Bars)-1].Close
	zones := analytics.BuildZones(bars, params)
	zones = analytics.FilterZonesByDistance(zones, price, minPct)
	zones = analytics.MergeCloseZones(zones, gapPct)

	out := &models.SupplyDemand{
		Ticker:       strings.ToUpper(res.Symbol),
		CurrentPrice: round2(price),
		Zones:        zones,
		MarketState:  analytics.DetermineMarketState(price, zones, sdProximityPct),
		LastUpdate:   s.now().UTC().Format(sdTimestampLayout),
	}
	cacheSet(s.caches.SupplyDemand, key, out)
	return out, nil
}

// floatKey renders an optional override for use in a cache key.
func floatKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
