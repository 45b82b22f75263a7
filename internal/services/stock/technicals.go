package stock

import (
	"context"
	"fmt"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// technicalsRange gives the indicators enough depth at every interval for
// the 200-period windows to populate.
func technicalsRange(interval models.Interval) string {
	switch interval {
	case models.IntervalDaily:
		return "5y"
	case models.IntervalWeekly:
		return "10y"
	case models.IntervalMonth:
		return "20y"
	default:
		return "60d"
	}
}

// GetTechnicals computes the indicator summary table for a ticker at the
// requested timeframe.
func (s *Service) GetTechnicals(ctx context.Context, raw, timeframe string) (*models.TechnicalsReport, error) {
	interval := models.MapTimeframe(timeframe)
	key := fmt.Sprintf("%s:%s", cacheSymbol(raw), interval)
	if cached, ok := cacheGet[*models.TechnicalsReport](s.caches.Technicals, key); ok {
		return cached, nil
	}

	res, err := s.chain.FetchIntervalCandidates(ctx, ticker.Candidates(raw), interval, technicalsRange(interval))
	if err != nil {
		return nil, err
	}
	if res.Series.Empty() {
		return nil, models.ErrNoData
	}

	report := analytics.BuildTechnicals(ohlcvFrom(res.Series.Bars))
	cacheSet(s.caches.Technicals, key, report)
	return report, nil
}
