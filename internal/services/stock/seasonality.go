package stock

import (
	"context"
	"fmt"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/marketdata"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// seasonalityRanges are walked longest first; more years of history means
// more cohorts in the monthly statistics.
var seasonalityRanges = []string{"20y", "10y", "5y", "2y", "1y"}

// minSeasonalityDays is the daily-bar floor below which a series cannot
// produce a meaningful monthly profile.
const minSeasonalityDays = 120

// GetSeasonality computes the month-by-month return profile across years,
// optionally winsorizing outlier months.
func (s *Service) GetSeasonality(ctx context.Context, raw string, excludeOutliers bool) (*models.Seasonality, error) {
	key := fmt.Sprintf("%s:outliers=%t", cacheSymbol(raw), excludeOutliers)
	if cached, ok := cacheGet[*models.Seasonality](s.caches.Seasonality, key); ok {
		return cached, nil
	}

	daily, err := s.fetchSeasonalityDaily(ctx, raw)
	if err != nil {
		return nil, err
	}
	monthly := marketdata.Resample(daily, models.IntervalMonth, s.now())
	if len(monthly) < 6 {
		return nil, models.ErrInsufficientData
	}

	season, err := analytics.BuildSeasonality(monthly, s.now().Year(), excludeOutliers)
	if err != nil {
		return nil, err
	}
	cacheSet(s.caches.Seasonality, key, season)
	return season, nil
}

// fetchSeasonalityDaily returns the deepest daily series any candidate can
// provide with at least minSeasonalityDays bars.
func (s *Service) fetchSeasonalityDaily(ctx context.Context, raw string) ([]models.Bar, error) {
	for _, cand := range ticker.Candidates(raw) {
		for _, rng := range seasonalityRanges {
			res, err := s.chain.FetchInterval(ctx, cand, models.IntervalDaily, rng)
			if err != nil {
				continue
			}
			if res.Series.Len() >= minSeasonalityDays {
				return res.Series.Bars, nil
			}
		}
	}
	return nil, models.ErrInsufficientData
}
