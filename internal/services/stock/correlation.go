package stock

import (
	"context"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// correlationRanges are tried longest first so the feature table keeps as
// much history as the listing offers.
var correlationRanges = []string{"10y", "5y", "2y"}

// GetCorrelation estimates the partial and plain correlation structure of
// the indicator feature set from daily history.
func (s *Service) GetCorrelation(ctx context.Context, raw string) (*models.CorrelationMatrices, error) {
	key := "matrix:" + cacheSymbol(raw)
	if cached, ok := cacheGet[*models.CorrelationMatrices](s.caches.Correlation, key); ok {
		return cached, nil
	}

	bars, err := s.fetchCorrelationDaily(ctx, raw)
	if err != nil {
		return nil, err
	}
	matrices, err := analytics.BuildCorrelation(ohlcvFrom(bars))
	if err != nil {
		return nil, err
	}
	cacheSet(s.caches.Correlation, key, matrices)
	return matrices, nil
}

// GetCorrelationTable derives the compact pair table from the partial
// correlation matrix.
func (s *Service) GetCorrelationTable(ctx context.Context, raw string) (*models.CorrelationTable, error) {
	key := "table:" + cacheSymbol(raw)
	if cached, ok := cacheGet[*models.CorrelationTable](s.caches.Correlation, key); ok {
		return cached, nil
	}

	bars, err := s.fetchCorrelationDaily(ctx, raw)
	if err != nil {
		return nil, err
	}
	table, err := analytics.BuildCorrelationTable(ohlcvFrom(bars))
	if err != nil {
		return nil, err
	}
	cacheSet(s.caches.Correlation, key, table)
	return table, nil
}

// fetchCorrelationDaily walks each candidate through the range ladder and
// keeps the first non-empty daily series.
func (s *Service) fetchCorrelationDaily(ctx context.Context, raw string) ([]models.Bar, error) {
	for _, cand := range ticker.Candidates(raw) {
		for _, rng := range correlationRanges {
			res, err := s.chain.FetchInterval(ctx, cand, models.IntervalDaily, rng)
			if err != nil {
				continue
			}
			if !res.Series.Empty() {
				return res.Series.Bars, nil
			}
		}
	}
	return nil, models.ErrNoData
}
