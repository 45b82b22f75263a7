package stock

import (
	"context"
	"fmt"

	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// historyTailBars is the row cap of the history endpoint.
const historyTailBars = 120

// GetHistory returns the recent OHLC tail at the requested timeframe. A
// listing with no bars in range yields an empty history rather than an
// error, and the empty result is cached like any other.
func (s *Service) GetHistory(ctx context.Context, raw, timeframe string) (*models.History, error) {
	interval := models.MapTimeframe(timeframe)
	key := fmt.Sprintf("%s:%s", cacheSymbol(raw), interval)
	if cached, ok := cacheGet[*models.History](s.caches.History, key); ok {
		return cached, nil
	}

	var bars []models.Bar
	res, err := s.chain.FetchIntervalCandidates(ctx, ticker.Candidates(raw), interval, historyRange(interval))
	if err == nil {
		bars = tailBars(res.Series.Bars, historyTailBars)
	}

	layout := "2006-01-02"
	if interval == models.IntervalMonth {
		layout = "2006-01"
	}
	rows := make([]models.OHLCPoint, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, models.OHLCPoint{
			Date:  b.Time.Format(layout),
			Open:  round2(b.Open),
			High:  round2(b.High),
			Low:   round2(b.Low),
			Close: round2(b.Close),
		})
	}

	out := &models.History{History: rows}
	cacheSet(s.caches.History, key, out)
	return out, nil
}
