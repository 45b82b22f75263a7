package stock

import (
	"context"
	"strings"

	"github.com/stocklens/stocklens/internal/models"
	"github.com/stocklens/stocklens/internal/ticker"
)

// GetLivePrice reads the most recent traded price, preferring the one-minute
// intraday feed and falling back to the last daily close. Live prices are
// never cached.
func (s *Service) GetLivePrice(ctx context.Context, raw string) (*models.LivePrice, error) {
	for _, cand := range ticker.Candidates(raw) {
		res, err := s.chain.FetchInterval(ctx, cand, models.IntervalMinute, "1d")
		if err != nil {
			res, err = s.chain.FetchInterval(ctx, cand, models.IntervalDaily, "2d")
		}
		if err != nil || res.Series.Empty() {
			continue
		}
		return &models.LivePrice{
			Ticker:       strings.ToUpper(res.Symbol),
			CurrentPrice: round2(res.Series.LastClose()),
			LastUpdate:   s.now().UTC().Format(sdTimestampLayout),
		}, nil
	}
	return nil, models.ErrNoData
}
