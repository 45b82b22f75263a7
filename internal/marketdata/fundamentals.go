package marketdata

import (
	"context"
	"math"

	"github.com/stocklens/stocklens/internal/common"
	"github.com/stocklens/stocklens/internal/interfaces"
	"github.com/stocklens/stocklens/internal/models"
)

// MergeMissing fills nil fields of dst from src. Populated fields are never
// overwritten, so applying sources in priority order keeps the most trusted
// value for each field.
func MergeMissing(dst, src *models.Fundamentals) {
	if dst == nil || src == nil {
		return
	}

	if dst.ShortName == nil && src.ShortName != nil && *src.ShortName != "" {
		dst.ShortName = src.ShortName
	}
	if dst.Sector == nil && src.Sector != nil && *src.Sector != "" {
		dst.Sector = src.Sector
	}

	numeric := []struct {
		dst **float64
		src *float64
	}{
		{&dst.MarketCap, src.MarketCap},
		{&dst.TrailingPE, src.TrailingPE},
		{&dst.ForwardPE, src.ForwardPE},
		{&dst.TrailingEPS, src.TrailingEPS},
		{&dst.ForwardEPS, src.ForwardEPS},
		{&dst.SharesOutstanding, src.SharesOutstanding},
		{&dst.DividendRate, src.DividendRate},
		{&dst.DividendYield, src.DividendYield},
		{&dst.Beta, src.Beta},
		{&dst.PriceToBook, src.PriceToBook},
		{&dst.PriceToSales, src.PriceToSales},
		{&dst.BookValue, src.BookValue},
		{&dst.TotalRevenue, src.TotalRevenue},
		{&dst.NetIncome, src.NetIncome},
		{&dst.EarningsGrowth, src.EarningsGrowth},
		{&dst.AverageVolume, src.AverageVolume},
		{&dst.Volume, src.Volume},
		{&dst.FiftyTwoWeekLow, src.FiftyTwoWeekLow},
		{&dst.FiftyTwoWeekHigh, src.FiftyTwoWeekHigh},
	}
	for _, f := range numeric {
		if *f.dst == nil && f.src != nil && isFinite(*f.src) {
			*f.dst = f.src
		}
	}
}

// coreComplete reports whether the valuation fields every snapshot should
// carry are all populated.
func coreComplete(f *models.Fundamentals) bool {
	return f.MarketCap != nil && f.TrailingPE != nil && f.ForwardPE != nil &&
		f.TrailingEPS != nil && f.ForwardEPS != nil &&
		f.DividendRate != nil && f.DividendYield != nil && f.Beta != nil &&
		f.PriceToBook != nil && f.PriceToSales != nil &&
		f.SharesOutstanding != nil && f.TotalRevenue != nil
}

// complete additionally requires the descriptive and volume fields.
func complete(f *models.Fundamentals) bool {
	return coreComplete(f) &&
		f.BookValue != nil && f.NetIncome != nil &&
		f.AverageVolume != nil && f.Volume != nil &&
		f.FiftyTwoWeekLow != nil && f.FiftyTwoWeekHigh != nil &&
		f.ShortName != nil && f.Sector != nil
}

// CollectFundamentals accumulates fundamentals across candidate symbols,
// consulting the quote endpoint, the quote summary endpoint, and finally the
// quote page scrape for each, short-circuiting once every field is filled.
// Source failures only mean that source contributes nothing.
func CollectFundamentals(ctx context.Context, client interfaces.MarketClient, logger *common.Logger, candidates []string) *models.Fundamentals {
	acc := &models.Fundamentals{}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	for _, symbol := range candidates {
		fetchers := []func(context.Context, string) (*models.Fundamentals, error){
			client.GetQuote,
			client.GetQuoteSummary,
			client.ScrapeQuotePage,
		}
		for _, fetch := range fetchers {
			src, err := fetch(ctx, symbol)
			if err != nil {
				logger.Debug().Str("symbol", symbol).Err(err).Msg("fundamentals source failed")
				continue
			}
			MergeMissing(acc, src)
		}
		if complete(acc) {
			break
		}
	}

	return acc
}

// DeriveFundamentals backfills values computable from what is already known
// plus the price series context. Mirrors the accumulation order: direct
// sources win, derivations only fill gaps.
func DeriveFundamentals(f *models.Fundamentals, currentPrice float64, lastVolume, avgVolumeCalc, yearLow, yearHigh *float64) {
	if f == nil {
		return
	}

	if f.MarketCap == nil && f.SharesOutstanding != nil && currentPrice > 0 {
		f.MarketCap = models.Float(*f.SharesOutstanding * currentPrice)
	}

	if f.TrailingEPS == nil && f.NetIncome != nil && f.SharesOutstanding != nil && *f.SharesOutstanding != 0 {
		f.TrailingEPS = models.Float(*f.NetIncome / *f.SharesOutstanding)
	}
	if f.ForwardEPS == nil && f.TrailingEPS != nil {
		if f.EarningsGrowth != nil {
			f.ForwardEPS = models.Float(*f.TrailingEPS * (1 + *f.EarningsGrowth))
		} else {
			f.ForwardEPS = f.TrailingEPS
		}
	}

	if f.TrailingPE == nil {
		if f.TrailingEPS != nil && *f.TrailingEPS > 0 {
			f.TrailingPE = models.Float(round2(currentPrice / *f.TrailingEPS))
		} else if f.ForwardEPS != nil && *f.ForwardEPS > 0 {
			f.TrailingPE = models.Float(round2(currentPrice / *f.ForwardEPS))
		}
	}
	if f.TrailingPE != nil && *f.TrailingPE <= 0 {
		f.TrailingPE = nil
	}

	if f.ForwardPE == nil && f.ForwardEPS != nil && *f.ForwardEPS > 0 {
		f.ForwardPE = models.Float(round2(currentPrice / *f.ForwardEPS))
	}
	if f.ForwardPE != nil && *f.ForwardPE <= 0 {
		f.ForwardPE = nil
	}

	if f.DividendYield == nil && f.DividendRate != nil && currentPrice > 0 {
		f.DividendYield = models.Float(*f.DividendRate / currentPrice)
	}

	if f.PriceToBook == nil && f.BookValue != nil && *f.BookValue != 0 {
		f.PriceToBook = models.Float(round2(currentPrice / *f.BookValue))
	}

	if f.PriceToSales == nil && f.TotalRevenue != nil && *f.TotalRevenue != 0 {
		if f.MarketCap != nil {
			f.PriceToSales = models.Float(round2(*f.MarketCap / *f.TotalRevenue))
		} else if f.SharesOutstanding != nil && *f.SharesOutstanding != 0 {
			revenuePerShare := *f.TotalRevenue / *f.SharesOutstanding
			if revenuePerShare != 0 {
				f.PriceToSales = models.Float(round2(currentPrice / revenuePerShare))
			}
		}
	}

	if f.AverageVolume == nil && avgVolumeCalc != nil {
		f.AverageVolume = avgVolumeCalc
	}
	if f.Volume == nil && lastVolume != nil {
		f.Volume = lastVolume
	}
	if f.FiftyTwoWeekLow == nil && yearLow != nil {
		f.FiftyTwoWeekLow = yearLow
	}
	if f.FiftyTwoWeekHigh == nil && yearHigh != nil {
		f.FiftyTwoWeekHigh = yearHigh
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
