package marketdata

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func TestMergeMissing_FillsOnlyNilFields(t *testing.T) {
	dst := &models.Fundamentals{
		MarketCap: models.Float(1e9),
		ShortName: models.Text("Kept Corp"),
	}
	src := &models.Fundamentals{
		MarketCap:  models.Float(2e9),
		TrailingPE: models.Float(15),
		ShortName:  models.Text("Other Corp"),
		Sector:     models.Text("Energy"),
	}

	MergeMissing(dst, src)

	assert.Equal(t, 1e9, *dst.MarketCap, "populated field must not be overwritten")
	assert.Equal(t, "Kept Corp", *dst.ShortName)
	require.NotNil(t, dst.TrailingPE)
	assert.Equal(t, 15.0, *dst.TrailingPE)
	require.NotNil(t, dst.Sector)
	assert.Equal(t, "Energy", *dst.Sector)
}

func TestMergeMissing_SkipsEmptyAndNonFinite(t *testing.T) {
	dst := &models.Fundamentals{}
	src := &models.Fundamentals{
		ShortName: models.Text(""),
		Beta:      models.Float(math.Inf(1)),
	}

	MergeMissing(dst, src)
	assert.Nil(t, dst.ShortName)
	assert.Nil(t, dst.Beta)
}

// fakeFundamentalsClient serves canned fundamentals per symbol per source.
type fakeFundamentalsClient struct {
	quote   map[string]*models.Fundamentals
	summary map[string]*models.Fundamentals
	page    map[string]*models.Fundamentals
	calls   []string
}

func (f *fakeFundamentalsClient) GetChart(ctx context.Context, symbol, rng, interval string) (*models.ChartData, error) {
	return nil, models.ErrNoData
}

func (f *fakeFundamentalsClient) lookup(m map[string]*models.Fundamentals, source, symbol string) (*models.Fundamentals, error) {
	f.calls = append(f.calls, source+":"+symbol)
	if v, ok := m[symbol]; ok {
		return v, nil
	}
	return nil, errors.New("unavailable")
}

func (f *fakeFundamentalsClient) GetQuote(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return f.lookup(f.quote, "quote", symbol)
}

func (f *fakeFundamentalsClient) GetQuoteSummary(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return f.lookup(f.summary, "summary", symbol)
}

func (f *fakeFundamentalsClient) ScrapeQuotePage(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return f.lookup(f.page, "page", symbol)
}

func TestCollectFundamentals_MergesAcrossSourcesAndCandidates(t *testing.T) {
	client := &fakeFundamentalsClient{
		quote: map[string]*models.Fundamentals{
			"ACME.MI": {MarketCap: models.Float(5e9)},
		},
		summary: map[string]*models.Fundamentals{
			"ACME": {TrailingPE: models.Float(12), MarketCap: models.Float(9e9)},
		},
		page: map[string]*models.Fundamentals{},
	}

	acc := CollectFundamentals(context.Background(), client, nil, []string{"ACME.MI", "ACME"})

	require.NotNil(t, acc.MarketCap)
	assert.Equal(t, 5e9, *acc.MarketCap, "first candidate's value wins")
	require.NotNil(t, acc.TrailingPE)
	assert.Equal(t, 12.0, *acc.TrailingPE)
}

func TestCollectFundamentals_SourceFailuresAreSkipped(t *testing.T) {
	client := &fakeFundamentalsClient{
		quote:   map[string]*models.Fundamentals{},
		summary: map[string]*models.Fundamentals{},
		page: map[string]*models.Fundamentals{
			"ACME": {Beta: models.Float(1.3)},
		},
	}

	acc := CollectFundamentals(context.Background(), client, nil, []string{"ACME"})
	require.NotNil(t, acc.Beta)
	assert.Equal(t, 1.3, *acc.Beta)
}

func TestDeriveFundamentals_MarketCapFromShares(t *testing.T) {
	f := &models.Fundamentals{SharesOutstanding: models.Float(1e6)}
	DeriveFundamentals(f, 50, nil, nil, nil, nil)
	require.NotNil(t, f.MarketCap)
	assert.Equal(t, 5e7, *f.MarketCap)
}

func TestDeriveFundamentals_PEFromEPS(t *testing.T) {
	f := &models.Fundamentals{TrailingEPS: models.Float(4)}
	DeriveFundamentals(f, 100, nil, nil, nil, nil)

	require.NotNil(t, f.TrailingPE)
	assert.Equal(t, 25.0, *f.TrailingPE)
	// forward EPS falls back to trailing, forward PE follows
	require.NotNil(t, f.ForwardEPS)
	assert.Equal(t, 4.0, *f.ForwardEPS)
	require.NotNil(t, f.ForwardPE)
	assert.Equal(t, 25.0, *f.ForwardPE)
}

func TestDeriveFundamentals_ForwardEPSUsesGrowth(t *testing.T) {
	f := &models.Fundamentals{
		TrailingEPS:    models.Float(2),
		EarningsGrowth: models.Float(0.5),
	}
	DeriveFundamentals(f, 30, nil, nil, nil, nil)
	require.NotNil(t, f.ForwardEPS)
	assert.Equal(t, 3.0, *f.ForwardEPS)
}

func TestDeriveFundamentals_NegativePEDropped(t *testing.T) {
	f := &models.Fundamentals{TrailingPE: models.Float(-5)}
	DeriveFundamentals(f, 100, nil, nil, nil, nil)
	assert.Nil(t, f.TrailingPE)
}

func TestDeriveFundamentals_DividendYieldAndRatios(t *testing.T) {
	f := &models.Fundamentals{
		DividendRate: models.Float(2),
		BookValue:    models.Float(20),
		TotalRevenue: models.Float(1e9),
		MarketCap:    models.Float(4e9),
	}
	DeriveFundamentals(f, 40, nil, nil, nil, nil)

	require.NotNil(t, f.DividendYield)
	assert.Equal(t, 0.05, *f.DividendYield)
	require.NotNil(t, f.PriceToBook)
	assert.Equal(t, 2.0, *f.PriceToBook)
	require.NotNil(t, f.PriceToSales)
	assert.Equal(t, 4.0, *f.PriceToSales)
}

func TestDeriveFundamentals_SeriesContextFills(t *testing.T) {
	f := &models.Fundamentals{}
	DeriveFundamentals(f, 10, models.Float(5000), models.Float(4000), models.Float(8), models.Float(14))

	assert.Equal(t, 5000.0, *f.Volume)
	assert.Equal(t, 4000.0, *f.AverageVolume)
	assert.Equal(t, 8.0, *f.FiftyTwoWeekLow)
	assert.Equal(t, 14.0, *f.FiftyTwoWeekHigh)
}
