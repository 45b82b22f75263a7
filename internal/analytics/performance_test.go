package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func TestBuildPerformance_WindowGating(t *testing.T) {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100 + 0.1*float64(i)
	}

	perf := BuildPerformance(closes)

	require.NotNil(t, perf.Return1Y)
	assert.Equal(t, 25.02, *perf.Return1Y)
	assert.Nil(t, perf.Return3Y)
	assert.Nil(t, perf.Return5Y)
	require.NotNil(t, perf.Momentum1M)
	require.NotNil(t, perf.Momentum3M)
	assert.NotNil(t, perf.Volatility)
	assert.NotNil(t, perf.Volatility30D)
	assert.NotNil(t, perf.Volatility1Y)
	assert.NotNil(t, perf.MaxDrawdown1Y)
}

func TestBuildPerformance_ShortSeries(t *testing.T) {
	perf := BuildPerformance([]float64{100, 101, 102})

	assert.Nil(t, perf.Return1Y)
	assert.Nil(t, perf.Momentum1M)
	assert.Nil(t, perf.MaxDrawdown1Y)
	assert.Nil(t, perf.SharpeRatio)
	assert.NotNil(t, perf.Volatility)
}

func TestMaxDrawdown(t *testing.T) {
	closes := make([]float64, tradingDays)
	for i := range closes {
		closes[i] = 100
	}
	closes[100] = 50
	perf := BuildPerformance(closes)

	require.NotNil(t, perf.MaxDrawdown1Y)
	assert.Equal(t, -50.0, *perf.MaxDrawdown1Y)
}

func TestBuildPerformance_SharpeAndSortino(t *testing.T) {
	// Alternating gains and losses keep volatility and downside deviation
	// strictly positive over a full trading year.
	closes := make([]float64, 300)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] * 0.995
		} else {
			closes[i] = closes[i-1] * 1.012
		}
	}

	perf := BuildPerformance(closes)
	require.NotNil(t, perf.Volatility1Y)
	assert.NotNil(t, perf.SharpeRatio)
	assert.NotNil(t, perf.SortinoRatio)
}

func dailySeries(start time.Time, returns []float64, base float64) []models.Bar {
	bars := make([]models.Bar, 0, len(returns)+1)
	price := base
	bars = append(bars, models.Bar{Time: start, Close: price})
	for i, r := range returns {
		price *= 1 + r
		bars = append(bars, models.Bar{Time: start.AddDate(0, 0, i+1), Close: price})
	}
	return bars
}

func TestOLSBeta(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	marketReturns := []float64{
		0.01, -0.005, 0.02, -0.01, 0.003, 0.015, -0.02, 0.007, -0.003, 0.011, 0.004, -0.009,
	}
	targetReturns := make([]float64, len(marketReturns))
	for i, r := range marketReturns {
		targetReturns[i] = 2 * r
	}

	target := dailySeries(start, targetReturns, 50)
	market := dailySeries(start, marketReturns, 4000)

	beta := OLSBeta(target, market)
	require.NotNil(t, beta)
	assert.Equal(t, 2.0, *beta)
}

func TestOLSBeta_TooFewAlignedDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	returns := []float64{0.01, -0.005, 0.02, 0.004, -0.002}
	target := dailySeries(start, returns, 50)
	market := dailySeries(start, returns, 4000)

	assert.Nil(t, OLSBeta(target, market))
}

func TestOLSBeta_DateAlignment(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	returns := []float64{
		0.01, -0.005, 0.02, -0.01, 0.003, 0.015, -0.02, 0.007, -0.003, 0.011, 0.004, -0.009,
	}
	target := dailySeries(start, returns, 50)
	// The market series starts a month earlier, so no dates overlap.
	market := dailySeries(start.AddDate(0, -2, 0), returns, 4000)

	assert.Nil(t, OLSBeta(target, market))
}
