package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func monthlyBar(year int, month time.Month, close float64) models.Bar {
	t := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return models.Bar{Time: t, Open: close, High: close, Low: close, Close: close, Volume: 1000}
}

func TestBuildSeasonality_CumulativeCompounding(t *testing.T) {
	bars := []models.Bar{
		monthlyBar(2020, time.December, 100),
		monthlyBar(2021, time.January, 110),  // +10%
		monthlyBar(2021, time.February, 104.5), // -5%
	}

	s, err := BuildSeasonality(bars, 2021, false)
	require.NoError(t, err)

	curve := s.SeasonalCurveByYear[2021]
	require.NotNil(t, curve)
	require.NotNil(t, curve[0])
	require.NotNil(t, curve[1])
	assert.Equal(t, 10.0, *curve[0])
	assert.Equal(t, -5.0, *curve[1])
	assert.Nil(t, curve[2])

	cum := s.CumulativeCurveByYear[2021]
	require.NotNil(t, cum[0])
	require.NotNil(t, cum[1])
	assert.Equal(t, 10.0, *cum[0])
	assert.Equal(t, 4.5, *cum[1])
	assert.Nil(t, cum[2])
}

func TestBuildSeasonality_ExcludesSparseYears(t *testing.T) {
	var bars []models.Bar
	// 2019 gets twelve months, 2020 only three.
	bars = append(bars, monthlyBar(2018, time.December, 100))
	price := 100.0
	for m := time.January; m <= time.December; m++ {
		price *= 1.01
		bars = append(bars, monthlyBar(2019, m, price))
	}
	for m := time.January; m <= time.March; m++ {
		price *= 1.02
		bars = append(bars, monthlyBar(2020, m, price))
	}

	s, err := BuildSeasonality(bars, 2021, false)
	require.NoError(t, err)

	assert.Contains(t, s.SeasonalCurveByYear, 2019)
	assert.NotContains(t, s.SeasonalCurveByYear, 2020)
	assert.Equal(t, []int{2019}, s.Years)
}

func TestBuildSeasonality_CurrentYearAlwaysKept(t *testing.T) {
	bars := []models.Bar{
		monthlyBar(2024, time.December, 100),
		monthlyBar(2025, time.January, 103),
	}

	s, err := BuildSeasonality(bars, 2025, false)
	require.NoError(t, err)
	assert.Contains(t, s.SeasonalCurveByYear, 2025)
}

func TestBuildSeasonality_NoQualifyingYears(t *testing.T) {
	bars := []models.Bar{
		monthlyBar(2019, time.December, 100),
		monthlyBar(2020, time.January, 105),
	}

	_, err := BuildSeasonality(bars, 2025, false)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestBuildSeasonality_WinsorizeClipsExtremes(t *testing.T) {
	var bars []models.Bar
	bars = append(bars, monthlyBar(2020, time.December, 100))
	price := 100.0
	for m := time.January; m <= time.November; m++ {
		price *= 1.01
		bars = append(bars, monthlyBar(2021, m, price))
	}
	// December spikes far above every other observation.
	bars = append(bars, monthlyBar(2021, time.December, price*3))

	raw, err := BuildSeasonality(bars, 2021, false)
	require.NoError(t, err)
	clipped, err := BuildSeasonality(bars, 2021, true)
	require.NoError(t, err)

	rawDec := *raw.SeasonalCurveByYear[2021][11]
	clippedDec := *clipped.SeasonalCurveByYear[2021][11]
	assert.Equal(t, 200.0, rawDec)
	assert.Less(t, clippedDec, rawDec)
	assert.True(t, clipped.ExcludeOutliers)
}

func TestMonthPercentiles_NearestRank(t *testing.T) {
	curve := func(jan float64) []*float64 {
		c := make([]*float64, 12)
		c[0] = models.Float(jan)
		return c
	}
	curves := map[int][]*float64{
		2021: curve(1),
		2022: curve(5),
		2023: curve(3),
	}

	p := monthPercentiles(curves)
	// n=3: p10 -> index 0, median -> index 1, p90 -> index 1.
	assert.Equal(t, 1.0, p[0].P10)
	assert.Equal(t, 3.0, p[0].Median)
	assert.Equal(t, 3.0, p[0].P90)
	// Unpopulated months collapse to zeros.
	assert.Equal(t, models.MonthlyPercentiles{}, p[5])
}
