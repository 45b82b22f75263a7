package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/models"
)

func TestBuildRisk_NoMetrics(t *testing.T) {
	risk := BuildRisk(RiskInputs{})

	assert.Nil(t, risk.Index)
	assert.Equal(t, models.RiskUnknown, risk.Level)
	assert.Equal(t, "v1", risk.Version)
}

func TestBuildRisk_RenormalizesOverPresentMetrics(t *testing.T) {
	// Only volatility and drawdown available: their 0.20 weights renormalize
	// to the full index. vol 27.5 -> 0.5, |dd| 17.5 -> 0.3.
	risk := BuildRisk(RiskInputs{
		Vol1Y:    models.Float(27.5),
		Drawdown: models.Float(-17.5),
	})

	require.NotNil(t, risk.Index)
	assert.Equal(t, 40, *risk.Index)
	assert.Equal(t, models.RiskMedium, risk.Level)
}

func TestBuildRisk_LevelBuckets(t *testing.T) {
	// Volatility alone drives the index through the linear clamp.
	cases := []struct {
		vol   float64
		level models.RiskLevel
	}{
		{15, models.RiskLow},        // score 0 -> index 0
		{27.5, models.RiskMedium},   // score 0.5 -> index 50
		{40, models.RiskHigh},       // score 1 -> index 100
	}
	for _, tc := range cases {
		risk := BuildRisk(RiskInputs{Vol1Y: models.Float(tc.vol)})
		require.NotNil(t, risk.Index)
		assert.Equal(t, tc.level, risk.Level, "vol %v", tc.vol)
	}
}

func TestBuildRisk_ScoresClampToUnitRange(t *testing.T) {
	risk := BuildRisk(RiskInputs{
		Vol1Y:    models.Float(500),
		Vol30D:   models.Float(1000),
		Drawdown: models.Float(-95),
		Beta:     models.Float(9),
		Sharpe:   models.Float(-10),
		Sortino:  models.Float(-10),
	})

	require.NotNil(t, risk.Index)
	assert.Equal(t, 100, *risk.Index)
	assert.Equal(t, models.RiskHigh, risk.Level)
}

func TestBuildRisk_DerivedMetrics(t *testing.T) {
	risk := BuildRisk(RiskInputs{
		Vol1Y:        models.Float(20),
		Vol30D:       models.Float(30),
		AvgVolume:    models.Float(1e6),
		CurrentPrice: 50,
		MarketCap:    models.Float(5e9),
	})

	require.NotNil(t, risk.Metrics.AvgDollarVolume)
	assert.Equal(t, 5e7, *risk.Metrics.AvgDollarVolume)
	require.NotNil(t, risk.Metrics.VolRegime)
	assert.Equal(t, 1.5, *risk.Metrics.VolRegime)
}

func TestBuildRisk_LiquidityUsesShareVolumeWithoutPrice(t *testing.T) {
	// log10(1e5) = 5 sits below the 5.5 share-volume anchor, so illiquidity
	// saturates the score.
	risk := BuildRisk(RiskInputs{AvgVolume: models.Float(1e5)})

	require.NotNil(t, risk.Index)
	assert.Equal(t, 100, *risk.Index)
}
